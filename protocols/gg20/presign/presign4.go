package presign

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// presign4 collects the δ shares and their group counterparts, and checks
// that δ = k⋅γ before inverting it.
type presign4 struct {
	*presign3

	// Gamma = Γ = Σⱼ Γⱼ
	Gamma curve.Point

	// ChiShare = χᵢ
	ChiShare curve.Scalar

	// DeltaShares[j] = δⱼ
	DeltaShares map[party.ID]curve.Scalar
	// BigDeltaShares[j] = Δⱼ = kⱼ⋅Γ
	BigDeltaShares map[party.ID]curve.Point
}

type broadcast4 struct {
	round.NormalBroadcastContent
	// DeltaShare = δᵢ
	DeltaShare curve.Scalar
	// BigDeltaShare = Δᵢ = kᵢ⋅Γ
	BigDeltaShare curve.Point
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *presign4) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.DeltaShare == nil || body.BigDeltaShare == nil ||
		body.DeltaShare.IsZero() || body.BigDeltaShare.IsIdentity() {
		return round.ErrNilFields
	}
	r.DeltaShares[msg.From] = body.DeltaShare
	r.BigDeltaShares[msg.From] = body.BigDeltaShare
	return nil
}

// VerifyMessage implements round.Round.
func (presign4) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (presign4) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
//   - δ = Σⱼ δⱼ, checked against Σⱼ Δⱼ = δ⋅G
//   - R = δ⁻¹⋅Γ, R̄ⱼ = δ⁻¹⋅Δⱼ
//   - Sᵢ = χᵢ⋅R
func (r *presign4) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	delta := group.NewScalar()
	bigDelta := group.NewPoint()
	for _, j := range r.PartyIDs() {
		delta.Add(r.DeltaShares[j])
		bigDelta = bigDelta.Add(r.BigDeltaShares[j])
	}

	// δ⋅G == Σⱼ Δⱼ, so that δ = k⋅γ. Someone lied about their share, but we
	// cannot tell who.
	if !delta.ActOnBase().Equal(bigDelta) {
		return r.AbortRound(errors.New("computed delta is inconsistent with the delta shares")), nil
	}

	deltaInv := group.NewScalar().Set(delta).Invert()
	R := deltaInv.Act(r.Gamma)

	rBar := make(map[party.ID]curve.Point, r.N())
	for _, j := range r.PartyIDs() {
		rBar[j] = deltaInv.Act(r.BigDeltaShares[j])
	}

	selfS := r.ChiShare.Act(R)
	if err := r.BroadcastMessage(out, &broadcast5{S: selfS}); err != nil {
		return r, err
	}

	return &presign5{
		presign4: r,
		Delta:    delta,
		R:        R,
		RBar:     rBar,
		S:        map[party.ID]curve.Point{r.SelfID(): selfS},
	}, nil
}

// MessageContent implements round.Round.
func (presign4) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (r *presign4) BroadcastContent() round.BroadcastContent {
	group := r.Group()
	return &broadcast4{
		DeltaShare:    group.NewScalar(),
		BigDeltaShare: group.NewPoint(),
	}
}

// Number implements round.Round.
func (presign4) Number() round.Number { return 4 }

// RoundNumber implements round.Content.
func (broadcast4) RoundNumber() round.Number { return 4 }
