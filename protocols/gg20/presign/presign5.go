package presign

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/ecdsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// presign5 collects the Sⱼ = χⱼ⋅R points and assembles the presignature.
type presign5 struct {
	*presign4

	// Delta = δ = k⋅γ
	Delta curve.Scalar

	// R = δ⁻¹⋅Γ = k⁻¹⋅G
	R curve.Point
	// RBar[j] = δ⁻¹⋅Δⱼ = kⱼ⋅R
	RBar map[party.ID]curve.Point
	// S[j] = χⱼ⋅R
	S map[party.ID]curve.Point
}

type broadcast5 struct {
	round.NormalBroadcastContent
	// S = Sᵢ = χᵢ⋅R
	S curve.Point
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *presign5) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast5)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.S == nil || body.S.IsIdentity() {
		return round.ErrNilFields
	}
	r.S[msg.From] = body.S
	return nil
}

// VerifyMessage implements round.Round.
func (presign5) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (presign5) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// Since Σⱼ χⱼ = k⋅x, the Sⱼ must sum to X if everyone was honest. When a
// digest was supplied the online round is started immediately, otherwise the
// presignature is the output.
func (r *presign5) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	public := group.NewPoint()
	for _, j := range r.PartyIDs() {
		public = public.Add(r.S[j])
	}
	if !public.Equal(r.PublicKey) {
		return r.AbortRound(errors.New("signature shares are inconsistent with the public key")), nil
	}

	// All parties derive the same identifier from the shared session state.
	presignatureID := types.EmptyRID()
	copy(presignatureID, r.Hash().Sum())

	preSignature := &ecdsa.PreSignature{
		ID:       presignatureID,
		R:        r.R,
		RBar:     party.NewPointMap(r.RBar),
		S:        party.NewPointMap(r.S),
		KShare:   r.KShare,
		ChiShare: r.ChiShare,
	}
	if len(r.Message) == 0 {
		return r.ResultRound(preSignature), nil
	}

	if err := preSignature.Consume(); err != nil {
		return r, err
	}
	sigmaShare := preSignature.SignatureShare(r.Message)
	if err := r.BroadcastMessage(out, &broadcastSign{SigmaShare: sigmaShare}); err != nil {
		return r, err
	}

	return &signRound{
		presign5:     r,
		PreSignature: preSignature,
		SigmaShares:  map[party.ID]curve.Scalar{r.SelfID(): sigmaShare},
	}, nil
}

// MessageContent implements round.Round.
func (presign5) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (r *presign5) BroadcastContent() round.BroadcastContent {
	return &broadcast5{S: r.Group().NewPoint()}
}

// Number implements round.Round.
func (presign5) Number() round.Number { return 5 }

// RoundNumber implements round.Content.
func (broadcast5) RoundNumber() round.Number { return 5 }
