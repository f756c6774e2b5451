package sign

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/eddsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// round3 collects the response shares and assembles the signature. Each
// share is verified on receipt, so a bad share aborts with the sender as
// culprit.
type round3 struct {
	*round2

	// Nonce = R = Σⱼ (Dⱼ + ρⱼ⋅Eⱼ)
	Nonce curve.Point
	// NonceShares[j] = Dⱼ + ρⱼ⋅Eⱼ
	NonceShares map[party.ID]curve.Point
	// Challenge = c = SHA-512(R ∥ A ∥ m)
	Challenge curve.Scalar
	// Lagrange[j] = λⱼ for the signer set.
	Lagrange map[party.ID]curve.Scalar

	// ResponseShares[j] = zⱼ
	ResponseShares map[party.ID]curve.Scalar
}

type broadcast3 struct {
	round.NormalBroadcastContent
	// ResponseShare = zᵢ = dᵢ + ρᵢ⋅eᵢ + c⋅λᵢ⋅xᵢ
	ResponseShare curve.Scalar
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.ResponseShare == nil || body.ResponseShare.IsZero() {
		return round.ErrNilFields
	}

	// zⱼ⋅G == (Dⱼ + ρⱼ⋅Eⱼ) + c⋅λⱼ⋅Xⱼ
	group := r.Group()
	expected := group.NewScalar().Set(r.Challenge).Mul(r.Lagrange[from]).
		Act(r.Config.VerificationShares.Points[from]).
		Add(r.NonceShares[from])
	if !body.ResponseShare.ActOnBase().Equal(expected) {
		return errors.New("response share does not verify against the nonce and verification share")
	}

	r.ResponseShares[from] = body.ResponseShare
	return nil
}

// VerifyMessage implements round.Round.
func (round3) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round3) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *round3) Finalize(chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	// z = Σⱼ zⱼ
	response := group.NewScalar()
	for _, j := range r.PartyIDs() {
		response.Add(r.ResponseShares[j])
	}

	signature := &eddsa.Signature{
		R: r.Nonce,
		Z: response,
	}
	if !signature.Verify(r.Config.PublicKey, r.Message) {
		return r.AbortRound(errors.New("combined signature failed to verify")), nil
	}
	return r.ResultRound(signature), nil
}

// MessageContent implements round.Round.
func (round3) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// BroadcastContent implements round.BroadcastRound.
func (r *round3) BroadcastContent() round.BroadcastContent {
	return &broadcast3{ResponseShare: r.Group().NewScalar()}
}

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
