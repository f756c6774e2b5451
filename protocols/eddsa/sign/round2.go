package sign

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/eddsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// round2 collects the nonce commitments, derives the joint nonce point and
// broadcasts this party's response share.
type round2 struct {
	*round1

	// d, e are the hiding and binding nonces sampled in round 1.
	d, e curve.Scalar

	// D[j] = dⱼ⋅G
	D map[party.ID]curve.Point
	// E[j] = eⱼ⋅G
	E map[party.ID]curve.Point
}

type broadcast2 struct {
	round.NormalBroadcastContent
	// D = dᵢ⋅G is the hiding nonce commitment.
	D curve.Point
	// E = eᵢ⋅G is the binding nonce commitment.
	E curve.Point
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.D == nil || body.E == nil {
		return round.ErrNilFields
	}
	if body.D.IsIdentity() || body.E.IsIdentity() {
		return errors.New("nonce commitment is the identity point")
	}
	r.D[msg.From] = body.D
	r.E[msg.From] = body.E
	return nil
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	// The binding factor ρⱼ commits to the signer set, the message and
	// every nonce commitment, so each signer's effective nonce
	// dⱼ + ρⱼ⋅eⱼ cannot be chosen after seeing the others.
	rho := make(map[party.ID]curve.Scalar, r.N())
	rhoPreHash := r.Hash()
	for _, j := range r.PartyIDs() {
		_ = rhoPreHash.WriteAny(r.D[j], r.E[j])
	}
	for _, j := range r.PartyIDs() {
		rhoHash := rhoPreHash.Clone()
		_ = rhoHash.WriteAny(j)
		rho[j] = sample.Scalar(rhoHash.Digest(), group)
	}

	// R = Σⱼ (Dⱼ + ρⱼ⋅Eⱼ)
	nonceShares := make(map[party.ID]curve.Point, r.N())
	nonce := group.NewPoint()
	for _, j := range r.PartyIDs() {
		nonceShares[j] = rho[j].Act(r.E[j]).Add(r.D[j])
		nonce = nonce.Add(nonceShares[j])
	}

	// c = SHA-512(R ∥ A ∥ m) per RFC 8032.
	challenge, err := eddsa.Challenge(group, nonce, r.Config.PublicKey, r.Message)
	if err != nil {
		return r, err
	}

	// zᵢ = dᵢ + ρᵢ⋅eᵢ + c⋅λᵢ⋅xᵢ
	lagrange := polynomial.Lagrange(group, r.PartyIDs())
	responseShare := group.NewScalar().Set(lagrange[r.SelfID()]).Mul(r.Config.PrivateShare).Mul(challenge)
	responseShare.Add(r.d)
	responseShare.Add(group.NewScalar().Set(rho[r.SelfID()]).Mul(r.e))

	// The nonces must never be reused; drop them before sending the
	// response.
	r.d = nil
	r.e = nil

	if err := r.BroadcastMessage(out, &broadcast3{ResponseShare: responseShare}); err != nil {
		return r, err
	}

	return &round3{
		round2:         r,
		Nonce:          nonce,
		NonceShares:    nonceShares,
		Challenge:      challenge,
		Lagrange:       lagrange,
		ResponseShares: map[party.ID]curve.Scalar{r.SelfID(): responseShare},
	}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (r *round2) BroadcastContent() round.BroadcastContent {
	return &broadcast2{
		D: r.Group().NewPoint(),
		E: r.Group().NewPoint(),
	}
}

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
