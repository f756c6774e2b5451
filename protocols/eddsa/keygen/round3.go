package keygen

import (
	"errors"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// round3 verifies the received shares against the polynomial commitments
// and assembles the final key material.
type round3 struct {
	*round2

	// ShareReceived[j] = fⱼ(i), the secret share from party j.
	ShareReceived map[party.ID]curve.Scalar
}

type broadcast3 struct {
	round.NormalBroadcastContent
	// ChainKey = cᵢ opens the commitment from round 2.
	ChainKey types.RID
	// Decommitment = uᵢ
	Decommitment hash.Decommitment
}

type message3 struct {
	// Share = fᵢ(j), the recipient's share of the sender's polynomial.
	Share curve.Scalar
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}

	if err := body.ChainKey.Validate(); err != nil {
		return fmt.Errorf("chain key: %w", err)
	}
	if err := body.Decommitment.Validate(); err != nil {
		return fmt.Errorf("decommitment: %w", err)
	}
	if !r.HashForID(from).Decommit(r.ChainKeyCommitments[from], body.Decommitment, body.ChainKey) {
		return errors.New("failed to decommit chain key")
	}

	r.ChainKeys[from] = body.ChainKey
	return nil
}

// VerifyMessage implements round.Round.
func (r *round3) VerifyMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*message3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Share == nil {
		return round.ErrNilFields
	}

	// fⱼ(i)⋅G == Fⱼ(i)
	expected := r.VSSPolynomials[from].Evaluate(r.SelfID().Scalar(r.Group()))
	if !body.Share.ActOnBase().Equal(expected) {
		return errors.New("secret share does not match the polynomial commitment")
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round3) StoreMessage(msg round.Message) error {
	body := msg.Content.(*message3)
	r.ShareReceived[msg.From] = body.Share
	return nil
}

// Finalize implements round.Round.
func (r *round3) Finalize(chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	// c = ⊕ⱼ cⱼ, or the previous chain key during a refresh.
	chainKey := r.PreviousChainKey
	if chainKey == nil {
		chainKey = types.EmptyRID()
		for _, j := range r.PartyIDs() {
			chainKey.XOR(r.ChainKeys[j])
		}
	}

	// xᵢ = Σⱼ fⱼ(i), plus the old share during a refresh.
	privateShare := group.NewScalar()
	if r.PreviousPrivateShare != nil {
		privateShare.Set(r.PreviousPrivateShare)
	}
	for _, j := range r.PartyIDs() {
		privateShare.Add(r.ShareReceived[j])
		r.ShareReceived[j] = nil
	}

	// F(X) = Σⱼ Fⱼ(X)
	shamirPolynomials := make([]*polynomial.Exponent, 0, r.N())
	for _, j := range r.PartyIDs() {
		shamirPolynomials = append(shamirPolynomials, r.VSSPolynomials[j])
	}
	shamirPublicPolynomial, err := polynomial.Sum(shamirPolynomials)
	if err != nil {
		return r, err
	}

	verificationShares := make(map[party.ID]curve.Point, r.N())
	for _, j := range r.PartyIDs() {
		share := shamirPublicPolynomial.Evaluate(j.Scalar(group))
		if r.PreviousPublicShares != nil {
			share = share.Add(r.PreviousPublicShares.Points[j])
		}
		verificationShares[j] = share
	}

	publicKey := shamirPublicPolynomial.Constant()
	if r.PreviousPublicKey != nil {
		publicKey = publicKey.Add(r.PreviousPublicKey)
	}

	c := &Config{
		ID:                 r.SelfID(),
		Threshold:          r.Threshold(),
		PrivateShare:       privateShare,
		PublicKey:          publicKey,
		ChainKey:           chainKey,
		VerificationShares: party.NewPointMap(verificationShares),
	}
	if err := c.Validate(); err != nil {
		return r, err
	}
	return r.ResultRound(c), nil
}

// MessageContent implements round.Round.
func (r *round3) MessageContent() round.Content {
	return &message3{Share: r.Group().NewScalar()}
}

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// RoundNumber implements round.Content.
func (message3) RoundNumber() round.Number { return 3 }

// BroadcastContent implements round.BroadcastRound.
func (round3) BroadcastContent() round.BroadcastContent { return &broadcast3{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
