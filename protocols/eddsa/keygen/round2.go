package keygen

import (
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/party"
	zksch "github.com/quorumkey/quorumkey/pkg/zk/sch"
)

// round2 verifies the polynomial commitments, then distributes the secret
// shares and opens the chain key commitment.
type round2 struct {
	*round1

	// VSSPolynomials[j] = Fⱼ(X) = fⱼ(X)⋅G
	VSSPolynomials map[party.ID]*polynomial.Exponent

	// ChainKeys[j] = cⱼ, only the self entry is set until round 3.
	ChainKeys map[party.ID]types.RID
	// ChainKeyCommitments[j] = H(cⱼ, uⱼ)
	ChainKeyCommitments map[party.ID]hash.Commitment
	// ChainKeyDecommitment = uᵢ
	ChainKeyDecommitment hash.Decommitment
}

type broadcast2 struct {
	round.NormalBroadcastContent
	// VSSPolynomial = Fᵢ(X) = fᵢ(X)⋅G
	VSSPolynomial *polynomial.Exponent
	// SchnorrProof is the proof of knowledge of the constant fᵢ(0). It is
	// nil during a refresh.
	SchnorrProof *zksch.Proof
	// Commitment = H(cᵢ, uᵢ) to the chain key contribution.
	Commitment hash.Commitment
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}

	refreshing := r.PreviousPrivateShare != nil
	if body.VSSPolynomial == nil || (!refreshing && !body.SchnorrProof.IsValid()) {
		return round.ErrNilFields
	}
	if err := body.Commitment.Validate(); err != nil {
		return fmt.Errorf("commitment: %w", err)
	}
	if body.VSSPolynomial.Degree() != r.Threshold() {
		return fmt.Errorf("vss polynomial has incorrect degree %d", body.VSSPolynomial.Degree())
	}

	// A refresh contribution must share zero, otherwise it would shift the
	// public key.
	if refreshing {
		if !body.VSSPolynomial.Constant().IsIdentity() {
			return fmt.Errorf("party %d sent a non-zero constant while refreshing", from)
		}
	} else {
		if !body.SchnorrProof.Verify(r.HashForID(from), body.VSSPolynomial.Constant()) {
			return fmt.Errorf("failed to verify Schnorr proof for party %d", from)
		}
	}

	r.VSSPolynomials[from] = body.VSSPolynomial
	r.ChainKeyCommitments[from] = body.Commitment
	return nil
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	// Open the chain key commitment to everybody, and send each party its
	// secret share fᵢ(j) point to point.
	if err := r.BroadcastMessage(out, &broadcast3{
		ChainKey:     r.ChainKeys[r.SelfID()],
		Decommitment: r.ChainKeyDecommitment,
	}); err != nil {
		return r, err
	}

	for _, j := range r.OtherPartyIDs() {
		if err := r.SendMessage(out, &message3{
			Share: r.VSSSecret.Evaluate(j.Scalar(r.Group())),
		}, j); err != nil {
			return r, err
		}
	}

	selfShare := r.VSSSecret.Evaluate(r.SelfID().Scalar(r.Group()))
	return &round3{
		round2:        r,
		ShareReceived: map[party.ID]curve.Scalar{r.SelfID(): selfShare},
	}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (r *round2) BroadcastContent() round.BroadcastContent {
	return &broadcast2{
		VSSPolynomial: polynomial.EmptyExponent(r.Group()),
		SchnorrProof:  zksch.EmptyProof(r.Group()),
	}
}

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
