package keygen

import (
	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
	zksch "github.com/quorumkey/quorumkey/pkg/zk/sch"
)

// round2 collects the commitments of all parties and echoes them back, so
// that an inconsistent broadcast in round 1 is detected before anything is
// revealed.
type round2 struct {
	*round1

	// VSSPolynomials[j] = Fⱼ(X) = fⱼ(X)⋅G
	VSSPolynomials map[party.ID]*polynomial.Exponent

	// Commitments[j] = Vⱼ
	Commitments map[party.ID]hash.Commitment

	// RIDs[j] is the rid contribution of party j.
	RIDs map[party.ID]types.RID
	// ChainKeys[j] is the chain key contribution of party j.
	ChainKeys map[party.ID]types.RID

	// PaillierPublic[j] = Nⱼ
	PaillierPublic map[party.ID]*paillier.PublicKey
	// Pedersen[j] = (Nⱼ, sⱼ, tⱼ)
	Pedersen map[party.ID]*pedersen.Parameters

	// SchnorrCommitments[j] = Aⱼ
	SchnorrCommitments map[party.ID]*zksch.Commitment

	PaillierSecret *paillier.SecretKey
	// PedersenSecret = λ with s = tᵞ (mod N).
	PedersenSecret *saferith.Nat

	SchnorrRand  *zksch.Randomness
	Decommitment hash.Decommitment
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if err := body.Commitment.Validate(); err != nil {
		return err
	}
	r.Commitments[msg.From] = body.Commitment
	return nil
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// It hashes all commitments in party order and broadcasts the result. All
// parties must arrive at the same value, otherwise someone equivocated.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	h := r.Hash()
	for _, j := range r.PartyIDs() {
		_ = h.WriteAny(r.Commitments[j])
	}
	echoHash := h.Sum()

	if err := r.BroadcastMessage(out, &broadcast3{EchoHash: echoHash}); err != nil {
		return r, err
	}
	return &round3{
		round2:   r,
		EchoHash: echoHash,
	}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (round2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
