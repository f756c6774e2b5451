package keygen

import (
	"bytes"
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
)

// round3 checks that every party saw the same set of commitments, and then
// opens this party's commitment.
type round3 struct {
	*round2

	// EchoHash = H(ssid, V₁, …, Vₙ), computed from our own view.
	EchoHash []byte
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// A mismatching echo hash means round 1 was not a consistent broadcast, and
// the protocol must abort.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if !bytes.Equal(body.EchoHash, r.EchoHash) {
		return errors.New("echo hash mismatch, inconsistent broadcast detected")
	}
	return nil
}

// VerifyMessage implements round.Round.
func (round3) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round3) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *round3) Finalize(out chan<- *round.Message) (round.Session, error) {
	selfID := r.SelfID()
	pedersenSelf := r.Pedersen[selfID]
	err := r.BroadcastMessage(out, &broadcast4{
		RID:               r.RIDs[selfID],
		C:                 r.ChainKeys[selfID],
		VSSPolynomial:     r.VSSPolynomials[selfID],
		SchnorrCommitment: r.SchnorrRand.Commitment(),
		N:                 pedersenSelf.N(),
		S:                 pedersenSelf.S(),
		T:                 pedersenSelf.T(),
		Decommitment:      r.Decommitment,
	})
	if err != nil {
		return r, err
	}
	return &round4{round3: r}, nil
}

// MessageContent implements round.Round.
func (round3) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (round3) BroadcastContent() round.BroadcastContent { return &broadcast3{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
