package keygen

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	zksch "github.com/quorumkey/quorumkey/pkg/zk/sch"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

// round6 verifies the proofs of knowledge of all new shares and outputs the
// final config.
type round6 struct {
	*round5

	UpdatedConfig *config.Config
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round6) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast6)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if !body.SchnorrResponse.IsValid() {
		return round.ErrNilFields
	}

	h := r.Hash()
	_ = h.WriteAny(r.UpdatedConfig, from)
	if !body.SchnorrResponse.Verify(h, r.UpdatedConfig.Public[from].ECDSA, r.SchnorrCommitments[from]) {
		return errors.New("failed to validate schnorr proof for the new share")
	}
	return nil
}

// VerifyMessage implements round.Round.
func (round6) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round6) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *round6) Finalize(chan<- *round.Message) (round.Session, error) {
	if err := r.UpdatedConfig.Validate(); err != nil {
		return r, err
	}
	// Bind the result, so a following presignature session hashes in the
	// full config.
	r.UpdateHashState(r.UpdatedConfig)
	return r.ResultRound(r.UpdatedConfig), nil
}

// MessageContent implements round.Round.
func (round6) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (r *round6) BroadcastContent() round.BroadcastContent {
	return &broadcast6{SchnorrResponse: zksch.EmptyResponse(r.Group())}
}

// Number implements round.Round.
func (round6) Number() round.Number { return 6 }
