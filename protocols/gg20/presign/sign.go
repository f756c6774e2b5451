package presign

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/ecdsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// signRound is the online round of the full signing flow. It collects the
// signature shares σⱼ = kⱼ⋅m + r⋅χⱼ and combines them.
type signRound struct {
	*presign5

	PreSignature *ecdsa.PreSignature

	// SigmaShares[j] = σⱼ
	SigmaShares map[party.ID]curve.Scalar
}

type broadcastSign struct {
	round.NormalBroadcastContent
	// SigmaShare = σᵢ
	SigmaShare curve.Scalar
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *signRound) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcastSign)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.SigmaShare == nil || body.SigmaShare.IsZero() {
		return round.ErrNilFields
	}
	r.SigmaShares[msg.From] = body.SigmaShare
	return nil
}

// VerifyMessage implements round.Round.
func (signRound) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (signRound) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// When the combined signature does not verify, each share is checked
// against the presignature to identify the culprits.
func (r *signRound) Finalize(chan<- *round.Message) (round.Session, error) {
	signature, err := r.PreSignature.Signature(r.SigmaShares)
	if err != nil {
		return r, err
	}

	if signature.Verify(r.PublicKey, r.Message) {
		return r.ResultRound(signature), nil
	}

	culprits := r.PreSignature.VerifySignatureShares(r.SigmaShares, r.Message)
	return r.AbortRound(errors.New("combined signature failed to verify"), culprits...), nil
}

// MessageContent implements round.Round.
func (signRound) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (r *signRound) BroadcastContent() round.BroadcastContent {
	return &broadcastSign{SigmaShare: r.Group().NewScalar()}
}

// Number implements round.Round.
func (signRound) Number() round.Number { return 6 }

// RoundNumber implements round.Content.
func (broadcastSign) RoundNumber() round.Number { return 6 }
