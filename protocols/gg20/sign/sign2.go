package sign

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// sign2 collects the signature shares and combines them.
type sign2 struct {
	*sign1

	// SigmaShares[j] = σⱼ
	SigmaShares map[party.ID]curve.Scalar
}

type broadcast2 struct {
	round.NormalBroadcastContent
	// SigmaShare = σᵢ
	SigmaShare curve.Scalar
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *sign2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
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
func (sign2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (sign2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// When the combined signature does not verify, each share is checked
// against the presignature to identify the culprits.
func (r *sign2) Finalize(chan<- *round.Message) (round.Session, error) {
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
func (sign2) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (r *sign2) BroadcastContent() round.BroadcastContent {
	return &broadcast2{SigmaShare: r.Group().NewScalar()}
}

// Number implements round.Round.
func (sign2) Number() round.Number { return 2 }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }
