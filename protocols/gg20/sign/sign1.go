package sign

import (
	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/ecdsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// sign1 derives and broadcasts this party's signature share.
type sign1 struct {
	*round.Helper

	// PublicKey = X
	PublicKey curve.Point
	// Message = m
	Message []byte
	// PreSignature = (R, {R̄ⱼ, Sⱼ}ⱼ, kᵢ, χᵢ)
	PreSignature *ecdsa.PreSignature
}

// VerifyMessage implements round.Round.
func (sign1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (sign1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *sign1) Finalize(out chan<- *round.Message) (round.Session, error) {
	// σᵢ = kᵢ⋅m + r⋅χᵢ
	sigmaShare := r.PreSignature.SignatureShare(r.Message)

	if err := r.BroadcastMessage(out, &broadcast2{SigmaShare: sigmaShare}); err != nil {
		return r, err
	}

	return &sign2{
		sign1:       r,
		SigmaShares: map[party.ID]curve.Scalar{r.SelfID(): sigmaShare},
	}, nil
}

// MessageContent implements round.Round.
func (sign1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (sign1) Number() round.Number { return 1 }
