package ecdsa

import (
	"errors"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

var (
	// ErrTupleConsumed is returned when a presignature is used for a second
	// message. Reusing the nonce of a presignature leaks the secret key.
	ErrTupleConsumed = errors.New("ecdsa: presignature was already consumed")
	// ErrInsufficientShares is returned when signature shares from some
	// signers of the presignature quorum are missing.
	ErrInsufficientShares = errors.New("ecdsa: missing signature shares")
)

// PreSignature is a message-independent signing tuple produced by the
// presigning protocol. It can be combined with a digest to produce a
// signature share in a single non-interactive step.
//
// A PreSignature must be used for exactly one message.
type PreSignature struct {
	// ID uniquely identifies this presignature across the quorum.
	ID types.RID
	// R = δ⁻¹⋅Γ is the final nonce point.
	R curve.Point
	// RBar[j] = δ⁻¹kⱼ⋅Γ, used to attribute faults among signature shares.
	RBar *party.PointMap
	// S[j] = χⱼ⋅R
	S *party.PointMap
	// KShare is this party's share kᵢ of the nonce.
	KShare curve.Scalar
	// ChiShare is this party's share χᵢ = kᵢ⋅x (after reconstruction).
	ChiShare curve.Scalar

	consumed bool
}

// EmptyPreSignature returns a PreSignature with initialized group elements,
// ready for unmarshalling.
func EmptyPreSignature(group curve.Curve) *PreSignature {
	return &PreSignature{
		R:        group.NewPoint(),
		RBar:     party.EmptyPointMap(group),
		S:        party.EmptyPointMap(group),
		KShare:   group.NewScalar(),
		ChiShare: group.NewScalar(),
	}
}

// Group returns the elliptic curve group of the presignature.
func (sig *PreSignature) Group() curve.Curve {
	return sig.R.Curve()
}

// Consume marks the presignature as used. The second and any further call
// returns ErrTupleConsumed.
func (sig *PreSignature) Consume() error {
	if sig.consumed {
		return ErrTupleConsumed
	}
	sig.consumed = true
	return nil
}

// Consumed reports whether a signature share was already derived from this
// presignature.
func (sig *PreSignature) Consumed() bool {
	return sig.consumed
}

// SignatureShare derives this party's additive share of the signature over
// the given digest:
//
//	σᵢ = kᵢ⋅m + r⋅χᵢ
func (sig *PreSignature) SignatureShare(hash []byte) curve.Scalar {
	group := sig.Group()
	// σᵢ = kᵢ⋅m + r⋅χᵢ
	m := curve.FromHash(group, hash)
	r := sig.R.XScalar()
	mk := m.Mul(sig.KShare)
	rx := r.Mul(sig.ChiShare)
	return mk.Add(rx)
}

// Signature combines the signature shares from all signers of the quorum.
// It fails with ErrInsufficientShares when a signer's share is missing.
func (sig *PreSignature) Signature(shares map[party.ID]curve.Scalar) (*Signature, error) {
	group := sig.Group()
	s := group.NewScalar()
	for _, id := range sig.RBar.IDs() {
		share, ok := shares[id]
		if !ok {
			return nil, fmt.Errorf("%w: no share from party %d", ErrInsufficientShares, id)
		}
		s.Add(share)
	}
	return &Signature{
		R: sig.R,
		S: s,
	}, nil
}

// VerifySignatureShares checks each share for consistency with the
// presignature, returning the parties whose shares were faulty:
//
//	σⱼ⋅R == m⋅Rⱼ + r⋅Sⱼ
func (sig *PreSignature) VerifySignatureShares(shares map[party.ID]curve.Scalar, hash []byte) (culprits []party.ID) {
	group := sig.Group()
	r := sig.R.XScalar()
	m := curve.FromHash(group, hash)
	for j, share := range shares {
		Rj, Sj := sig.RBar.Points[j], sig.S.Points[j]
		if Rj == nil || Sj == nil {
			culprits = append(culprits, j)
			continue
		}
		lhs := share.Act(sig.R)
		rhs := m.Act(Rj).Add(r.Act(Sj))
		if !lhs.Equal(rhs) {
			culprits = append(culprits, j)
		}
	}
	return
}

// Validate checks the consistency of the presignature's fields.
func (sig *PreSignature) Validate() error {
	if sig.R == nil || sig.R.IsIdentity() {
		return errors.New("ecdsa: presignature: R is the identity")
	}
	if err := sig.ID.Validate(); err != nil {
		return fmt.Errorf("ecdsa: presignature: %w", err)
	}
	if sig.KShare == nil || sig.KShare.IsZero() {
		return errors.New("ecdsa: presignature: KShare is zero")
	}
	if sig.ChiShare == nil || sig.ChiShare.IsZero() {
		return errors.New("ecdsa: presignature: ChiShare is zero")
	}
	if sig.RBar == nil || sig.S == nil {
		return errors.New("ecdsa: presignature: missing point maps")
	}
	if len(sig.RBar.Points) != len(sig.S.Points) {
		return errors.New("ecdsa: presignature: inconsistent signer sets")
	}
	for _, id := range sig.RBar.IDs() {
		if _, ok := sig.S.Points[id]; !ok {
			return errors.New("ecdsa: presignature: inconsistent signer sets")
		}
	}
	return nil
}

// SignerIDs returns the sorted quorum which produced this presignature.
func (sig *PreSignature) SignerIDs() party.IDSlice {
	return sig.RBar.IDs()
}
