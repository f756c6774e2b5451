// Package ecdsa provides the signature and presignature types produced by
// the threshold signing protocols.
package ecdsa

import (
	"github.com/quorumkey/quorumkey/pkg/math/curve"
)

// Signature is a standard ECDSA signature (R, S), where R is kept as a full
// point so the recovery byte can be derived if needed.
type Signature struct {
	R curve.Point
	S curve.Scalar
}

// EmptySignature returns a Signature with initialized group elements, ready
// for unmarshalling.
func EmptySignature(group curve.Curve) Signature {
	return Signature{
		R: group.NewPoint(),
		S: group.NewScalar(),
	}
}

// Verify checks the signature over the given message digest against the
// public key X. It follows SEC 1, Version 2.0, Section 4.1.4.
func (sig Signature) Verify(X curve.Point, hash []byte) bool {
	group := X.Curve()

	r := sig.R.XScalar()
	if r == nil || r.IsZero() || sig.S.IsZero() {
		return false
	}

	m := curve.FromHash(group, hash)
	sInv := group.NewScalar().Set(sig.S).Invert()

	mG := m.ActOnBase()
	rX := r.Act(X)
	R2 := sInv.Act(mG.Add(rX))

	return R2.Equal(sig.R)
}
