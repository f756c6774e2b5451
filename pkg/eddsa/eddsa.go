// Package eddsa provides the Ed25519 signature type produced by the
// threshold signing protocol, compatible with RFC 8032 verification.
package eddsa

import (
	"crypto/sha512"
	"errors"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
)

// Signature is an Ed25519 signature (R, z) with z = r + c⋅s.
type Signature struct {
	R curve.Point
	Z curve.Scalar
}

// EmptySignature returns a Signature with initialized group elements, ready
// for unmarshalling.
func EmptySignature(group curve.Curve) Signature {
	return Signature{
		R: group.NewPoint(),
		Z: group.NewScalar(),
	}
}

// Challenge computes the RFC 8032 challenge c = SHA-512(R ∥ A ∥ m) reduced
// modulo the group order.
func Challenge(group curve.Curve, R, A curve.Point, m []byte) (curve.Scalar, error) {
	rBytes, err := R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	aBytes, err := A.MarshalBinary()
	if err != nil {
		return nil, err
	}

	h := sha512.New()
	_, _ = h.Write(rBytes)
	_, _ = h.Write(aBytes)
	_, _ = h.Write(m)
	digest := h.Sum(nil)

	// RFC 8032 interprets the digest as a little-endian integer.
	reverse(digest)
	c := new(saferith.Nat).SetBytes(digest)
	return group.NewScalar().SetNat(c), nil
}

// Verify checks the signature over message m against the public key A,
// following RFC 8032, Section 5.1.7.
func (sig Signature) Verify(A curve.Point, m []byte) bool {
	if sig.R == nil || sig.Z == nil || sig.Z.IsZero() {
		return false
	}
	group := A.Curve()

	c, err := Challenge(group, sig.R, A, m)
	if err != nil {
		return false
	}

	// [z]G == R + [c]A
	lhs := sig.Z.ActOnBase()
	rhs := c.Act(A).Add(sig.R)
	return lhs.Equal(rhs)
}

// ToEd25519 returns the 64-byte wire encoding R ∥ z, which standard
// Ed25519 verifiers accept.
func (sig Signature) ToEd25519() ([]byte, error) {
	rBytes, err := sig.R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	zBytes, err := sig.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if len(rBytes) != 32 || len(zBytes) != 32 {
		return nil, errors.New("eddsa: signature elements have unexpected size")
	}
	out := make([]byte, 0, 64)
	out = append(out, rBytes...)
	out = append(out, zBytes...)
	return out, nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
