// Package bip32 implements non-hardened BIP-32 style key derivation for
// threshold keys.
//
// Only non-hardened derivation is possible, since hardened derivation
// requires the full private key. Each party applies the same additive
// adjustment to its share, and the public key shifts by the derived scalar
// times the generator.
package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
)

// ErrHardened is returned when a hardened derivation index is requested.
var ErrHardened = errors.New("bip32: hardened derivation is not possible for threshold keys")

// DeriveScalar computes the additive adjustment and the new chain key for
// child index i, per BIP-32 CKDpub:
//
//	I = HMAC-SHA512(chainKey, serP(public) ∥ ser32(i))
//
// The left half is the scalar adjustment, the right half the child chain
// key. An error is returned when i is hardened or the derived scalar is
// invalid, in which case the caller should try the next index.
func DeriveScalar(public curve.Point, chainKey []byte, i uint32) (curve.Scalar, []byte, error) {
	if i>>31 == 1 {
		return nil, nil, ErrHardened
	}
	group := public.Curve()

	publicBytes, err := public.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}

	mac := hmac.New(sha512.New, chainKey)
	_, _ = mac.Write(publicBytes)
	_ = binary.Write(mac, binary.BigEndian, i)
	sum := mac.Sum(nil)

	scalarBytes, newChainKey := sum[:32], sum[32:]
	scalarNat := new(saferith.Nat).SetBytes(scalarBytes)
	// parse256(IL) must be less than the group order
	if _, _, lt := scalarNat.CmpMod(group.Order()); lt != 1 {
		return nil, nil, errors.New("bip32: derived scalar exceeds group order")
	}
	scalar := group.NewScalar().SetNat(scalarNat)
	if scalar.IsZero() {
		return nil, nil, errors.New("bip32: derived scalar is zero")
	}
	return scalar, newChainKey, nil
}
