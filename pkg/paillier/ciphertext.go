package paillier

import (
	"crypto/rand"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
)

// Ciphertext represents an integer of the form (1+N)ᵐρᴺ (mod N²).
// All arithmetic on ciphertexts mutates the receiver and returns it.
type Ciphertext struct {
	c *saferith.Nat
}

// Add sets ct to the encryption of the sum of both plaintexts:
//
//	ct ← ct ⋅ ctᵣ (mod N²).
func (ct *Ciphertext) Add(pk *PublicKey, otherCt *Ciphertext) *Ciphertext {
	if otherCt == nil {
		return ct
	}
	ct.c.ModMul(ct.c, otherCt.c, pk.nSquared.Modulus)
	return ct
}

// Mul sets ct to the encryption of k times the plaintext:
//
//	ct ← ctᵏ (mod N²).
func (ct *Ciphertext) Mul(pk *PublicKey, k *saferith.Int) *Ciphertext {
	if k == nil {
		return ct
	}
	ct.c = pk.nSquared.ExpI(ct.c, k)
	return ct
}

// Randomize multiplies the ciphertext's nonce by the given one, or by a
// newly sampled one when nonce is nil. The updated nonce is returned.
func (ct *Ciphertext) Randomize(pk *PublicKey, nonce *saferith.Nat) *saferith.Nat {
	if nonce == nil {
		nonce = sample.UnitModN(rand.Reader, pk.n.Modulus)
	}
	// ct ⋅ nonceᴺ (mod N²)
	tmp := pk.nSquared.Exp(nonce, pk.nNat)
	ct.c.ModMul(ct.c, tmp, pk.nSquared.Modulus)
	return nonce
}

// Equal checks whether both ciphertexts hold the same value.
func (ct *Ciphertext) Equal(otherCt *Ciphertext) bool {
	if ct == nil || otherCt == nil {
		return false
	}
	_, eq, _ := ct.c.Cmp(otherCt.c)
	return eq == 1
}

// Clone returns a deep copy of ct.
func (ct Ciphertext) Clone() *Ciphertext {
	c := new(saferith.Nat)
	c.SetNat(ct.c)
	return &Ciphertext{c: c}
}

// Nat returns the ciphertext as a saferith.Nat.
func (ct *Ciphertext) Nat() *saferith.Nat {
	return new(saferith.Nat).SetNat(ct.c)
}

// WriteTo implements io.WriterTo, writing the ciphertext padded to the byte
// size of N².
func (ct *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	if ct == nil || ct.c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	buf := make([]byte, params.BytesCiphertext)
	ct.c.FillBytes(buf)
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Ciphertext) Domain() string {
	return "Paillier Ciphertext"
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	buf := make([]byte, params.BytesCiphertext)
	ct.c.FillBytes(buf)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	ct.c = new(saferith.Nat).SetBytes(data)
	return nil
}
