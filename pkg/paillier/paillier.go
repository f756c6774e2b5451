// Package paillier implements the additively homomorphic Paillier
// cryptosystem over a modulus N = p⋅q where p and q are Blum primes.
package paillier

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/pkg/math/arith"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
	"github.com/quorumkey/quorumkey/pkg/pool"
)

var (
	ErrPaillierLength = fmt.Errorf("paillier: wrong bit length of Paillier modulus N, expected %d", params.BitsPaillier)
	ErrPaillierEven   = errors.New("paillier: modulus N is even")
	ErrPaillierNil    = errors.New("paillier: modulus N is nil")
	ErrPaillierPrime  = errors.New("paillier: prime factor did not pass primality test")
)

// PublicKey is a Paillier public key, caching both N and N².
type PublicKey struct {
	// n = p⋅q
	n *arith.Modulus
	// nSquared = n²
	nSquared *arith.Modulus
	// nNat = n as a Nat, used during nonce exponentiation
	nNat *saferith.Nat
}

// NewPublicKey performs no validation and should only be called with a
// modulus which passed ValidateN.
func NewPublicKey(n *saferith.Modulus) *PublicKey {
	nNat := n.Nat()
	nSquared := saferith.ModulusFromNat(new(saferith.Nat).Mul(nNat, nNat, -1))

	return &PublicKey{
		n:        arith.ModulusFromN(n),
		nSquared: arith.ModulusFromN(nSquared),
		nNat:     nNat,
	}
}

// ValidateN performs the public checks on a candidate Paillier modulus:
//
//   - log₂(n) = params.BitsPaillier
//   - n is odd
//   - n is not prime
func ValidateN(n *saferith.Modulus) error {
	if n == nil {
		return ErrPaillierNil
	}
	if bits := n.BitLen(); bits != params.BitsPaillier {
		return fmt.Errorf("%w, have: %d", ErrPaillierLength, bits)
	}
	if n.Nat().Byte(0)&1 != 1 {
		return ErrPaillierEven
	}
	if n.Big().ProbablyPrime(20) {
		return errors.New("paillier: modulus N is prime")
	}
	return nil
}

// Enc encrypts m and returns the ciphertext together with the nonce used.
//
// ct = (1+N)ᵐ ⋅ ρᴺ (mod N²).
func (pk PublicKey) Enc(m *saferith.Int) (*Ciphertext, *saferith.Nat) {
	nonce := sample.UnitModN(rand.Reader, pk.n.Modulus)
	return pk.EncWithNonce(m, nonce), nonce
}

// EncWithNonce encrypts m with the given nonce.
//
// The message must be in the range [-(N-1)/2, …, (N-1)/2].
func (pk PublicKey) EncWithNonce(m *saferith.Int, nonce *saferith.Nat) *Ciphertext {
	nSquared := pk.nSquared.Modulus
	oneNat := new(saferith.Nat).SetUint64(1)

	// (1+N)ᵐ = 1 + m⋅N (mod N²)
	mN := new(saferith.Int).SetNat(pk.nNat)
	mN.Mul(mN, m, -1)
	c := mN.Mod(nSquared)
	c.ModAdd(c, oneNat, nSquared)

	// ρᴺ (mod N²)
	rhoN := pk.nSquared.Exp(nonce, pk.nNat)

	c.ModMul(c, rhoN, nSquared)
	return &Ciphertext{c: c}
}

// ValidateCiphertexts returns true if all ciphertexts are valid elements
// of ℤ*[N²].
func (pk PublicKey) ValidateCiphertexts(cts ...*Ciphertext) bool {
	for _, ct := range cts {
		if ct == nil || ct.c == nil {
			return false
		}
		if !arith.IsValidNatModN(pk.nSquared.Modulus, ct.c) {
			return false
		}
	}
	return true
}

// Equal returns true if pk ≡ other.
func (pk PublicKey) Equal(other *PublicKey) bool {
	_, eq, _ := pk.n.Cmp(other.n.Modulus)
	return eq == 1
}

// N returns the public modulus N.
func (pk PublicKey) N() *saferith.Modulus { return pk.n.Modulus }

// Modulus returns the arith wrapper for N.
func (pk PublicKey) Modulus() *arith.Modulus { return pk.n }

// ModulusSquared returns the arith wrapper for N².
func (pk PublicKey) ModulusSquared() *arith.Modulus { return pk.nSquared }

// SecretKey is a Paillier secret key, holding the factorization of N.
type SecretKey struct {
	*PublicKey
	// p, q of the modulus N
	p, q *saferith.Nat
	// phi = ϕ(n) = (p-1)(q-1)
	phi *saferith.Nat
	// phiInv = ϕ⁻¹ (mod N)
	phiInv *saferith.Nat
}

// P returns the first of the two factors composing this key.
func (sk *SecretKey) P() *saferith.Nat { return sk.p }

// Q returns the second of the two factors composing this key.
func (sk *SecretKey) Q() *saferith.Nat { return sk.q }

// Phi returns ϕ(N) = (P-1)(Q-1).
func (sk *SecretKey) Phi() *saferith.Nat { return sk.phi }

// NewSecretKey samples two suitable Blum primes using the given pool, and
// returns the initialized SecretKey.
func NewSecretKey(pl *pool.Pool) *SecretKey {
	return NewSecretKeyFromPrimes(sample.Paillier(rand.Reader, pl))
}

// NewSecretKeyFromPrimes generates a new SecretKey from its two primes.
// Assumes that P and Q are valid Blum primes of the right bit size.
func NewSecretKeyFromPrimes(P, Q *saferith.Nat) *SecretKey {
	oneNat := new(saferith.Nat).SetUint64(1)

	n := arith.ModulusFromFactors(P, Q)
	nNat := n.Nat()
	nSquared := arith.ModulusFromN(saferith.ModulusFromNat(new(saferith.Nat).Mul(nNat, nNat, -1)))

	pMinus1 := new(saferith.Nat).Sub(P, oneNat, -1)
	qMinus1 := new(saferith.Nat).Sub(Q, oneNat, -1)

	phi := new(saferith.Nat).Mul(pMinus1, qMinus1, -1)
	phiInv := new(saferith.Nat).ModInverse(phi, n.Modulus)

	return &SecretKey{
		p:      P,
		q:      Q,
		phi:    phi,
		phiInv: phiInv,
		PublicKey: &PublicKey{
			n:        n,
			nSquared: nSquared,
			nNat:     nNat,
		},
	}
}

// Dec decrypts a ciphertext and returns the plaintext m in the symmetric
// range ±(N-2)/2.
func (sk *SecretKey) Dec(ct *Ciphertext) (*saferith.Int, error) {
	oneNat := new(saferith.Nat).SetUint64(1)
	n := sk.n.Modulus

	if !sk.ValidateCiphertexts(ct) {
		return nil, errors.New("paillier: failed to decrypt invalid ciphertext")
	}

	// r = cᵠ (mod N²)
	result := sk.nSquared.Exp(ct.c, sk.phi)
	// r = (cᵠ - 1)
	result.Sub(result, oneNat, -1)
	// r = (cᵠ - 1) / N
	result.Div(result, n, -1)
	// r = [(cᵠ - 1) / N] ⋅ ϕ⁻¹ (mod N)
	result.ModMul(result, sk.phiInv, n)

	return new(saferith.Int).SetModSymmetric(result, n), nil
}

// DecWithRandomness returns the plaintext m as well as the nonce ρ with
// ct = (1+N)ᵐ ρᴺ (mod N²).
func (sk *SecretKey) DecWithRandomness(ct *Ciphertext) (*saferith.Int, *saferith.Nat, error) {
	m, err := sk.Dec(ct)
	if err != nil {
		return nil, nil, err
	}

	// Since (1+N) ≡ 1 (mod N), reducing ct mod N removes the message part,
	// leaving ρᴺ (mod N).
	rhoN := new(saferith.Nat).Mod(ct.c, sk.n.Modulus)
	// ρ = (ρᴺ)^(N⁻¹ mod ϕ) (mod N)
	phiMod := saferith.ModulusFromNat(sk.phi)
	nInverse := new(saferith.Nat).ModInverse(sk.nNat, phiMod)
	nonce := sk.n.Exp(rhoN, nInverse)

	return m, nonce, nil
}

// GeneratePedersen returns new Pedersen parameters (N, s, t) derived from
// this key, along with the secret exponent λ such that s = tᵞ (mod N).
func (sk SecretKey) GeneratePedersen() (*pedersen.Parameters, *saferith.Nat) {
	s, t, lambda := sample.Pedersen(rand.Reader, sk.phi, sk.n.Modulus)
	return pedersen.New(sk.n, s, t), lambda
}

// ValidatePrime checks whether p is a suitable Blum prime factor for a
// Paillier modulus:
//
//   - log₂(p) = params.BitsBlumPrime
//   - p ≡ 3 (mod 4)
//   - (p-1)/2 is prime
func ValidatePrime(p *saferith.Nat) error {
	if p == nil {
		return ErrPaillierNil
	}
	if bits := p.TrueLen(); bits != params.BitsBlumPrime {
		return fmt.Errorf("paillier: prime has wrong bit length (got %d, expected %d)", bits, params.BitsBlumPrime)
	}
	if p.Byte(0)&3 != 3 {
		return errors.New("paillier: prime p is not equivalent to 3 (mod 4)")
	}
	pMinus1Div2 := new(big.Int).Rsh(p.Big(), 1)
	if !pMinus1Div2.ProbablyPrime(20) {
		return ErrPaillierPrime
	}
	return nil
}
