// Package zkenc implements the range proof for a Paillier ciphertext.
//
// The prover shows that K = Enc(k; ρ) encrypts a plaintext k in the
// interval ±2ˡ⁺ᵉ, using the verifier's Pedersen parameters.
package zkenc

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/arith"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
)

type Public struct {
	// K = Enc₀(k;ρ)
	K *paillier.Ciphertext

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

type Private struct {
	// K is the plaintext of K, in ±2ˡ.
	K *saferith.Int

	// Rho is the nonce of K.
	Rho *saferith.Nat
}

type Commitment struct {
	// S = sᵏtᵘ (mod N̂)
	S *saferith.Nat
	// A = Enc₀(α; r)
	A *paillier.Ciphertext
	// C = sᵅtᵞ (mod N̂)
	C *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z1 = α + e⋅k
	Z1 *saferith.Int
	// Z2 = r⋅ρᵉ (mod N)
	Z2 *saferith.Nat
	// Z3 = γ + e⋅μ
	Z3 *saferith.Int
}

// IsValid performs the cheap structural checks on the proof.
func (p *Proof) IsValid(public Public) bool {
	if p == nil {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.A) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Z2) {
		return false
	}
	return true
}

// NewProof proves that public.K encrypts private.K with nonce private.Rho.
func NewProof(group curve.Curve, hash *hash.Hash, public Public, private Private) *Proof {
	N := public.Prover.N()

	alpha := sample.IntervalLEps(rand.Reader)
	r := sample.UnitModN(rand.Reader, N)
	mu := sample.IntervalLN(rand.Reader)
	gamma := sample.IntervalLEpsN(rand.Reader)

	commitment := &Commitment{
		S: public.Aux.Commit(private.K, mu),
		A: public.Prover.EncWithNonce(alpha, r),
		C: public.Aux.Commit(alpha, gamma),
	}

	e, _ := challenge(hash, group, public, commitment)

	// z₁ = α + e⋅k
	z1 := new(saferith.Int).SetInt(private.K)
	z1.Mul(z1, e, -1)
	z1.Add(z1, alpha, -1)
	// z₂ = r⋅ρᵉ (mod N)
	z2 := new(saferith.Nat).ExpI(private.Rho, e, N)
	z2.ModMul(z2, r, N)
	// z₃ = γ + e⋅μ
	z3 := new(saferith.Int).SetInt(mu)
	z3.Mul(z3, e, -1)
	z3.Add(z3, gamma, -1)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
	}
}

// Verify checks the proof against the public statement.
func (p *Proof) Verify(group curve.Curve, hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}

	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}

	e, err := challenge(hash, group, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.C, p.S) {
		return false
	}

	// Enc(z₁; z₂) == A ⊕ (e ⊙ K)
	lhs := public.Prover.EncWithNonce(p.Z1, p.Z2)
	rhs := public.K.Clone().Mul(public.Prover, e).Add(public.Prover, p.A)

	return lhs.Equal(rhs)
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (*saferith.Int, error) {
	err := hash.WriteAny(public.Aux, public.Prover.N(), public.K,
		commitment.S, commitment.A, commitment.C)
	return sample.IntervalScalar(hash.Digest(), group), err
}
