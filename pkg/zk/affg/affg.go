// Package zkaffg implements the range proof for the affine-group operation
// used during the multiplicative-to-additive conversion.
//
// The prover shows that D = (x ⊙ C) ⊕ Enc₀(y; ρ) for x committed in X = x⋅G
// and y encrypted under the prover's own key as Y, with both x and y in
// their admissible ranges.
package zkaffg

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
	// Kv is a ciphertext encrypted with the verifier's key.
	Kv *paillier.Ciphertext
	// Dv = (x ⊙ Kv) ⊕ Encᵥ(y; ρ)
	Dv *paillier.Ciphertext
	// Fp = Encₚ(y; ρy), encrypted with the prover's key.
	Fp *paillier.Ciphertext
	// Xp = x⋅G
	Xp curve.Point

	Prover   *paillier.PublicKey
	Verifier *paillier.PublicKey
	Aux      *pedersen.Parameters
}

type Private struct {
	// X ∈ ±2ˡ is the prover's multiplicative share.
	X *saferith.Int
	// Y ∈ ±2ˡ' is the prover's additive share.
	Y *saferith.Int
	// Rho is the nonce of Dv.
	Rho *saferith.Nat
	// RhoY is the nonce of Fp.
	RhoY *saferith.Nat
}

type Commitment struct {
	// A = (α ⊙ Kv) ⊕ Encᵥ(β; r)
	A *paillier.Ciphertext
	// Bx = α⋅G
	Bx curve.Point
	// By = Encₚ(β; rY)
	By *paillier.Ciphertext
	// E = sᵅtᵞ (mod N̂)
	E *saferith.Nat
	// S = sˣtᵐ (mod N̂)
	S *saferith.Nat
	// F = sᵝtᵟ (mod N̂)
	F *saferith.Nat
	// T = sʸtᵘ (mod N̂)
	T *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z1 = α + e⋅x
	Z1 *saferith.Int
	// Z2 = β + e⋅y
	Z2 *saferith.Int
	// Z3 = γ + e⋅m
	Z3 *saferith.Int
	// Z4 = δ + e⋅μ
	Z4 *saferith.Int
	// W = r⋅ρᵉ (mod Nᵥ)
	W *saferith.Nat
	// Wy = rY⋅ρYᵉ (mod Nₚ)
	Wy *saferith.Nat
}

// IsValid performs the cheap structural checks on the proof.
func (p *Proof) IsValid(public Public) bool {
	if p == nil {
		return false
	}
	if !public.Verifier.ValidateCiphertexts(p.A) {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.By) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Wy) {
		return false
	}
	if !arith.IsValidNatModN(public.Verifier.N(), p.W) {
		return false
	}
	if p.Bx == nil || p.Bx.IsIdentity() {
		return false
	}
	return true
}

// NewProof proves that public.Dv was correctly derived from private.X and
// private.Y.
func NewProof(group curve.Curve, hash *hash.Hash, public Public, private Private) *Proof {
	N0 := public.Verifier.N()
	N1 := public.Prover.N()

	alpha := sample.IntervalLEps(rand.Reader)
	beta := sample.IntervalLPrimeEps(rand.Reader)

	r := sample.UnitModN(rand.Reader, N0)
	rY := sample.UnitModN(rand.Reader, N1)

	gamma := sample.IntervalLEpsN(rand.Reader)
	m := sample.IntervalLN(rand.Reader)
	delta := sample.IntervalLEpsN(rand.Reader)
	mu := sample.IntervalLN(rand.Reader)

	// A = Encᵥ(β; r) ⊕ (α ⊙ Kv)
	cAlpha := public.Kv.Clone().Mul(public.Verifier, alpha)
	A := public.Verifier.EncWithNonce(beta, r).Add(public.Verifier, cAlpha)

	commitment := &Commitment{
		A:  A,
		Bx: scalarFromInt(group, alpha).ActOnBase(),
		By: public.Prover.EncWithNonce(beta, rY),
		E:  public.Aux.Commit(alpha, gamma),
		S:  public.Aux.Commit(private.X, m),
		F:  public.Aux.Commit(beta, delta),
		T:  public.Aux.Commit(private.Y, mu),
	}

	e, _ := challenge(hash, group, public, commitment)

	// z₁ = α + e⋅x
	z1 := new(saferith.Int).SetInt(private.X)
	z1.Mul(z1, e, -1)
	z1.Add(z1, alpha, -1)
	// z₂ = β + e⋅y
	z2 := new(saferith.Int).SetInt(private.Y)
	z2.Mul(z2, e, -1)
	z2.Add(z2, beta, -1)
	// z₃ = γ + e⋅m
	z3 := new(saferith.Int).SetInt(m)
	z3.Mul(z3, e, -1)
	z3.Add(z3, gamma, -1)
	// z₄ = δ + e⋅μ
	z4 := new(saferith.Int).SetInt(mu)
	z4.Mul(z4, e, -1)
	z4.Add(z4, delta, -1)
	// w = r⋅ρᵉ (mod N₀)
	w := new(saferith.Nat).ExpI(private.Rho, e, N0)
	w.ModMul(w, r, N0)
	// wY = rY⋅ρYᵉ (mod N₁)
	wY := new(saferith.Nat).ExpI(private.RhoY, e, N1)
	wY.ModMul(wY, rY, N1)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
		Z4:         z4,
		W:          w,
		Wy:         wY,
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
	if !arith.IsInIntervalLPrimeEps(p.Z2) {
		return false
	}

	e, err := challenge(hash, group, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.E, p.S) {
		return false
	}
	if !public.Aux.Verify(p.Z2, p.Z4, e, p.F, p.T) {
		return false
	}

	{
		// Encᵥ(z₂; w) ⊕ (z₁ ⊙ Kv) == A ⊕ (e ⊙ Dv)
		tmp := public.Kv.Clone().Mul(public.Verifier, p.Z1)
		lhs := public.Verifier.EncWithNonce(p.Z2, p.W).Add(public.Verifier, tmp)
		rhs := public.Dv.Clone().Mul(public.Verifier, e).Add(public.Verifier, p.A)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// [z₁]G == Bx + [e]Xp
		lhs := scalarFromInt(group, p.Z1).ActOnBase()
		rhs := scalarFromInt(group, e).Act(public.Xp).Add(p.Bx)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// Encₚ(z₂; wY) == By ⊕ (e ⊙ Fp)
		lhs := public.Prover.EncWithNonce(p.Z2, p.Wy)
		rhs := public.Fp.Clone().Mul(public.Prover, e).Add(public.Prover, p.By)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (*saferith.Int, error) {
	err := hash.WriteAny(public.Aux, public.Prover.N(), public.Verifier.N(),
		public.Kv, public.Dv, public.Fp, public.Xp,
		commitment.A, commitment.Bx, commitment.By,
		commitment.E, commitment.S, commitment.F, commitment.T)
	return sample.IntervalScalar(hash.Digest(), group), err
}

func scalarFromInt(group curve.Curve, x *saferith.Int) curve.Scalar {
	return group.NewScalar().SetNat(x.Mod(group.Order()))
}

// Empty returns a Proof whose curve elements are initialized for
// unmarshalling.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		Commitment: &Commitment{Bx: group.NewPoint()},
	}
}
