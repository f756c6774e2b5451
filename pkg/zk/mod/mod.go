// Package zkmod implements the proof that a modulus N is a product of two
// Blum primes (a Paillier-Blum modulus).
//
// The prover answers params.StatParam random challenges yᵢ ∈ ℤₙ by
// exhibiting N-th roots and fourth roots, which is only possible with
// knowledge of a valid factorization.
package zkmod

import (
	"crypto/rand"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/arith"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/pool"
)

type Public struct {
	// N = p⋅q
	N *saferith.Modulus
}

type Private struct {
	// P, Q are primes with P, Q ≡ 3 (mod 4).
	P, Q *saferith.Nat
	// Phi = ϕ(N) = (p-1)(q-1)
	Phi *saferith.Nat
}

type Response struct {
	// A, B such that y' = (-1)ᵃ wᵇ y is a quadratic residue.
	A, B bool
	// X = (y')^¼ (mod N)
	X *big.Int
	// Z = y^(N⁻¹ mod ϕ(N)) (mod N)
	Z *big.Int
}

type Proof struct {
	// W is a quadratic non-residue with Jacobi symbol -1.
	W         *big.Int
	Responses [params.StatParam]Response
}

// isQRmodPQ checks that y is a quadratic residue mod both p and q, using
// Euler's criterion. pHalf and qHalf are (p-1)/2 and (q-1)/2.
func isQRmodPQ(y, pHalf, qHalf *saferith.Nat, p, q *saferith.Modulus) saferith.Choice {
	oneNat := new(saferith.Nat).SetUint64(1).Resize(1)

	test := new(saferith.Nat)
	test.Exp(y, pHalf, p)
	pOk := test.Eq(oneNat)

	test.Exp(y, qHalf, q)
	qOk := test.Eq(oneNat)

	return pOk & qOk
}

// fourthRootExponent returns e such that (qrᵉ)⁴ = qr for any quadratic
// residue qr mod N, where N is a Blum integer with totient phi:
//
//	e = ((ϕ + 4) / 8)² (mod ϕ)
func fourthRootExponent(phi *saferith.Nat) *saferith.Nat {
	e := new(saferith.Nat).SetUint64(4)
	e.Add(e, phi, -1)
	e.Rsh(e, 3, -1)
	e.ModMul(e, e, saferith.ModulusFromNat(phi))
	return e
}

// makeQuadraticResidue returns a, b and y' = (-1)ᵃ wᵇ y such that y' is a
// quadratic residue mod N.
//
// w must be a quadratic non-residue with Jacobi symbol 1. The return values
// may be leaked, the inputs related to the factorization must not be.
func makeQuadraticResidue(y, w, pHalf, qHalf *saferith.Nat, n, p, q *saferith.Modulus) (a, b bool, out *saferith.Nat) {
	out = new(saferith.Nat).Mod(y, n)
	if isQRmodPQ(out, pHalf, qHalf, p, q) == 1 {
		return
	}

	// y' = -y
	out.ModNeg(out, n)
	a, b = true, false
	if isQRmodPQ(out, pHalf, qHalf, p, q) == 1 {
		return
	}

	// y' = -w⋅y
	out.ModMul(out, w, n)
	a, b = true, true
	if isQRmodPQ(out, pHalf, qHalf, p, q) == 1 {
		return
	}

	// y' = w⋅y
	out.ModNeg(out, n)
	a, b = false, true
	return
}

// IsValid performs the cheap structural checks on the proof.
func (p *Proof) IsValid(public Public) bool {
	if p == nil {
		return false
	}
	N := public.N.Big()
	if big.Jacobi(p.W, N) != -1 {
		return false
	}
	if !arith.IsValidBigModN(N, p.W) {
		return false
	}
	for i := range p.Responses {
		if !arith.IsValidBigModN(N, p.Responses[i].X, p.Responses[i].Z) {
			return false
		}
	}
	return true
}

// NewProof proves that the modulus in public is the product of the two Blum
// primes in private.
func NewProof(hash *hash.Hash, private Private, public Public, pl *pool.Pool) *Proof {
	n, p, q, phi := public.N, private.P, private.Q, private.Phi
	nCRT := arith.ModulusFromFactors(p, q)
	pHalf := new(saferith.Nat).Rsh(p, 1, -1)
	pMod := saferith.ModulusFromNat(p)
	qHalf := new(saferith.Nat).Rsh(q, 1, -1)
	qMod := saferith.ModulusFromNat(q)
	phiMod := saferith.ModulusFromNat(phi)

	// w is public once the proof is sent, so sampling in the clear is fine.
	w := sample.QNR(rand.Reader, n.Big())
	wNat := new(saferith.Nat).SetBig(w, w.BitLen())

	nInverse := new(saferith.Nat).ModInverse(n.Nat(), phiMod)
	e := fourthRootExponent(phi)

	ys, _ := challenge(hash, n, w)

	var rs [params.StatParam]Response
	pl.Parallelize(params.StatParam, func(i int) interface{} {
		y := ys[i]

		// z = y^(N⁻¹ mod ϕ) (mod N)
		z := nCRT.Exp(y, nInverse)

		a, b, yPrime := makeQuadraticResidue(y, wNat, pHalf, qHalf, n, pMod, qMod)
		// x = (y')^¼ (mod N)
		x := nCRT.Exp(yPrime, e)

		rs[i] = Response{
			A: a,
			B: b,
			X: x.Big(),
			Z: z.Big(),
		}
		return nil
	})

	return &Proof{
		W:         w,
		Responses: rs,
	}
}

// Verify checks a single response against the challenge y.
func (r *Response) Verify(n, w, y *big.Int) bool {
	var lhs, rhs big.Int

	// zᴺ == y (mod N)
	lhs.Exp(r.Z, n, n)
	if lhs.Cmp(y) != 0 {
		return false
	}

	// x⁴ == (-1)ᵃ wᵇ y (mod N)
	lhs.Mul(r.X, r.X)
	lhs.Mul(&lhs, &lhs)
	lhs.Mod(&lhs, n)

	rhs.Set(y)
	if r.A {
		rhs.Neg(&rhs)
	}
	if r.B {
		rhs.Mul(&rhs, w)
	}
	rhs.Mod(&rhs, n)

	return lhs.Cmp(&rhs) == 0
}

// Verify checks the proof against the public modulus.
func (p *Proof) Verify(public Public, hash *hash.Hash, pl *pool.Pool) bool {
	if p == nil {
		return false
	}
	n := public.N.Big()

	// N must be odd and composite.
	if n.Bit(0) == 0 || n.ProbablyPrime(20) {
		return false
	}

	if big.Jacobi(p.W, n) != -1 {
		return false
	}
	if !arith.IsValidBigModN(n, p.W) {
		return false
	}
	for i := range p.Responses {
		if !arith.IsValidBigModN(n, p.Responses[i].X, p.Responses[i].Z) {
			return false
		}
	}

	ys, err := challenge(hash, public.N, p.W)
	if err != nil {
		return false
	}
	verifications := pl.Parallelize(params.StatParam, func(i int) interface{} {
		return p.Responses[i].Verify(n, p.W, ys[i].Big())
	})
	for i := range verifications {
		if !verifications[i].(bool) {
			return false
		}
	}
	return true
}

func challenge(hash *hash.Hash, n *saferith.Modulus, w *big.Int) (ys []*saferith.Nat, err error) {
	err = hash.WriteAny(n, w.Bytes())
	digest := hash.Digest()
	ys = make([]*saferith.Nat, params.StatParam)
	for i := range ys {
		ys[i] = sample.ModN(digest, n)
	}
	return
}
