// Package zkprm implements the proof of correct generation of Pedersen
// parameters (N, s, t), showing knowledge of λ with s = tᵞ (mod N).
//
// The proof consists of params.StatParam parallel runs of a binary-challenge
// sigma protocol.
package zkprm

import (
	"crypto/rand"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/arith"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
	"github.com/quorumkey/quorumkey/pkg/pool"
)

type Public struct {
	Aux *pedersen.Parameters
}

type Private struct {
	// Lambda is the secret exponent with S = Tᵞ (mod N).
	Lambda *saferith.Nat
	// Phi = ϕ(N)
	Phi *saferith.Nat
	// P, Q are the prime factors of N.
	P, Q *saferith.Nat
}

type Proof struct {
	// As[i] = tᵃⁱ (mod N)
	As [params.StatParam]*saferith.Nat
	// Zs[i] = aᵢ + eᵢ⋅λ (mod ϕ)
	Zs [params.StatParam]*saferith.Nat
}

// IsValid performs the cheap structural checks on the proof.
func (p *Proof) IsValid(public Public) bool {
	if p == nil {
		return false
	}
	n := public.Aux.N()
	for i := 0; i < params.StatParam; i++ {
		if !arith.IsValidNatModN(n, p.As[i], p.Zs[i]) {
			return false
		}
	}
	return true
}

// NewProof proves that the Pedersen parameters in public were generated
// with the secret exponent private.Lambda.
func NewProof(private Private, hash *hash.Hash, public Public, pl *pool.Pool) *Proof {
	lambda := private.Lambda
	phiMod := saferith.ModulusFromNat(private.Phi)
	n := arith.ModulusFromFactors(private.P, private.Q)
	t := public.Aux.T()

	var (
		as [params.StatParam]*saferith.Nat
		As [params.StatParam]*saferith.Nat
	)
	lockedRand := pool.NewLockedReader(rand.Reader)
	pl.Parallelize(params.StatParam, func(i int) interface{} {
		// aᵢ ∈ ℤϕ
		as[i] = sample.ModN(lockedRand, phiMod)
		// Aᵢ = tᵃⁱ (mod N)
		As[i] = n.Exp(t, as[i])
		return nil
	})

	es, _ := challenge(hash, public, As)

	var Zs [params.StatParam]*saferith.Nat
	for i := 0; i < params.StatParam; i++ {
		z := as[i]
		// The challenge bit is public, so branching is fine.
		if es[i] {
			z.ModAdd(z, lambda, phiMod)
		}
		Zs[i] = z
	}

	return &Proof{
		As: As,
		Zs: Zs,
	}
}

// Verify checks the proof against the Pedersen parameters in public.
func (p *Proof) Verify(public Public, hash *hash.Hash, pl *pool.Pool) bool {
	if err := public.Aux.Validate(); err != nil {
		return false
	}
	if !p.IsValid(public) {
		return false
	}

	es, err := challenge(hash, public, p.As)
	if err != nil {
		return false
	}

	n := public.Aux.NArith()
	s, t := public.Aux.S(), public.Aux.T()
	one := new(saferith.Nat).SetUint64(1)

	verifications := pl.Parallelize(params.StatParam, func(i int) interface{} {
		a, z := p.As[i], p.Zs[i]

		if a.Eq(one) == 1 {
			return false
		}

		// tᶻ == A⋅sᵉ (mod N)
		lhs := n.Exp(t, z)
		rhs := new(saferith.Nat).SetNat(a)
		if es[i] {
			rhs.ModMul(rhs, s, n.Modulus)
		}

		_, eq, _ := lhs.Cmp(rhs)
		return eq == 1
	})
	for i := range verifications {
		if !verifications[i].(bool) {
			return false
		}
	}
	return true
}

func challenge(hash *hash.Hash, public Public, As [params.StatParam]*saferith.Nat) ([params.StatParam]bool, error) {
	err := hash.WriteAny(public.Aux)
	for _, a := range As {
		if err == nil {
			err = hash.WriteAny(a)
		}
	}

	var es [params.StatParam]bool
	tmpBytes := make([]byte, params.StatParam)
	if _, readErr := io.ReadFull(hash.Digest(), tmpBytes); readErr != nil {
		return es, readErr
	}
	for i := range es {
		es[i] = (tmpBytes[i] & 1) == 1
	}
	return es, err
}
