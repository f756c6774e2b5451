// Package zksch implements Schnorr proofs of knowledge of a discrete
// logarithm, made non-interactive with a session-bound hash.
//
// The commitment phase is split out so a protocol can commit to the nonce
// in an early round and only produce the response once the challenge
// context is fixed.
package zksch

import (
	"crypto/rand"
	"io"

	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
)

// Randomness is the prover's ephemeral state: the nonce a and its
// commitment A = a⋅G.
type Randomness struct {
	a          curve.Scalar
	commitment Commitment
}

// Commitment is the first flow of the proof, A = a⋅G.
type Commitment struct {
	C curve.Point
}

// Response is the second flow, z = a + e⋅x.
type Response struct {
	Z curve.Scalar
}

// Proof is a full non-interactive proof of knowledge of x with X = x⋅G.
type Proof struct {
	C Commitment
	Z Response
}

// NewRandomness samples a fresh nonce and computes its commitment.
func NewRandomness(rand io.Reader, group curve.Curve) *Randomness {
	a := sample.Scalar(rand, group)
	return &Randomness{
		a:          a,
		commitment: Commitment{C: a.ActOnBase()},
	}
}

func challenge(hash *hash.Hash, group curve.Curve, commitment *Commitment, public curve.Point) (curve.Scalar, error) {
	err := hash.WriteAny(commitment.C, public)
	return sample.Scalar(hash.Digest(), group), err
}

// NewProof generates a full proof that the prover knows x with X = x⋅G.
func NewProof(hash *hash.Hash, public curve.Point, private curve.Scalar) *Proof {
	group := private.Curve()
	r := NewRandomness(rand.Reader, group)
	z := r.Prove(hash, public, private)
	return &Proof{
		C: r.commitment,
		Z: *z,
	}
}

// Prove creates a Response for the previously committed nonce.
func (r *Randomness) Prove(hash *hash.Hash, public curve.Point, secret curve.Scalar) *Response {
	if public.IsIdentity() || secret.IsZero() {
		return nil
	}
	group := secret.Curve()
	e, err := challenge(hash, group, &r.commitment, public)
	if err != nil {
		return nil
	}
	// z = a + e⋅x
	z := group.NewScalar().Set(e).Mul(secret).Add(r.a)
	return &Response{Z: z}
}

// Commitment returns the commitment A for the nonce generated with
// NewRandomness.
func (r *Randomness) Commitment() *Commitment {
	return &r.commitment
}

// Verify checks the response against an out-of-band commitment.
func (z *Response) Verify(hash *hash.Hash, public curve.Point, commitment *Commitment) bool {
	if z == nil || !z.IsValid() || public.IsIdentity() {
		return false
	}
	group := z.Z.Curve()

	e, err := challenge(hash, group, commitment, public)
	if err != nil {
		return false
	}

	// z⋅G == A + e⋅X
	lhs := z.Z.ActOnBase()
	rhs := e.Act(public).Add(commitment.C)

	return lhs.Equal(rhs)
}

// Verify checks the complete proof against the public point.
func (p *Proof) Verify(hash *hash.Hash, public curve.Point) bool {
	if p == nil || !p.IsValid() {
		return false
	}
	return p.Z.Verify(hash, public, &p.C)
}

// IsValid returns true if the commitment is a usable group element.
func (c *Commitment) IsValid() bool {
	if c == nil || c.C == nil || c.C.IsIdentity() {
		return false
	}
	return true
}

// IsValid returns true if the response is a usable scalar.
func (z *Response) IsValid() bool {
	if z == nil || z.Z == nil || z.Z.IsZero() {
		return false
	}
	return true
}

// IsValid returns true if both flows of the proof are usable.
func (p *Proof) IsValid() bool {
	if p == nil || !p.Z.IsValid() || !p.C.IsValid() {
		return false
	}
	return true
}

// EmptyProof returns a Proof with group initialized, ready for unmarshalling.
func EmptyProof(group curve.Curve) *Proof {
	return &Proof{
		C: Commitment{C: group.NewPoint()},
		Z: Response{Z: group.NewScalar()},
	}
}

// EmptyCommitment returns a Commitment with group initialized, ready for
// unmarshalling.
func EmptyCommitment(group curve.Curve) *Commitment {
	return &Commitment{C: group.NewPoint()}
}

// EmptyResponse returns a Response with group initialized, ready for
// unmarshalling.
func EmptyResponse(group curve.Curve) *Response {
	return &Response{Z: group.NewScalar()}
}
