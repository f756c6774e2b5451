package zksch

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
)

func TestSchProof(t *testing.T) {
	group := curve.Secp256k1{}

	x := sample.Scalar(rand.Reader, group)
	X := x.ActOnBase()

	proof := NewProof(hash.New(), X, x)
	assert.True(t, proof.Verify(hash.New(), X))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := EmptyProof(group)
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")

	assert.True(t, proof2.Verify(hash.New(), X))

	// A different statement must not verify.
	otherX := sample.Scalar(rand.Reader, group).ActOnBase()
	assert.False(t, proof.Verify(hash.New(), otherX))
}

func TestSchSplitFlows(t *testing.T) {
	group := curve.Edwards25519{}

	x := sample.Scalar(rand.Reader, group)
	X := x.ActOnBase()

	// The commitment is produced before the challenge context is fixed,
	// the response afterwards.
	r := NewRandomness(rand.Reader, group)
	commitment := r.Commitment()

	h := hash.New()
	_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Context", Bytes: []byte("session")})

	z := r.Prove(h.Clone(), X, x)
	require.NotNil(t, z)
	assert.True(t, z.Verify(h.Clone(), X, commitment))

	// Verifying against a fresh hash state must fail.
	assert.False(t, z.Verify(hash.New(), X, commitment))
}

func TestSchInvalidInputs(t *testing.T) {
	group := curve.Secp256k1{}

	x := sample.Scalar(rand.Reader, group)

	r := NewRandomness(rand.Reader, group)
	assert.Nil(t, r.Prove(hash.New(), group.NewPoint(), x), "identity public point must be rejected")
	assert.Nil(t, r.Prove(hash.New(), x.ActOnBase(), group.NewScalar()), "zero secret must be rejected")

	var p *Proof
	assert.False(t, p.IsValid())
	assert.False(t, p.Verify(hash.New(), x.ActOnBase()))
}
