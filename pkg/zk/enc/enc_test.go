package zkenc

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/zk"
)

func TestEnc(t *testing.T) {
	group := curve.Secp256k1{}

	verifier := zk.Pedersen
	prover := zk.ProverPaillierPublic

	k := sample.IntervalL(rand.Reader)
	K, rho := prover.Enc(k)
	public := Public{
		K:      K,
		Prover: prover,
		Aux:    verifier,
	}

	proof := NewProof(group, hash.New(), public, Private{
		K:   k,
		Rho: rho,
	})
	assert.True(t, proof.Verify(group, hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")

	assert.True(t, proof2.Verify(group, hash.New(), public))
}

func TestEncWrongStatement(t *testing.T) {
	group := curve.Secp256k1{}

	k := sample.IntervalL(rand.Reader)
	K, rho := zk.ProverPaillierPublic.Enc(k)
	public := Public{
		K:      K,
		Prover: zk.ProverPaillierPublic,
		Aux:    zk.Pedersen,
	}
	proof := NewProof(group, hash.New(), public, Private{
		K:   k,
		Rho: rho,
	})

	// Proving knowledge of a different plaintext must fail.
	otherK, _ := zk.ProverPaillierPublic.Enc(sample.IntervalL(rand.Reader))
	public.K = otherK
	assert.False(t, proof.Verify(group, hash.New(), public))
}
