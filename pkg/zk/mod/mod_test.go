package zkmod

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/pkg/zk"
)

func TestMod(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	sk := zk.ProverPaillierSecret
	public := Public{N: sk.PublicKey.N()}
	proof := NewProof(hash.New(), Private{
		P:   sk.P(),
		Q:   sk.Q(),
		Phi: sk.Phi(),
	}, public, pl)

	assert.True(t, proof.Verify(public, hash.New(), pl))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")

	assert.True(t, proof2.Verify(public, hash.New(), pl))

	// A proof for a different modulus must not verify.
	otherPublic := Public{N: zk.VerifierPaillierPublic.N()}
	assert.False(t, proof.Verify(otherPublic, hash.New(), pl))
}

func TestModWrongHashState(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	sk := zk.ProverPaillierSecret
	public := Public{N: sk.PublicKey.N()}
	proof := NewProof(hash.New(), Private{
		P:   sk.P(),
		Q:   sk.Q(),
		Phi: sk.Phi(),
	}, public, pl)

	h := hash.New()
	_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Test", Bytes: []byte("tampered")})
	assert.False(t, proof.Verify(public, h, pl))
}
