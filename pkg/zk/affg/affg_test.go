package zkaffg

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/zk"
)

func TestAffG(t *testing.T) {
	group := curve.Secp256k1{}

	verifierPaillier := zk.VerifierPaillierPublic
	verifierPedersen := zk.Pedersen
	prover := zk.ProverPaillierPublic

	c := new(saferith.Int).SetUint64(12)
	C, _ := verifierPaillier.Enc(c)

	x := sample.IntervalL(rand.Reader)
	X := group.NewScalar().SetNat(x.Mod(group.Order())).ActOnBase()

	y := sample.IntervalLPrime(rand.Reader)
	Y, rhoY := prover.Enc(y)

	tmp := C.Clone().Mul(verifierPaillier, x)
	D, rho := verifierPaillier.Enc(y)
	D.Add(verifierPaillier, tmp)

	public := Public{
		Kv:       C,
		Dv:       D,
		Fp:       Y,
		Xp:       X,
		Prover:   prover,
		Verifier: verifierPaillier,
		Aux:      verifierPedersen,
	}
	private := Private{
		X:    x,
		Y:    y,
		Rho:  rho,
		RhoY: rhoY,
	}
	proof := NewProof(group, hash.New(), public, private)
	assert.True(t, proof.Verify(group, hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := Empty(group)
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")

	assert.True(t, proof2.Verify(group, hash.New(), public))
}

func TestAffGWrongPublicShare(t *testing.T) {
	group := curve.Secp256k1{}

	c := new(saferith.Int).SetUint64(42)
	C, _ := zk.VerifierPaillierPublic.Enc(c)

	x := sample.IntervalL(rand.Reader)
	y := sample.IntervalLPrime(rand.Reader)
	Y, rhoY := zk.ProverPaillierPublic.Enc(y)

	tmp := C.Clone().Mul(zk.VerifierPaillierPublic, x)
	D, rho := zk.VerifierPaillierPublic.Enc(y)
	D.Add(zk.VerifierPaillierPublic, tmp)

	public := Public{
		Kv:       C,
		Dv:       D,
		Fp:       Y,
		Xp:       sample.Scalar(rand.Reader, group).ActOnBase(),
		Prover:   zk.ProverPaillierPublic,
		Verifier: zk.VerifierPaillierPublic,
		Aux:      zk.Pedersen,
	}
	proof := NewProof(group, hash.New(), public, Private{
		X:    x,
		Y:    y,
		Rho:  rho,
		RhoY: rhoY,
	})

	// Xp does not match the x used in Dv, so verification must fail.
	assert.False(t, proof.Verify(group, hash.New(), public))
}
