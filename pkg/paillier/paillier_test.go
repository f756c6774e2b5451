package paillier_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/zk"
)

func TestEncDecRoundTrip(t *testing.T) {
	sk := zk.ProverPaillierSecret
	pk := sk.PublicKey

	m := sample.IntervalL(rand.Reader)
	ct, _ := pk.Enc(m)

	decrypted, err := sk.Dec(ct)
	require.NoError(t, err)
	assert.True(t, m.Eq(decrypted) == 1, "decryption does not match plaintext")
}

func TestEncDecHomomorphic(t *testing.T) {
	sk := zk.ProverPaillierSecret
	pk := sk.PublicKey

	a := sample.IntervalL(rand.Reader)
	b := sample.IntervalL(rand.Reader)
	ctA, _ := pk.Enc(a)
	ctB, _ := pk.Enc(b)

	sum, err := sk.Dec(ctA.Clone().Add(pk, ctB))
	require.NoError(t, err)
	expectedSum := new(saferith.Int).Add(a, b, -1)
	assert.True(t, expectedSum.Eq(sum) == 1, "homomorphic addition failed")

	k := new(saferith.Int).SetUint64(17)
	prod, err := sk.Dec(ctA.Clone().Mul(pk, k))
	require.NoError(t, err)
	expectedProd := new(saferith.Int).Mul(a, k, -1)
	assert.True(t, expectedProd.Eq(prod) == 1, "homomorphic scaling failed")
}

func TestDecWithRandomness(t *testing.T) {
	sk := zk.ProverPaillierSecret
	pk := sk.PublicKey

	m := new(saferith.Int).SetUint64(42)
	nonce := sample.UnitModN(rand.Reader, pk.N())
	ct := pk.EncWithNonce(m, nonce)

	mActual, nonceActual, err := sk.DecWithRandomness(ct)
	require.NoError(t, err)
	assert.True(t, m.Eq(mActual) == 1)
	assert.True(t, nonce.Eq(nonceActual) == 1)
}

func TestCiphertextRandomize(t *testing.T) {
	sk := zk.ProverPaillierSecret
	pk := sk.PublicKey

	m := sample.IntervalL(rand.Reader)
	ct, _ := pk.Enc(m)
	before := ct.Clone()
	ct.Randomize(pk, nil)

	assert.False(t, ct.Equal(before), "randomization must change the ciphertext")
	decrypted, err := sk.Dec(ct)
	require.NoError(t, err)
	assert.True(t, m.Eq(decrypted) == 1, "randomization must preserve the plaintext")
}

func TestCiphertextMarshalling(t *testing.T) {
	sk := zk.ProverPaillierSecret
	pk := sk.PublicKey

	m := sample.IntervalL(rand.Reader)
	ct, _ := pk.Enc(m)

	data, err := cbor.Marshal(ct)
	require.NoError(t, err)
	ct2 := &paillier.Ciphertext{}
	require.NoError(t, cbor.Unmarshal(data, ct2))

	decrypted, err := sk.Dec(ct2)
	require.NoError(t, err)
	assert.True(t, m.Eq(decrypted) == 1)
}

func TestValidateN(t *testing.T) {
	assert.NoError(t, paillier.ValidateN(zk.ProverPaillierPublic.N()))
	assert.Error(t, paillier.ValidateN(saferith.ModulusFromUint64(15)), "small modulus must be rejected")
}

func TestValidatePrime(t *testing.T) {
	assert.NoError(t, paillier.ValidatePrime(zk.ProverPaillierSecret.P()))
	assert.NoError(t, paillier.ValidatePrime(zk.ProverPaillierSecret.Q()))
	assert.Error(t, paillier.ValidatePrime(new(saferith.Nat).SetUint64(7)), "short prime must be rejected")
}
