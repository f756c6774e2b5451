package eddsa

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
)

var group = curve.Edwards25519{}

// sign produces a Schnorr signature over the Ed25519 group, with the
// challenge computed per RFC 8032.
func sign(t *testing.T, secret curve.Scalar, public curve.Point, m []byte) Signature {
	r := sample.Scalar(rand.Reader, group)
	R := r.ActOnBase()
	c, err := Challenge(group, R, public, m)
	require.NoError(t, err)
	z := group.NewScalar().Set(c).Mul(secret).Add(r)
	return Signature{R: R, Z: z}
}

func TestSignatureVerify(t *testing.T) {
	secret := sample.Scalar(rand.Reader, group)
	public := secret.ActOnBase()
	message := []byte("threshold signing test message")

	sig := sign(t, secret, public, message)
	assert.True(t, sig.Verify(public, message))
	assert.False(t, sig.Verify(public, []byte("a different message")))

	other := sample.Scalar(rand.Reader, group).ActOnBase()
	assert.False(t, sig.Verify(other, message))
}

func TestVerifyRejectsInvalid(t *testing.T) {
	public := sample.Scalar(rand.Reader, group).ActOnBase()

	var empty Signature
	assert.False(t, empty.Verify(public, []byte("m")))

	zeroZ := Signature{R: group.NewPoint(), Z: group.NewScalar()}
	assert.False(t, zeroZ.Verify(public, []byte("m")))
}

func TestToEd25519(t *testing.T) {
	secret := sample.Scalar(rand.Reader, group)
	public := secret.ActOnBase()
	message := []byte("cross check against the standard library")

	sig := sign(t, secret, public, message)
	require.True(t, sig.Verify(public, message))

	sigBytes, err := sig.ToEd25519()
	require.NoError(t, err)
	require.Len(t, sigBytes, 64)

	publicBytes, err := public.MarshalBinary()
	require.NoError(t, err)

	assert.True(t, ed25519.Verify(ed25519.PublicKey(publicBytes), message, sigBytes),
		"the standard library must accept the encoded signature")
}

func TestChallengeDeterministic(t *testing.T) {
	secret := sample.Scalar(rand.Reader, group)
	public := secret.ActOnBase()
	R := sample.Scalar(rand.Reader, group).ActOnBase()

	c1, err := Challenge(group, R, public, []byte("m"))
	require.NoError(t, err)
	c2, err := Challenge(group, R, public, []byte("m"))
	require.NoError(t, err)
	assert.True(t, c1.Equal(c2))

	c3, err := Challenge(group, R, public, []byte("m'"))
	require.NoError(t, err)
	assert.False(t, c1.Equal(c3))
}
