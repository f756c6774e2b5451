package ecdsa

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
)

var group = curve.Secp256k1{}

func TestSignatureVerify(t *testing.T) {
	x := sample.Scalar(rand.Reader, group)
	X := x.ActOnBase()

	digest := sha256.Sum256([]byte("message to sign"))
	m := curve.FromHash(group, digest[:])

	// R = k⁻¹⋅G, s = k⋅(m + r⋅x)
	k := sample.Scalar(rand.Reader, group)
	R := group.NewScalar().Set(k).Invert().ActOnBase()
	r := R.XScalar()
	s := group.NewScalar().Set(r).Mul(x).Add(m).Mul(k)

	sig := Signature{R: R, S: s}
	assert.True(t, sig.Verify(X, digest[:]))

	otherDigest := sha256.Sum256([]byte("a different message"))
	assert.False(t, sig.Verify(X, otherDigest[:]))

	otherX := sample.Scalar(rand.Reader, group).ActOnBase()
	assert.False(t, sig.Verify(otherX, digest[:]))
}

// testPreSignatures fabricates the two halves of a 2-party presignature for
// secret key x and nonce k, split additively.
func testPreSignatures(t *testing.T, x, k curve.Scalar) map[party.ID]*PreSignature {
	id, err := types.NewRID(rand.Reader)
	require.NoError(t, err)

	R := group.NewScalar().Set(k).Invert().ActOnBase()

	kShares := map[party.ID]curve.Scalar{1: sample.Scalar(rand.Reader, group)}
	kShares[2] = group.NewScalar().Set(k).Sub(kShares[1])
	chi := group.NewScalar().Set(k).Mul(x)
	chiShares := map[party.ID]curve.Scalar{1: sample.Scalar(rand.Reader, group)}
	chiShares[2] = group.NewScalar().Set(chi).Sub(chiShares[1])

	rBar := map[party.ID]curve.Point{}
	s := map[party.ID]curve.Point{}
	for _, j := range []party.ID{1, 2} {
		rBar[j] = kShares[j].Act(R)
		s[j] = chiShares[j].Act(R)
	}

	preSignatures := make(map[party.ID]*PreSignature, 2)
	for _, j := range []party.ID{1, 2} {
		preSignatures[j] = &PreSignature{
			ID:       id.Copy(),
			R:        R,
			RBar:     party.NewPointMap(rBar),
			S:        party.NewPointMap(s),
			KShare:   kShares[j],
			ChiShare: chiShares[j],
		}
	}
	return preSignatures
}

func TestPreSignatureCombine(t *testing.T) {
	x := sample.Scalar(rand.Reader, group)
	X := x.ActOnBase()
	k := sample.Scalar(rand.Reader, group)
	digest := sha256.Sum256([]byte("presigned message"))

	preSignatures := testPreSignatures(t, x, k)
	shares := make(map[party.ID]curve.Scalar, 2)
	for j, preSignature := range preSignatures {
		require.NoError(t, preSignature.Validate())
		require.NoError(t, preSignature.Consume())
		shares[j] = preSignature.SignatureShare(digest[:])
	}

	for _, preSignature := range preSignatures {
		assert.Empty(t, preSignature.VerifySignatureShares(shares, digest[:]))
		sig, err := preSignature.Signature(shares)
		require.NoError(t, err)
		assert.True(t, sig.Verify(X, digest[:]))
	}
}

func TestPreSignatureConsumeOnce(t *testing.T) {
	x := sample.Scalar(rand.Reader, group)
	k := sample.Scalar(rand.Reader, group)
	preSignature := testPreSignatures(t, x, k)[1]

	require.NoError(t, preSignature.Consume())
	assert.True(t, preSignature.Consumed())
	assert.ErrorIs(t, preSignature.Consume(), ErrTupleConsumed)
}

func TestPreSignatureFaultAttribution(t *testing.T) {
	x := sample.Scalar(rand.Reader, group)
	k := sample.Scalar(rand.Reader, group)
	digest := sha256.Sum256([]byte("attributable message"))

	preSignatures := testPreSignatures(t, x, k)
	shares := make(map[party.ID]curve.Scalar, 2)
	for j, preSignature := range preSignatures {
		shares[j] = preSignature.SignatureShare(digest[:])
	}

	// Party 2 submits a corrupted share.
	shares[2] = sample.Scalar(rand.Reader, group)
	culprits := preSignatures[1].VerifySignatureShares(shares, digest[:])
	assert.Equal(t, []party.ID{2}, culprits)
}

func TestPreSignatureMissingShare(t *testing.T) {
	x := sample.Scalar(rand.Reader, group)
	k := sample.Scalar(rand.Reader, group)
	digest := sha256.Sum256([]byte("incomplete message"))

	preSignature := testPreSignatures(t, x, k)[1]
	shares := map[party.ID]curve.Scalar{1: preSignature.SignatureShare(digest[:])}
	_, err := preSignature.Signature(shares)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}
