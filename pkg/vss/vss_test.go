package vss

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
)

var group = curve.Secp256k1{}

func TestSplitVerifyReconstruct(t *testing.T) {
	threshold := 2
	recipients := []party.ID{1, 2, 3, 4, 5}

	secret := sample.Scalar(rand.Reader, group)
	shares, commitments, err := Split(group, secret, threshold, recipients, rand.Reader)
	require.NoError(t, err)
	require.Len(t, shares, len(recipients))

	for _, share := range shares {
		require.NoError(t, Verify(group, share, commitments))
	}

	// Any t+1 shares reconstruct the secret.
	subset := map[party.ID]*Share{
		1: shares[1],
		3: shares[3],
		5: shares[5],
	}
	reconstructed, err := Reconstruct(group, threshold, subset)
	require.NoError(t, err)
	assert.True(t, reconstructed.Equal(secret))

	// t shares are not enough.
	_, err = Reconstruct(group, threshold, map[party.ID]*Share{1: shares[1], 2: shares[2]})
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestVerifyTamperedShare(t *testing.T) {
	secret := sample.Scalar(rand.Reader, group)
	shares, commitments, err := Split(group, secret, 1, []party.ID{1, 2, 3}, rand.Reader)
	require.NoError(t, err)

	one := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	shares[2].Value.Add(one)
	assert.ErrorIs(t, Verify(group, shares[2], commitments), ErrInvalidShare)
}

func TestReconstructPublic(t *testing.T) {
	threshold := 1
	secret := sample.Scalar(rand.Reader, group)
	shares, _, err := Split(group, secret, threshold, []party.ID{1, 2, 3}, rand.Reader)
	require.NoError(t, err)

	points := map[party.ID]curve.Point{
		1: shares[1].Value.ActOnBase(),
		3: shares[3].Value.ActOnBase(),
	}
	public, err := ReconstructPublic(group, threshold, points)
	require.NoError(t, err)
	assert.True(t, public.Equal(secret.ActOnBase()))
}

func TestSplitInvalidInputs(t *testing.T) {
	secret := sample.Scalar(rand.Reader, group)

	_, _, err := Split(group, secret, -1, []party.ID{1, 2}, rand.Reader)
	assert.Error(t, err, "negative threshold must be rejected")

	_, _, err = Split(group, secret, 2, []party.ID{1, 2}, rand.Reader)
	assert.Error(t, err, "too few recipients must be rejected")

	_, _, err = Split(group, secret, 1, []party.ID{1, 1, 2}, rand.Reader)
	assert.Error(t, err, "duplicate recipients must be rejected")
}
