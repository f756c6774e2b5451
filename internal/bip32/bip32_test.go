package bip32

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
)

func TestDeriveScalar(t *testing.T) {
	group := curve.Secp256k1{}
	secret := sample.Scalar(rand.Reader, group)
	public := secret.ActOnBase()
	chainKey := make([]byte, params.SecBytes)
	_, _ = rand.Read(chainKey)

	adjust, newChainKey, err := DeriveScalar(public, chainKey, 0)
	require.NoError(t, err)
	require.Len(t, newChainKey, 32)
	assert.False(t, adjust.IsZero())

	// The derivation is deterministic.
	adjust2, newChainKey2, err := DeriveScalar(public, chainKey, 0)
	require.NoError(t, err)
	assert.True(t, adjust.Equal(adjust2))
	assert.Equal(t, newChainKey, newChainKey2)

	// Different indices derive different scalars.
	adjust3, _, err := DeriveScalar(public, chainKey, 1)
	require.NoError(t, err)
	assert.False(t, adjust.Equal(adjust3))

	// The child public key is the parent shifted by the adjustment.
	childSecret := group.NewScalar().Set(secret).Add(adjust)
	childPublic := public.Add(adjust.ActOnBase())
	assert.True(t, childSecret.ActOnBase().Equal(childPublic))
}

func TestDeriveScalarHardened(t *testing.T) {
	group := curve.Secp256k1{}
	public := sample.Scalar(rand.Reader, group).ActOnBase()
	chainKey := make([]byte, params.SecBytes)

	_, _, err := DeriveScalar(public, chainKey, 1<<31)
	assert.ErrorIs(t, err, ErrHardened)
}
