package config_test

import (
	mrand "math/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/test"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

var group = curve.Secp256k1{}

func generate(t *testing.T, N, T int, seed int64) (map[party.ID]*config.Config, party.IDSlice) {
	pl := pool.NewPool(0)
	t.Cleanup(pl.TearDown)
	return test.GenerateConfig(group, N, T, mrand.New(mrand.NewSource(seed)), pl)
}

func TestConfigValidate(t *testing.T) {
	configs, partyIDs := generate(t, 3, 1, 10)
	for _, c := range configs {
		require.NoError(t, c.Validate())
		assert.Equal(t, partyIDs, c.PartyIDs())
	}

	c := configs[partyIDs[0]]
	broken := *c
	broken.ECDSA = group.NewScalar()
	assert.Error(t, broken.Validate(), "zero secret share must be rejected")
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	configs, partyIDs := generate(t, 2, 1, 11)
	c := configs[partyIDs[0]]

	data, err := cbor.Marshal(c)
	require.NoError(t, err)

	c2 := config.EmptyConfig(group)
	require.NoError(t, cbor.Unmarshal(data, c2))

	assert.Equal(t, c.ID, c2.ID)
	assert.Equal(t, c.Threshold, c2.Threshold)
	assert.True(t, c.ECDSA.Equal(c2.ECDSA))
	assert.EqualValues(t, c.RID, c2.RID)
	assert.EqualValues(t, c.ChainKey, c2.ChainKey)
	assert.True(t, c.PublicPoint().Equal(c2.PublicPoint()))
	for j, publicJ := range c.Public {
		assert.True(t, publicJ.Equal(c2.Public[j]))
	}
}

func TestConfigCanSign(t *testing.T) {
	configs, partyIDs := generate(t, 4, 2, 12)
	c := configs[partyIDs[0]]

	assert.True(t, c.CanSign(partyIDs[:3]))
	assert.True(t, c.CanSign(partyIDs))
	assert.False(t, c.CanSign(partyIDs[:2]), "fewer than threshold+1 signers")
	assert.False(t, c.CanSign(partyIDs[1:]), "signing set must include self")
	assert.False(t, c.CanSign(party.IDSlice{partyIDs[0], 99, 100}), "unknown signers")
}

func TestValidThreshold(t *testing.T) {
	assert.True(t, config.ValidThreshold(0, 1))
	assert.True(t, config.ValidThreshold(2, 3))
	assert.False(t, config.ValidThreshold(-1, 5))
	assert.False(t, config.ValidThreshold(3, 3))
	assert.False(t, config.ValidThreshold(0, 0))
}

func TestDeriveBIP32(t *testing.T) {
	configs, partyIDs := generate(t, 2, 1, 13)

	derived := make(map[party.ID]*config.Config, len(configs))
	for id, c := range configs {
		d, err := c.DeriveBIP32(0)
		require.NoError(t, err)
		require.NoError(t, d.Validate())
		derived[id] = d
	}

	parent := configs[partyIDs[0]].PublicPoint()
	child := derived[partyIDs[0]].PublicPoint()
	assert.False(t, parent.Equal(child), "derivation must change the public key")

	// All parties derive the same child key.
	assert.True(t, child.Equal(derived[partyIDs[1]].PublicPoint()))

	// Hardened derivation is not possible with shared keys.
	_, err := configs[partyIDs[0]].DeriveBIP32(1 << 31)
	assert.Error(t, err)
}
