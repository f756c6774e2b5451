package eddsa

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/test"
	signature "github.com/quorumkey/quorumkey/pkg/eddsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/protocol"
)

// runProtocol drives one party through a full protocol execution over the
// in-memory network.
func runProtocol(t *testing.T, id party.ID, start protocol.StartFunc, network *test.Network) interface{} {
	h, err := protocol.NewHandler(start, nil)
	require.NoError(t, err)
	test.HandlerLoop(id, h, network)

	result, err := h.Result()
	require.NoError(t, err)
	return result
}

// TestProtocolSuite runs keygen, refresh and sign through the full handler
// stack, the way a caller embedding the library would.
func TestProtocolSuite(t *testing.T) {
	N := 3
	threshold := 1
	partyIDs := test.PartyIDs(N)

	// Keygen.
	configs := make(map[party.ID]*Config, N)
	var mtx sync.Mutex
	var wg sync.WaitGroup
	network := test.NewNetwork(partyIDs)
	for _, id := range partyIDs {
		wg.Add(1)
		go func(id party.ID) {
			defer wg.Done()
			result := runProtocol(t, id, Keygen(id, partyIDs, threshold), network)
			require.IsType(t, &Config{}, result)
			mtx.Lock()
			configs[id] = result.(*Config)
			mtx.Unlock()
		}(id)
	}
	wg.Wait()

	publicKey := configs[partyIDs[0]].PublicKey
	for _, c := range configs {
		require.NoError(t, c.Validate())
		require.True(t, publicKey.Equal(c.PublicKey))
	}

	// Refresh.
	refreshed := make(map[party.ID]*Config, N)
	network = test.NewNetwork(partyIDs)
	for _, id := range partyIDs {
		wg.Add(1)
		go func(id party.ID) {
			defer wg.Done()
			result := runProtocol(t, id, Refresh(configs[id]), network)
			require.IsType(t, &Config{}, result)
			mtx.Lock()
			refreshed[id] = result.(*Config)
			mtx.Unlock()
		}(id)
	}
	wg.Wait()

	for id, c := range refreshed {
		require.NoError(t, c.Validate())
		assert.True(t, publicKey.Equal(c.PublicKey), "refresh changed the public key")
		assert.False(t, configs[id].PrivateShare.Equal(c.PrivateShare), "refresh did not change the private share")
	}

	// A stale share does not combine with refreshed shares.
	group := curve.Edwards25519{}
	lagrange := polynomial.Lagrange(group, partyIDs)
	mixed := group.NewScalar()
	for _, id := range partyIDs {
		share := refreshed[id].PrivateShare
		if id == partyIDs[0] {
			share = configs[id].PrivateShare
		}
		mixed.Add(group.NewScalar().Set(lagrange[id]).Mul(share))
	}
	assert.False(t, mixed.ActOnBase().Equal(publicKey), "stale share still combines to the secret key")

	// Sign with a minimal quorum of refreshed shares.
	message := []byte("signed by the refreshed quorum")
	signers := partyIDs[:threshold+1]
	signatures := make([]*signature.Signature, 0, len(signers))
	network = test.NewNetwork(signers)
	for _, id := range signers {
		wg.Add(1)
		go func(id party.ID) {
			defer wg.Done()
			result := runProtocol(t, id, Sign(refreshed[id], signers, message), network)
			require.IsType(t, &signature.Signature{}, result)
			mtx.Lock()
			signatures = append(signatures, result.(*signature.Signature))
			mtx.Unlock()
		}(id)
	}
	wg.Wait()

	for _, sig := range signatures {
		assert.True(t, sig.Verify(publicKey, message), "signature failed to verify")
	}
}
