package keygen

import (
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/test"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/pkg/protocol"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

var group = curve.Secp256k1{}

func checkOutput(t *testing.T, rounds []round.Session) []*config.Config {
	N := len(rounds)
	newConfigs := make([]*config.Config, 0, N)
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		resultRound := r.(*round.Output)
		require.IsType(t, &config.Config{}, resultRound.Result)
		c := resultRound.Result.(*config.Config)

		marshalledConfig, err := cbor.Marshal(c)
		require.NoError(t, err)
		unmarshalledConfig := config.EmptyConfig(group)
		require.NoError(t, cbor.Unmarshal(marshalledConfig, unmarshalledConfig))
		newConfigs = append(newConfigs, unmarshalledConfig)
	}

	firstConfig := newConfigs[0]
	pk := firstConfig.PublicPoint()
	for _, c := range newConfigs {
		assert.True(t, pk.Equal(c.PublicPoint()), "public key mismatch")
		assert.EqualValues(t, firstConfig.RID, c.RID, "RID mismatch")
		assert.EqualValues(t, firstConfig.ChainKey, c.ChainKey, "chain key mismatch")
		for _, j := range firstConfig.PartyIDs() {
			assert.True(t, firstConfig.Public[j].Equal(c.Public[j]), "public data mismatch for party %d", j)
		}
		assert.NoError(t, c.Validate())
	}
	return newConfigs
}

func TestKeygen(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 3
	threshold := 1
	partyIDs := test.PartyIDs(N)

	rounds := make([]round.Session, 0, N)
	for _, partyID := range partyIDs {
		r, err := Start(group, partyID, partyIDs, threshold, pl)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}

	for {
		err, done := test.Rounds(rounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
	checkOutput(t, rounds)
}

func TestRefresh(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 2
	threshold := 1
	configs, _ := test.GenerateConfig(group, N, threshold, mrand.New(mrand.NewSource(1)), pl)
	pk := configs[1].PublicPoint()

	rounds := make([]round.Session, 0, N)
	for _, c := range configs {
		r, err := Refresh(c, pl)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}

	for {
		err, done := test.Rounds(rounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
	newConfigs := checkOutput(t, rounds)

	for _, c := range newConfigs {
		old := configs[c.ID]
		assert.True(t, pk.Equal(c.PublicPoint()), "refresh changed the public key")
		assert.EqualValues(t, old.ChainKey, c.ChainKey, "refresh changed the chain key")
		assert.False(t, c.ECDSA.Equal(old.ECDSA), "refresh did not change the secret share")
	}

	// A stale share must not combine with refreshed shares: interpolating
	// one pre-refresh share with post-refresh shares misses the secret.
	ids := newConfigs[0].PartyIDs()
	lagrange := polynomial.Lagrange(group, ids)
	mixed := group.NewScalar()
	for _, c := range newConfigs {
		share := c.ECDSA
		if c.ID == ids[0] {
			share = configs[c.ID].ECDSA
		}
		mixed.Add(group.NewScalar().Set(lagrange[c.ID]).Mul(share))
	}
	assert.False(t, mixed.ActOnBase().Equal(pk), "stale share still combines to the secret key")
}

// tamperRule corrupts the encrypted secret share the culprit sends to each
// recipient by homomorphically adding 1.
type tamperRule struct {
	culprit party.ID
}

func (tamperRule) ModifyBefore(round.Session) {}

func (tamperRule) ModifyAfter(round.Session) {}

func (rule tamperRule) ModifyContent(rNext round.Session, to party.ID, content round.Content) {
	if rNext.SelfID() != rule.culprit {
		return
	}
	r, ok := rNext.(*round5)
	if !ok {
		return
	}
	if share, ok := content.(*message5); ok {
		paillierTo := r.PaillierPublic[to]
		one, _ := paillierTo.Enc(new(saferith.Int).SetUint64(1))
		share.Share.Add(paillierTo, one)
	}
}

func TestKeygenTamperedShare(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 3
	threshold := 1
	partyIDs := test.PartyIDs(N)
	culprit := partyIDs[1]

	rounds := make([]round.Session, 0, N)
	for _, partyID := range partyIDs {
		r, err := Start(group, partyID, partyIDs, threshold, pl)(nil)
		require.NoError(t, err)
		rounds = append(rounds, r)
	}

	var lastErr error
	for {
		err, done := test.Rounds(rounds, tamperRule{culprit: culprit})
		if err != nil {
			lastErr = err
			break
		}
		if done {
			break
		}
	}
	require.Error(t, lastErr, "tampered share must be detected")
	assert.ErrorContains(t, lastErr, "failed to validate vss share")

	// The abort must name the tampering party.
	var protocolErr protocol.Error
	require.ErrorAs(t, lastErr, &protocolErr)
	assert.Equal(t, culprit, protocolErr.Culprit, "abort attributed to the wrong party")
}
