package keygen

import (
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
	"github.com/quorumkey/quorumkey/pkg/protocol"
)

var group = curve.Edwards25519{}

func checkOutput(t *testing.T, rounds []round.Session) []*Config {
	N := len(rounds)
	newConfigs := make([]*Config, 0, N)
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		resultRound := r.(*round.Output)
		require.IsType(t, &Config{}, resultRound.Result)
		c := resultRound.Result.(*Config)

		marshalledConfig, err := cbor.Marshal(c)
		require.NoError(t, err)
		unmarshalledConfig := EmptyConfig(group)
		require.NoError(t, cbor.Unmarshal(marshalledConfig, unmarshalledConfig))
		newConfigs = append(newConfigs, unmarshalledConfig)
	}

	firstConfig := newConfigs[0]
	for _, c := range newConfigs {
		assert.True(t, c.PublicKey.Equal(firstConfig.PublicKey), "public key mismatch")
		assert.EqualValues(t, firstConfig.ChainKey, c.ChainKey, "chain key mismatch")
		for _, j := range firstConfig.PartyIDs() {
			assert.True(t, c.VerificationShares.Points[j].Equal(firstConfig.VerificationShares.Points[j]),
				"verification share mismatch for party %d", j)
		}
		assert.NoError(t, c.Validate())
	}

	// Interpolating the shares must recover a secret key matching the
	// public key.
	lagrange := polynomial.Lagrange(group, firstConfig.PartyIDs())
	secret := group.NewScalar()
	for _, c := range newConfigs {
		secret.Add(group.NewScalar().Set(lagrange[c.ID]).Mul(c.PrivateShare))
	}
	assert.True(t, secret.ActOnBase().Equal(firstConfig.PublicKey), "interpolated secret does not match public key")

	return newConfigs
}

func TestKeygen(t *testing.T) {
	N := 4
	threshold := 2
	partyIDs := test.PartyIDs(N)

	rounds := make([]round.Session, 0, N)
	for _, partyID := range partyIDs {
		r, err := Start(group, partyID, partyIDs, threshold)(nil)
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
	N := 4
	threshold := 2
	partyIDs := test.PartyIDs(N)

	rounds := make([]round.Session, 0, N)
	for _, partyID := range partyIDs {
		r, err := Start(group, partyID, partyIDs, threshold)(nil)
		require.NoError(t, err)
		rounds = append(rounds, r)
	}
	for {
		err, done := test.Rounds(rounds, nil)
		require.NoError(t, err)
		if done {
			break
		}
	}
	configs := checkOutput(t, rounds)

	refreshRounds := make([]round.Session, 0, N)
	for _, c := range configs {
		r, err := Refresh(c)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		refreshRounds = append(refreshRounds, r)
	}
	for {
		err, done := test.Rounds(refreshRounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
	newConfigs := checkOutput(t, refreshRounds)

	for i, c := range newConfigs {
		old := configs[i]
		assert.True(t, c.PublicKey.Equal(old.PublicKey), "refresh changed the public key")
		assert.EqualValues(t, old.ChainKey, c.ChainKey, "refresh changed the chain key")
		assert.False(t, c.PrivateShare.Equal(old.PrivateShare), "refresh did not change the private share")
	}

	// A stale share must not combine with refreshed shares: interpolating
	// one pre-refresh share with post-refresh shares misses the secret.
	ids := newConfigs[0].PartyIDs()
	lagrange := polynomial.Lagrange(group, ids)
	mixed := group.NewScalar()
	for i, c := range newConfigs {
		share := c.PrivateShare
		if c.ID == ids[0] {
			share = configs[i].PrivateShare
		}
		mixed.Add(group.NewScalar().Set(lagrange[c.ID]).Mul(share))
	}
	assert.False(t, mixed.ActOnBase().Equal(newConfigs[0].PublicKey),
		"stale share still combines to the secret key")
}

// tamperRule corrupts the secret share the culprit sends to one recipient.
type tamperRule struct {
	culprit party.ID
}

func (tamperRule) ModifyBefore(round.Session) {}

func (tamperRule) ModifyAfter(round.Session) {}

func (rule tamperRule) ModifyContent(rNext round.Session, _ party.ID, content round.Content) {
	if rNext.SelfID() != rule.culprit {
		return
	}
	if share, ok := content.(*message3); ok {
		one := rNext.Group().NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
		share.Share = share.Share.Add(one)
	}
}

func TestKeygenTamperedShare(t *testing.T) {
	N := 3
	threshold := 1
	partyIDs := test.PartyIDs(N)
	culprit := partyIDs[2]

	rounds := make([]round.Session, 0, N)
	for _, partyID := range partyIDs {
		r, err := Start(group, partyID, partyIDs, threshold)(nil)
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
	assert.ErrorContains(t, lastErr, "secret share does not match")

	// The abort must name the tampering party.
	var protocolErr protocol.Error
	require.ErrorAs(t, lastErr, &protocolErr)
	assert.Equal(t, culprit, protocolErr.Culprit, "abort attributed to the wrong party")
}
