package presign

import (
	"crypto/sha256"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/test"
	"github.com/quorumkey/quorumkey/pkg/ecdsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

var group = curve.Secp256k1{}

func runRounds(t *testing.T, rounds []round.Session) {
	for {
		err, done := test.Rounds(rounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
}

func TestSignFull(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 2
	threshold := 1
	configs, partyIDs := test.GenerateConfig(group, N, threshold, mrand.New(mrand.NewSource(1)), pl)
	pk := configs[partyIDs[0]].PublicPoint()

	digest := sha256.Sum256([]byte("hello, quorum"))

	rounds := make([]round.Session, 0, N)
	for _, c := range configs {
		r, err := StartPresign(c, partyIDs, digest[:], pl)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}
	runRounds(t, rounds)

	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		resultRound := r.(*round.Output)
		require.IsType(t, &ecdsa.Signature{}, resultRound.Result)
		signature := resultRound.Result.(*ecdsa.Signature)
		assert.True(t, signature.Verify(pk, digest[:]), "signature failed to verify")
	}
}

func TestPresign(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 2
	threshold := 1
	configs, partyIDs := test.GenerateConfig(group, N, threshold, mrand.New(mrand.NewSource(2)), pl)

	rounds := make([]round.Session, 0, N)
	for _, c := range configs {
		r, err := StartPresign(c, partyIDs, nil, pl)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}
	runRounds(t, rounds)

	preSignatures := make(map[party.ID]*ecdsa.PreSignature, N)
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		resultRound := r.(*round.Output)
		require.IsType(t, &ecdsa.PreSignature{}, resultRound.Result)
		preSignature := resultRound.Result.(*ecdsa.PreSignature)
		require.NoError(t, preSignature.Validate())
		assert.Equal(t, partyIDs, preSignature.SignerIDs())
		preSignatures[r.SelfID()] = preSignature
	}

	// All parties must agree on the nonce point and presignature ID.
	first := preSignatures[partyIDs[0]]
	for _, preSignature := range preSignatures {
		assert.True(t, first.R.Equal(preSignature.R), "nonce point mismatch")
		assert.EqualValues(t, first.ID, preSignature.ID, "presignature ID mismatch")
	}
}

func TestStartPresignInvalid(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 3
	threshold := 1
	configs, partyIDs := test.GenerateConfig(group, N, threshold, mrand.New(mrand.NewSource(3)), pl)

	var c *config.Config
	_, err := StartPresign(c, partyIDs, nil, pl)(nil)
	assert.Error(t, err, "nil config must be rejected")

	// A single signer is below the threshold.
	_, err = StartPresign(configs[partyIDs[0]], partyIDs[:1], nil, pl)(nil)
	assert.Error(t, err, "too few signers must be rejected")
}
