package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/test"
	"github.com/quorumkey/quorumkey/pkg/eddsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/protocols/eddsa/keygen"
)

var group = curve.Edwards25519{}

// generateConfigs deals a fresh threshold key directly from a polynomial,
// bypassing the keygen protocol.
func generateConfigs(t *testing.T, partyIDs party.IDSlice, threshold int) (map[party.ID]*keygen.Config, curve.Point) {
	secret := sample.Scalar(rand.Reader, group)
	f := polynomial.NewPolynomial(group, threshold, secret, rand.Reader)
	publicKey := secret.ActOnBase()

	chainKey := make([]byte, params.SecBytes)
	_, err := rand.Read(chainKey)
	require.NoError(t, err)

	verificationShares := make(map[party.ID]curve.Point, len(partyIDs))
	privateShares := make(map[party.ID]curve.Scalar, len(partyIDs))
	for _, id := range partyIDs {
		share := f.Evaluate(id.Scalar(group))
		privateShares[id] = share
		verificationShares[id] = share.ActOnBase()
	}

	configs := make(map[party.ID]*keygen.Config, len(partyIDs))
	for _, id := range partyIDs {
		configs[id] = &keygen.Config{
			ID:                 id,
			Threshold:          threshold,
			PrivateShare:       privateShares[id],
			PublicKey:          publicKey,
			ChainKey:           chainKey,
			VerificationShares: party.NewPointMap(verificationShares),
		}
		require.NoError(t, configs[id].Validate())
	}
	return configs, publicKey
}

func runSign(t *testing.T, configs map[party.ID]*keygen.Config, signers party.IDSlice, message []byte) []round.Session {
	rounds := make([]round.Session, 0, len(signers))
	for _, id := range signers {
		r, err := StartSign(configs[id], signers, message)(nil)
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
	return rounds
}

func checkSignature(t *testing.T, rounds []round.Session, publicKey curve.Point, message []byte) {
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		resultRound := r.(*round.Output)
		require.IsType(t, &eddsa.Signature{}, resultRound.Result)
		signature := resultRound.Result.(*eddsa.Signature)

		assert.True(t, signature.Verify(publicKey, message), "signature failed to verify")

		// The encoded form must satisfy a standard Ed25519 verifier.
		sigBytes, err := signature.ToEd25519()
		require.NoError(t, err)
		publicBytes, err := publicKey.MarshalBinary()
		require.NoError(t, err)
		assert.True(t, ed25519.Verify(ed25519.PublicKey(publicBytes), message, sigBytes))
	}
}

func TestSign(t *testing.T) {
	N := 5
	threshold := 2
	partyIDs := test.PartyIDs(N)
	configs, publicKey := generateConfigs(t, partyIDs, threshold)

	message := []byte("hello, quorum")
	signers := partyIDs[:threshold+1]
	rounds := runSign(t, configs, signers, message)
	checkSignature(t, rounds, publicKey, message)
}

func TestSignFullQuorum(t *testing.T) {
	N := 3
	threshold := 2
	partyIDs := test.PartyIDs(N)
	configs, publicKey := generateConfigs(t, partyIDs, threshold)

	message := []byte("all parties online")
	rounds := runSign(t, configs, partyIDs, message)
	checkSignature(t, rounds, publicKey, message)
}

func TestSignDerivedKey(t *testing.T) {
	N := 4
	threshold := 1
	partyIDs := test.PartyIDs(N)
	configs, _ := generateConfigs(t, partyIDs, threshold)

	derived := make(map[party.ID]*keygen.Config, N)
	for id, c := range configs {
		d, err := c.DeriveChild(42)
		require.NoError(t, err)
		derived[id] = d
	}
	derivedPublic := derived[partyIDs[0]].PublicKey

	message := []byte("derived child key")
	signers := partyIDs[1 : threshold+2]
	rounds := runSign(t, derived, signers, message)
	checkSignature(t, rounds, derivedPublic, message)
}

func TestStartSignInvalid(t *testing.T) {
	N := 4
	threshold := 2
	partyIDs := test.PartyIDs(N)
	configs, _ := generateConfigs(t, partyIDs, threshold)
	c := configs[partyIDs[0]]

	_, err := StartSign(c, partyIDs[:threshold+1], nil)(nil)
	assert.Error(t, err, "empty message must be rejected")

	_, err = StartSign(c, partyIDs[:threshold], []byte("m"))(nil)
	assert.Error(t, err, "too few signers must be rejected")
}
