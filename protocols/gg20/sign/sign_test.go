package sign

import (
	"crypto/sha256"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/test"
	"github.com/quorumkey/quorumkey/pkg/ecdsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
	"github.com/quorumkey/quorumkey/protocols/gg20/presign"
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

func generatePreSignatures(t *testing.T, configs map[party.ID]*config.Config, partyIDs party.IDSlice, pl *pool.Pool) map[party.ID]*ecdsa.PreSignature {
	rounds := make([]round.Session, 0, len(configs))
	for _, c := range configs {
		r, err := presign.StartPresign(c, partyIDs, nil, pl)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}
	runRounds(t, rounds)

	preSignatures := make(map[party.ID]*ecdsa.PreSignature, len(rounds))
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		resultRound := r.(*round.Output)
		require.IsType(t, &ecdsa.PreSignature{}, resultRound.Result)
		preSignatures[r.SelfID()] = resultRound.Result.(*ecdsa.PreSignature)
	}
	return preSignatures
}

func TestSignOnline(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 2
	threshold := 1
	configs, partyIDs := test.GenerateConfig(group, N, threshold, mrand.New(mrand.NewSource(4)), pl)
	pk := configs[partyIDs[0]].PublicPoint()

	preSignatures := generatePreSignatures(t, configs, partyIDs, pl)

	digest := sha256.Sum256([]byte("presigned message"))

	rounds := make([]round.Session, 0, N)
	for id, preSignature := range preSignatures {
		r, err := StartSignOnline(configs[id], preSignature, digest[:], pl)(nil)
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

	// A consumed presignature must not sign a second message.
	otherDigest := sha256.Sum256([]byte("a second message"))
	for id, preSignature := range preSignatures {
		_, err := StartSignOnline(configs[id], preSignature, otherDigest[:], pl)(nil)
		assert.ErrorIs(t, err, ecdsa.ErrTupleConsumed)
	}
}

// corruptSigmaRule makes the culprit use a bad signature share, both in its
// own state and in the share it broadcasts, so that every party aborts.
type corruptSigmaRule struct {
	culprit party.ID
}

func corruptScalar(group curve.Curve, s curve.Scalar) curve.Scalar {
	one := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	return group.NewScalar().Set(s).Add(one)
}

func (corruptSigmaRule) ModifyBefore(round.Session) {}

func (rule corruptSigmaRule) ModifyAfter(rNext round.Session) {
	r, ok := rNext.(*sign2)
	if !ok || r.SelfID() != rule.culprit {
		return
	}
	r.SigmaShares[rule.culprit] = corruptScalar(r.Group(), r.SigmaShares[rule.culprit])
}

func (rule corruptSigmaRule) ModifyContent(rNext round.Session, _ party.ID, content round.Content) {
	if rNext.SelfID() != rule.culprit {
		return
	}
	if body, ok := content.(*broadcast2); ok {
		body.SigmaShare = corruptScalar(rNext.Group(), body.SigmaShare)
	}
}

func TestSignAbortBadSigmaShare(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 3
	threshold := 1
	configs, partyIDs := test.GenerateConfig(group, N, threshold, mrand.New(mrand.NewSource(6)), pl)
	preSignatures := generatePreSignatures(t, configs, partyIDs, pl)
	culprit := partyIDs[1]

	digest := sha256.Sum256([]byte("message with a corrupted share"))

	rounds := make([]round.Session, 0, N)
	for id, preSignature := range preSignatures {
		r, err := StartSignOnline(configs[id], preSignature, digest[:], pl)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}

	for {
		err, done := test.Rounds(rounds, corruptSigmaRule{culprit: culprit})
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}

	for _, r := range rounds {
		require.IsType(t, &round.Abort{}, r)
		abortRound := r.(*round.Abort)
		assert.ErrorContains(t, abortRound.Err, "combined signature failed to verify")
		assert.Equal(t, []party.ID{culprit}, abortRound.Culprits, "abort must name the corrupt party")
	}
}

func TestSignOnlineInvalid(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	N := 2
	threshold := 1
	configs, partyIDs := test.GenerateConfig(group, N, threshold, mrand.New(mrand.NewSource(5)), pl)
	preSignatures := generatePreSignatures(t, configs, partyIDs, pl)

	c := configs[partyIDs[0]]
	_, err := StartSignOnline(c, preSignatures[c.ID], nil, pl)(nil)
	assert.Error(t, err, "empty message must be rejected")
}
