// Package keygen implements the distributed key generation and key refresh
// protocols for threshold ECDSA.
//
// Both protocols share the same round structure. Key generation samples a
// fresh secret from a random VSS polynomial, while refresh uses a zero
// constant so that the joint secret is preserved and only the shares and
// auxiliary parameters change.
package keygen

import (
	"crypto/rand"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/pkg/protocol"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

// Rounds is the number of communication rounds before the output round.
const Rounds round.Number = 6

const (
	protocolKeygenID  = "gg20/keygen-threshold-ecdsa"
	protocolRefreshID = "gg20/refresh-threshold-ecdsa"
)

// Start returns a protocol.StartFunc executing distributed key generation
// among the given parties. The output round produces a *config.Config.
func Start(group curve.Curve, selfID party.ID, participants []party.ID, threshold int, pl *pool.Pool) protocol.StartFunc {
	info := round.Info{
		ProtocolID:       protocolKeygenID,
		FinalRoundNumber: Rounds,
		SelfID:           selfID,
		PartyIDs:         participants,
		Threshold:        threshold,
		Group:            group,
	}
	return func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewSession(info, sessionID, pl)
		if err != nil {
			return nil, err
		}

		// The constant of the VSS polynomial is this party's additive
		// contribution to the joint secret key.
		vssConstant := sample.Scalar(rand.Reader, group)
		vssSecret := polynomial.NewPolynomial(group, helper.Threshold(), vssConstant, rand.Reader)

		return &round1{
			Helper:    helper,
			VSSSecret: vssSecret,
		}, nil
	}
}

// Refresh returns a protocol.StartFunc executing a proactive refresh of an
// existing key. The joint public key is unchanged, but every party receives
// a new share and fresh Paillier and Pedersen parameters.
func Refresh(c *config.Config, pl *pool.Pool) protocol.StartFunc {
	info := round.Info{
		ProtocolID:       protocolRefreshID,
		FinalRoundNumber: Rounds,
		SelfID:           c.ID,
		PartyIDs:         c.PartyIDs(),
		Threshold:        c.Threshold,
		Group:            c.Group,
	}
	return func(sessionID []byte) (round.Session, error) {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		// Binding the previous config to the session hash ensures all
		// parties refresh the same key.
		helper, err := round.NewSession(info, sessionID, pl, c)
		if err != nil {
			return nil, err
		}
		group := c.Group

		publicShares := make(map[party.ID]curve.Point, len(c.Public))
		for j, publicJ := range c.Public {
			publicShares[j] = publicJ.ECDSA
		}

		chainKey := types.EmptyRID()
		copy(chainKey, c.ChainKey)

		// A zero constant makes the sum of all contributions a sharing of
		// zero, so adding it to the previous shares preserves the secret.
		vssSecret := polynomial.NewPolynomial(group, helper.Threshold(), group.NewScalar(), rand.Reader)

		return &round1{
			Helper:                    helper,
			PreviousSecretECDSA:       c.ECDSA,
			PreviousPublicSharesECDSA: publicShares,
			PreviousChainKey:          chainKey,
			VSSSecret:                 vssSecret,
		}, nil
	}
}
