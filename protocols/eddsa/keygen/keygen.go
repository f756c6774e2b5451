// Package keygen implements distributed key generation and key refresh for
// threshold EdDSA.
//
// The protocol is a three round Pedersen DKG. Every participant shares a
// random contribution with a VSS polynomial and proves knowledge of it; the
// shares are exchanged encrypted only by the transport, so the protocol
// assumes point to point confidentiality. Refresh runs the same rounds with
// a zero contribution, so the joint key is preserved while every share
// changes.
package keygen

import (
	"crypto/rand"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/protocol"
)

// Rounds is the number of communication rounds before the output round.
const Rounds round.Number = 3

const (
	protocolKeygenID  = "eddsa/keygen-threshold"
	protocolRefreshID = "eddsa/refresh-threshold"
)

var (
	_ round.Round = (*round1)(nil)
	_ round.Round = (*round2)(nil)
	_ round.Round = (*round3)(nil)
)

// Start returns a protocol.StartFunc executing distributed key generation
// among the given parties. The output round produces a *Config.
func Start(group curve.Curve, selfID party.ID, participants []party.ID, threshold int) protocol.StartFunc {
	info := round.Info{
		ProtocolID:       protocolKeygenID,
		FinalRoundNumber: Rounds,
		SelfID:           selfID,
		PartyIDs:         participants,
		Threshold:        threshold,
		Group:            group,
	}
	return func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewSession(info, sessionID, nil)
		if err != nil {
			return nil, err
		}

		// The constant is this party's additive contribution to the joint
		// secret key.
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
// a new share.
func Refresh(c *Config) protocol.StartFunc {
	info := round.Info{
		ProtocolID:       protocolRefreshID,
		FinalRoundNumber: Rounds,
		SelfID:           c.ID,
		PartyIDs:         c.PartyIDs(),
		Threshold:        c.Threshold,
		Group:            c.Curve(),
	}
	return func(sessionID []byte) (round.Session, error) {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		// Binding the previous config to the session hash ensures all
		// parties refresh the same key.
		helper, err := round.NewSession(info, sessionID, nil, c)
		if err != nil {
			return nil, err
		}
		group := c.Curve()

		chainKey := types.EmptyRID()
		copy(chainKey, c.ChainKey)

		// A zero constant shares zero, so adding the new shares to the old
		// ones preserves the secret.
		vssSecret := polynomial.NewPolynomial(group, helper.Threshold(), group.NewScalar(), rand.Reader)

		return &round1{
			Helper:               helper,
			PreviousPrivateShare: c.PrivateShare,
			PreviousPublicKey:    c.PublicKey,
			PreviousPublicShares: c.VerificationShares,
			PreviousChainKey:     chainKey,
			VSSSecret:            vssSecret,
		}, nil
	}
}
