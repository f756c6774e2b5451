// Package sign implements threshold Ed25519 signing.
//
// Each signer commits to a pair of nonces, derives the joint nonce point
// from all commitments with a binding factor, and broadcasts a response
// share. The combined signature verifies under RFC 8032.
package sign

import (
	"errors"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/protocol"
	"github.com/quorumkey/quorumkey/protocols/eddsa/keygen"
)

const (
	protocolID                  = "eddsa/sign-threshold"
	protocolRounds round.Number = 3
)

var (
	_ round.Round = (*round1)(nil)
	_ round.Round = (*round2)(nil)
	_ round.Round = (*round3)(nil)
)

// StartSign returns a protocol.StartFunc which signs message with the
// given quorum of at least threshold+1 signers. The protocol result is an
// *eddsa.Signature.
//
// The challenge computation follows RFC 8032, so the config must hold an
// Ed25519 key.
func StartSign(c *keygen.Config, signers []party.ID, message []byte) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if len(message) == 0 {
			return nil, errors.New("sign: message is empty")
		}
		if c.Curve().Name() != "ed25519" {
			return nil, errors.New("sign: config is not an Ed25519 key")
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if !c.CanSign(party.NewIDSlice(signers)) {
			return nil, errors.New("sign: signers are not a valid signing subset")
		}

		info := round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: protocolRounds,
			SelfID:           c.ID,
			PartyIDs:         signers,
			Threshold:        c.Threshold,
			Group:            c.Curve(),
		}
		helper, err := round.NewSession(info, sessionID, nil, c,
			&hash.BytesWithDomain{
				TheDomain: "Signature Message",
				Bytes:     message,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("sign: %w", err)
		}

		return &round1{
			Helper:  helper,
			Config:  c,
			Message: message,
		}, nil
	}
}
