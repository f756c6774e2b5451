// Package sign implements the online signing round for a presignature
// produced earlier by the presign protocol. A single broadcast of the
// signature shares suffices to assemble the final signature.
package sign

import (
	"errors"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/ecdsa"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/pkg/protocol"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

const (
	protocolID                 = "gg20/sign-online"
	protocolRounds round.Number = 2
)

// StartSignOnline returns a protocol.StartFunc which consumes the given
// presignature to sign message. The presignature must not have been used
// before; a second use fails with ecdsa.ErrTupleConsumed.
func StartSignOnline(c *config.Config, preSignature *ecdsa.PreSignature, message []byte, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if len(message) == 0 {
			return nil, errors.New("sign: message is empty")
		}
		if err := preSignature.Validate(); err != nil {
			return nil, fmt.Errorf("sign: %w", err)
		}

		signers := preSignature.SignerIDs()
		if !c.CanSign(signers) {
			return nil, errors.New("sign: signers of the presignature are not a valid signing subset")
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}

		info := round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: protocolRounds,
			SelfID:           c.ID,
			PartyIDs:         signers,
			Threshold:        c.Threshold,
			Group:            c.Group,
		}
		helper, err := round.NewSession(info, sessionID, pl, c,
			&hash.BytesWithDomain{
				TheDomain: "PreSignature ID",
				Bytes:     preSignature.ID,
			},
			&hash.BytesWithDomain{
				TheDomain: "Signature Message",
				Bytes:     message,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("sign: %w", err)
		}

		if err := preSignature.Consume(); err != nil {
			return nil, err
		}

		return &sign1{
			Helper:       helper,
			PublicKey:    c.PublicPoint(),
			Message:      message,
			PreSignature: preSignature,
		}, nil
	}
}
