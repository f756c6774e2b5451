// Package presign implements the presignature protocol for threshold ECDSA.
//
// The offline phase produces a message-independent ecdsa.PreSignature from
// the nonce shares kᵢ, γᵢ and two pairwise multiplicative-to-additive
// conversions. When a digest is supplied up front, a final online round is
// appended and the protocol outputs a complete signature.
package presign

import (
	"errors"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/pkg/protocol"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

const (
	protocolOfflineID = "gg20/presign-offline"
	protocolFullID    = "gg20/sign-full"

	protocolOfflineRounds round.Number = 5
	protocolFullRounds    round.Number = 6
)

// StartPresign returns a protocol.StartFunc for the presignature protocol
// among the given signers. When message is empty the result is an
// *ecdsa.PreSignature, otherwise the online round is appended and the result
// is an *ecdsa.Signature over message.
func StartPresign(c *config.Config, signers []party.ID, message []byte, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if c == nil {
			return nil, errors.New("presign: config is nil")
		}
		group := c.Group

		rounds := protocolOfflineRounds
		protocolID := protocolOfflineID
		if len(message) > 0 {
			rounds = protocolFullRounds
			protocolID = protocolFullID
		}

		signerIDs := party.NewIDSlice(signers)
		if !c.CanSign(signerIDs) {
			return nil, errors.New("presign: signers are not a valid signing subset")
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}

		info := round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: rounds,
			SelfID:           c.ID,
			PartyIDs:         signerIDs,
			Threshold:        c.Threshold,
			Group:            group,
		}
		helper, err := round.NewSession(info, sessionID, pl, c, &hash.BytesWithDomain{
			TheDomain: "Signature Message",
			Bytes:     message,
		})
		if err != nil {
			return nil, fmt.Errorf("presign: %w", err)
		}

		// Scale the shares by the Lagrange coefficients of the signing set,
		// turning the t-of-n sharing into an additive one.
		lagrange := polynomial.Lagrange(group, signerIDs)
		secretECDSA := group.NewScalar().Set(lagrange[c.ID]).Mul(c.ECDSA)
		secretPaillier := c.Paillier()

		t := len(signerIDs)
		ecdsaShares := make(map[party.ID]curve.Point, t)
		paillierKeys := make(map[party.ID]*paillier.PublicKey, t)
		pedersenParams := make(map[party.ID]*pedersen.Parameters, t)
		publicKey := group.NewPoint()
		for _, j := range signerIDs {
			public := c.Public[j]
			ecdsaShares[j] = lagrange[j].Act(public.ECDSA)
			if j == c.ID {
				// our own key carries the CRT acceleration
				paillierKeys[j] = secretPaillier.PublicKey
			} else {
				paillierKeys[j] = paillier.NewPublicKey(public.N)
			}
			pedersenParams[j] = pedersen.New(paillierKeys[j].Modulus(), public.S, public.T)
			publicKey = publicKey.Add(ecdsaShares[j])
		}

		return &presign1{
			Helper:         helper,
			PublicKey:      publicKey,
			SecretECDSA:    secretECDSA,
			SecretPaillier: secretPaillier,
			Paillier:       paillierKeys,
			Pedersen:       pedersenParams,
			ECDSA:          ecdsaShares,
			Message:        message,
		}, nil
	}
}
