package keygen

import (
	"crypto/rand"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
	zksch "github.com/quorumkey/quorumkey/pkg/zk/sch"
)

// round1 samples all secret values for this party and commits to their
// public counterparts.
//
// For a refresh, the previous fields are set and the VSS polynomial has a
// zero constant.
type round1 struct {
	*round.Helper

	// PreviousSecretECDSA is the share being refreshed, nil for keygen.
	PreviousSecretECDSA       curve.Scalar
	PreviousPublicSharesECDSA map[party.ID]curve.Point
	PreviousChainKey          types.RID

	// VSSSecret = fᵢ(X), this party's sharing polynomial.
	VSSSecret *polynomial.Polynomial
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// It samples the Paillier key, Pedersen parameters, rid and chain key
// contributions, and the Schnorr nonce, then broadcasts a commitment to all
// of them.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	// N = p⋅q with Blum primes p, q, and s = tᵞ (mod N).
	paillierSecret := paillier.NewSecretKey(r.Pool)
	selfPaillierPublic := paillierSecret.PublicKey
	selfPedersenPublic, pedersenSecret := paillierSecret.GeneratePedersen()

	selfRID, err := types.NewRID(rand.Reader)
	if err != nil {
		return r, fmt.Errorf("failed to sample rid: %w", err)
	}
	chainKey, err := types.NewRID(rand.Reader)
	if err != nil {
		return r, fmt.Errorf("failed to sample chain key: %w", err)
	}

	// Fᵢ(X) = fᵢ(X)⋅G
	selfVSSPolynomial := polynomial.NewPolynomialExponent(r.VSSSecret)

	// The Schnorr nonce is committed now, and the response is only produced
	// once the final share is known.
	schnorrRand := zksch.NewRandomness(rand.Reader, r.Group())

	selfCommitment, decommitment, err := r.HashForID(r.SelfID()).Commit(
		selfRID, chainKey, selfVSSPolynomial, schnorrRand.Commitment(), selfPedersenPublic)
	if err != nil {
		return r, fmt.Errorf("failed to commit: %w", err)
	}

	if err = r.BroadcastMessage(out, &broadcast2{Commitment: selfCommitment}); err != nil {
		return r, err
	}

	selfID := r.SelfID()
	return &round2{
		round1:             r,
		VSSPolynomials:     map[party.ID]*polynomial.Exponent{selfID: selfVSSPolynomial},
		Commitments:        map[party.ID]hash.Commitment{selfID: selfCommitment},
		RIDs:               map[party.ID]types.RID{selfID: selfRID},
		ChainKeys:          map[party.ID]types.RID{selfID: chainKey},
		PaillierPublic:     map[party.ID]*paillier.PublicKey{selfID: selfPaillierPublic},
		Pedersen:           map[party.ID]*pedersen.Parameters{selfID: selfPedersenPublic},
		SchnorrCommitments: map[party.ID]*zksch.Commitment{selfID: schnorrRand.Commitment()},
		PaillierSecret:     paillierSecret,
		PedersenSecret:     pedersenSecret,
		SchnorrRand:        schnorrRand,
		Decommitment:       decommitment,
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
