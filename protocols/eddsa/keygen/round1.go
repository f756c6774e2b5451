package keygen

import (
	"crypto/rand"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/party"
	zksch "github.com/quorumkey/quorumkey/pkg/zk/sch"
)

// round1 samples nothing from the network; it publishes the commitment to
// this party's VSS polynomial together with a proof of knowledge of its
// constant, and a commitment to the chain key contribution.
type round1 struct {
	*round.Helper

	// PreviousPrivateShare is the share being refreshed, nil during key
	// generation.
	PreviousPrivateShare curve.Scalar
	// PreviousPublicKey is the key being refreshed, nil during key
	// generation.
	PreviousPublicKey curve.Point
	// PreviousPublicShares are the verification shares being refreshed.
	PreviousPublicShares *party.PointMap
	// PreviousChainKey is carried over unchanged during a refresh.
	PreviousChainKey types.RID

	// VSSSecret = fᵢ(X), with constant fᵢ(0) the contribution to the joint
	// secret. The constant is zero during a refresh.
	VSSSecret *polynomial.Polynomial
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	// Fᵢ(X) = fᵢ(X)⋅G
	vssPolynomial := polynomial.NewPolynomialExponent(r.VSSSecret)

	// The proof ties the sender's ID into the challenge, so it cannot be
	// replayed by another party. During a refresh the constant is zero and
	// no proof is sent; receivers instead check the constant is the
	// identity.
	var schnorrProof *zksch.Proof
	if r.PreviousPrivateShare == nil {
		constant := r.VSSSecret.Constant()
		schnorrProof = zksch.NewProof(r.HashForID(r.SelfID()), constant.ActOnBase(), constant)
	}

	chainKey, err := types.NewRID(rand.Reader)
	if err != nil {
		return r, fmt.Errorf("failed to sample chain key: %w", err)
	}
	commitment, decommitment, err := r.HashForID(r.SelfID()).Commit(chainKey)
	if err != nil {
		return r, fmt.Errorf("failed to commit to chain key: %w", err)
	}

	if err = r.BroadcastMessage(out, &broadcast2{
		VSSPolynomial: vssPolynomial,
		SchnorrProof:  schnorrProof,
		Commitment:    commitment,
	}); err != nil {
		return r, err
	}

	return &round2{
		round1:               r,
		VSSPolynomials:       map[party.ID]*polynomial.Exponent{r.SelfID(): vssPolynomial},
		ChainKeys:            map[party.ID]types.RID{r.SelfID(): chainKey},
		ChainKeyCommitments:  make(map[party.ID]hash.Commitment),
		ChainKeyDecommitment: decommitment,
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
