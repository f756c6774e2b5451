package presign

import (
	"crypto/rand"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
)

// presign1 samples the nonce shares and commits to Γᵢ.
type presign1 struct {
	*round.Helper

	// PublicKey = X = Σⱼ λⱼ⋅Xⱼ
	PublicKey curve.Point

	// SecretECDSA = λᵢ⋅xᵢ
	SecretECDSA    curve.Scalar
	SecretPaillier *paillier.SecretKey

	Paillier map[party.ID]*paillier.PublicKey
	Pedersen map[party.ID]*pedersen.Parameters
	// ECDSA[j] = λⱼ⋅Xⱼ
	ECDSA map[party.ID]curve.Point

	// Message is the digest to sign, empty for an offline session.
	Message []byte
}

// VerifyMessage implements round.Round.
func (presign1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (presign1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
//   - sample kᵢ, γᵢ
//   - Kᵢ = Encᵢ(kᵢ; ρᵢ), Gᵢ = Encᵢ(γᵢ; νᵢ)
//   - commit to Γᵢ = γᵢ⋅G, revealed only after all Kⱼ are fixed.
func (r *presign1) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()
	selfID := r.SelfID()

	gammaShare, bigGammaShare := sample.ScalarPointPair(rand.Reader, group)
	G, gNonce := r.Paillier[selfID].Enc(curve.MakeInt(gammaShare))

	kShare := sample.Scalar(rand.Reader, group)
	K, kNonce := r.Paillier[selfID].Enc(curve.MakeInt(kShare))

	commitment, decommitment, err := r.HashForID(selfID).Commit(bigGammaShare)
	if err != nil {
		return r, fmt.Errorf("failed to commit to gamma share: %w", err)
	}

	err = r.BroadcastMessage(out, &broadcast2{
		K:               K,
		G:               G,
		GammaCommitment: commitment,
	})
	if err != nil {
		return r, err
	}

	return &presign2{
		presign1:          r,
		K:                 map[party.ID]*paillier.Ciphertext{selfID: K},
		G:                 map[party.ID]*paillier.Ciphertext{selfID: G},
		GammaCommitments:  map[party.ID]hash.Commitment{selfID: commitment},
		GammaShare:        gammaShare,
		BigGammaShare:     bigGammaShare,
		KShare:            kShare,
		KNonce:            kNonce,
		GNonce:            gNonce,
		GammaDecommitment: decommitment,
	}, nil
}

// MessageContent implements round.Round.
func (presign1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (presign1) Number() round.Number { return 1 }
