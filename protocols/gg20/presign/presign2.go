package presign

import (
	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	zkenc "github.com/quorumkey/quorumkey/pkg/zk/enc"
)

// presign2 collects the encrypted nonce shares and runs the sender side of
// both multiplicative-to-additive conversions.
type presign2 struct {
	*presign1

	// K[j] = Encⱼ(kⱼ)
	K map[party.ID]*paillier.Ciphertext
	// G[j] = Encⱼ(γⱼ)
	G map[party.ID]*paillier.Ciphertext

	// GammaCommitments[j] is j's commitment to Γⱼ.
	GammaCommitments map[party.ID]hash.Commitment

	// GammaShare = γᵢ
	GammaShare curve.Scalar
	// BigGammaShare = Γᵢ = γᵢ⋅G
	BigGammaShare curve.Point
	// KShare = kᵢ
	KShare curve.Scalar

	// KNonce, GNonce are the Paillier nonces of Kᵢ and Gᵢ.
	KNonce, GNonce *saferith.Nat

	GammaDecommitment hash.Decommitment
}

type broadcast2 struct {
	round.NormalBroadcastContent
	// K = Encᵢ(kᵢ)
	K *paillier.Ciphertext
	// G = Encᵢ(γᵢ)
	G *paillier.Ciphertext
	// GammaCommitment = H(Γᵢ)
	GammaCommitment hash.Commitment
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *presign2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.K == nil || body.G == nil {
		return round.ErrNilFields
	}
	if !r.Paillier[msg.From].ValidateCiphertexts(body.K, body.G) {
		return round.ErrNilFields
	}
	if err := body.GammaCommitment.Validate(); err != nil {
		return err
	}

	r.K[msg.From] = body.K
	r.G[msg.From] = body.G
	r.GammaCommitments[msg.From] = body.GammaCommitment
	return nil
}

// VerifyMessage implements round.Round.
func (presign2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (presign2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// It echoes a hash of all round 1 broadcasts, and sends each party the MtA
// ciphertexts for δᵢⱼ = γᵢ⋅kⱼ and χᵢⱼ = xᵢ⋅kⱼ together with the range
// proofs and the decommitment of Γᵢ.
func (r *presign2) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()
	selfID := r.SelfID()

	h := r.Hash()
	for _, j := range r.PartyIDs() {
		_ = h.WriteAny(r.K[j], r.G[j], r.GammaCommitments[j])
	}
	echoHash := h.Sum()

	if err := r.BroadcastMessage(out, &broadcast3{EchoHash: echoHash}); err != nil {
		return r, err
	}

	otherIDs := r.OtherPartyIDs()
	type mtaPair struct {
		delta, chi *mta
	}
	results := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		deltaMtA := newMtA(r.GammaShare, r.K[j], r.Paillier[selfID], r.Paillier[j])
		chiMtA := newMtA(r.SecretECDSA, r.K[j], r.Paillier[selfID], r.Paillier[j])

		proofEnc := zkenc.NewProof(group, r.HashForID(selfID), zkenc.Public{
			K:      r.K[selfID],
			Prover: r.Paillier[selfID],
			Aux:    r.Pedersen[j],
		}, zkenc.Private{
			K:   curve.MakeInt(r.KShare),
			Rho: r.KNonce,
		})

		err := r.SendMessage(out, &message3{
			BigGammaShare:     r.BigGammaShare,
			GammaDecommitment: r.GammaDecommitment,
			ProofEnc:          proofEnc,
			DeltaD:            deltaMtA.D,
			DeltaF:            deltaMtA.F,
			DeltaProof:        deltaMtA.proof(group, r.HashForID(selfID), r.BigGammaShare, r.K[j], r.Paillier[selfID], r.Paillier[j], r.Pedersen[j]),
			ChiD:              chiMtA.D,
			ChiF:              chiMtA.F,
			ChiProof:          chiMtA.proof(group, r.HashForID(selfID), r.ECDSA[selfID], r.K[j], r.Paillier[selfID], r.Paillier[j], r.Pedersen[j]),
		}, j)
		if err != nil {
			return err
		}
		return mtaPair{delta: deltaMtA, chi: chiMtA}
	})

	deltaMtAs := make(map[party.ID]*mta, len(otherIDs))
	chiMtAs := make(map[party.ID]*mta, len(otherIDs))
	for i, res := range results {
		if err, isErr := res.(error); isErr {
			return r, err
		}
		pair := res.(mtaPair)
		deltaMtAs[otherIDs[i]] = pair.delta
		chiMtAs[otherIDs[i]] = pair.chi
	}

	return &presign3{
		presign2: r,
		DeltaMtA: deltaMtAs,
		ChiMtA:   chiMtAs,
		BigGamma: map[party.ID]curve.Point{selfID: r.BigGammaShare},
		EchoHash: echoHash,
	}, nil
}

// MessageContent implements round.Round.
func (presign2) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (presign2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

// Number implements round.Round.
func (presign2) Number() round.Number { return 2 }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }
