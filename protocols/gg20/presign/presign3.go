package presign

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	zkaffg "github.com/quorumkey/quorumkey/pkg/zk/affg"
	zkenc "github.com/quorumkey/quorumkey/pkg/zk/enc"
)

// presign3 receives the MtA legs, decrypts the α shares, and reveals the
// joint nonce point contributions.
type presign3 struct {
	*presign2

	// DeltaMtA[j] is the conversion of γᵢ⋅kⱼ, ChiMtA[j] of xᵢ⋅kⱼ.
	DeltaMtA, ChiMtA map[party.ID]*mta

	// BigGamma[j] = Γⱼ
	BigGamma map[party.ID]curve.Point

	// EchoHash = H(ssid, K₁, G₁, V₁, …, Kₙ, Gₙ, Vₙ)
	EchoHash []byte
}

type broadcast3 struct {
	round.NormalBroadcastContent
	EchoHash []byte
}

type message3 struct {
	// BigGammaShare = Γᵢ, opening the commitment of round 1.
	BigGammaShare     curve.Point
	GammaDecommitment hash.Decommitment

	// ProofEnc shows Kᵢ encrypts a properly bounded kᵢ.
	ProofEnc *zkenc.Proof

	// DeltaD = (γᵢ ⊙ Kⱼ) ⊕ Encⱼ(-βᵢⱼ), DeltaF = Encᵢ(-βᵢⱼ)
	DeltaD, DeltaF *paillier.Ciphertext
	DeltaProof     *zkaffg.Proof

	// ChiD = (xᵢ ⊙ Kⱼ) ⊕ Encⱼ(-β̂ᵢⱼ), ChiF = Encᵢ(-β̂ᵢⱼ)
	ChiD, ChiF *paillier.Ciphertext
	ChiProof   *zkaffg.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *presign3) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if !bytes.Equal(body.EchoHash, r.EchoHash) {
		return errors.New("echo hash mismatch, inconsistent broadcast detected")
	}
	return nil
}

// VerifyMessage implements round.Round.
//
// It opens the sender's Γⱼ commitment and verifies the range proofs for the
// nonce encryption and both MtA legs.
func (r *presign3) VerifyMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*message3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.ProofEnc == nil || body.DeltaProof == nil || body.ChiProof == nil ||
		body.DeltaD == nil || body.DeltaF == nil || body.ChiD == nil || body.ChiF == nil {
		return round.ErrNilFields
	}
	group := r.Group()
	selfID := r.SelfID()

	if !r.HashForID(from).Decommit(r.GammaCommitments[from], body.GammaDecommitment, body.BigGammaShare) {
		return errors.New("failed to decommit gamma share")
	}

	if !body.ProofEnc.Verify(group, r.HashForID(from), zkenc.Public{
		K:      r.K[from],
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[selfID],
	}) {
		return errors.New("failed to validate enc proof for K share")
	}

	if !body.DeltaProof.Verify(group, r.HashForID(from), zkaffg.Public{
		Kv:       r.K[selfID],
		Dv:       body.DeltaD,
		Fp:       body.DeltaF,
		Xp:       body.BigGammaShare,
		Prover:   r.Paillier[from],
		Verifier: r.Paillier[selfID],
		Aux:      r.Pedersen[selfID],
	}) {
		return errors.New("failed to validate affg proof for delta MtA")
	}

	if !body.ChiProof.Verify(group, r.HashForID(from), zkaffg.Public{
		Kv:       r.K[selfID],
		Dv:       body.ChiD,
		Fp:       body.ChiF,
		Xp:       r.ECDSA[from],
		Prover:   r.Paillier[from],
		Verifier: r.Paillier[selfID],
		Aux:      r.Pedersen[selfID],
	}) {
		return errors.New("failed to validate affg proof for chi MtA")
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *presign3) StoreMessage(msg round.Message) error {
	from := msg.From
	body := msg.Content.(*message3)
	group := r.Group()

	// αᵢⱼ = Decᵢ(Dᵢⱼ)
	alphaDelta, err := r.SecretPaillier.Dec(body.DeltaD)
	if err != nil {
		return fmt.Errorf("failed to decrypt delta alpha share: %w", err)
	}
	alphaChi, err := r.SecretPaillier.Dec(body.ChiD)
	if err != nil {
		return fmt.Errorf("failed to decrypt chi alpha share: %w", err)
	}

	r.DeltaMtA[from].Alpha = group.NewScalar().SetNat(alphaDelta.Mod(group.Order()))
	r.ChiMtA[from].Alpha = group.NewScalar().SetNat(alphaChi.Mod(group.Order()))
	r.BigGamma[from] = body.BigGammaShare
	return nil
}

// Finalize implements round.Round.
//
//   - Γ = Σⱼ Γⱼ
//   - Δᵢ = kᵢ⋅Γ
//   - δᵢ = γᵢ⋅kᵢ + Σⱼ (αᵢⱼ + βᵢⱼ)
//   - χᵢ = xᵢ⋅kᵢ + Σⱼ (α̂ᵢⱼ + β̂ᵢⱼ)
func (r *presign3) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	gamma := group.NewPoint()
	for _, j := range r.PartyIDs() {
		gamma = gamma.Add(r.BigGamma[j])
	}

	bigDeltaShare := r.KShare.Act(gamma)

	deltaShare := group.NewScalar().Set(r.GammaShare).Mul(r.KShare)
	chiShare := group.NewScalar().Set(r.SecretECDSA).Mul(r.KShare)
	for _, j := range r.OtherPartyIDs() {
		deltaShare.Add(r.DeltaMtA[j].share(group))
		chiShare.Add(r.ChiMtA[j].share(group))
	}

	err := r.BroadcastMessage(out, &broadcast4{
		DeltaShare:    deltaShare,
		BigDeltaShare: bigDeltaShare,
	})
	if err != nil {
		return r, err
	}

	return &presign4{
		presign3:       r,
		Gamma:          gamma,
		ChiShare:       chiShare,
		DeltaShares:    map[party.ID]curve.Scalar{r.SelfID(): deltaShare},
		BigDeltaShares: map[party.ID]curve.Point{r.SelfID(): bigDeltaShare},
	}, nil
}

// MessageContent implements round.Round.
func (r *presign3) MessageContent() round.Content {
	group := r.Group()
	return &message3{
		BigGammaShare: group.NewPoint(),
		DeltaProof:    zkaffg.Empty(group),
		ChiProof:      zkaffg.Empty(group),
	}
}

// BroadcastContent implements round.BroadcastRound.
func (presign3) BroadcastContent() round.BroadcastContent { return &broadcast3{} }

// Number implements round.Round.
func (presign3) Number() round.Number { return 3 }

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// RoundNumber implements round.Content.
func (message3) RoundNumber() round.Number { return 3 }
