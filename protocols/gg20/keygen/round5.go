package keygen

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/party"
	zkmod "github.com/quorumkey/quorumkey/pkg/zk/mod"
	zkprm "github.com/quorumkey/quorumkey/pkg/zk/prm"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

// round5 receives and validates the secret shares, assembles the new
// config, and proves knowledge of the final share.
type round5 struct {
	*round4

	// RID = ⊕ⱼ ridⱼ
	RID types.RID
	// ChainKey is the jointly derived chain key, or the previous one when
	// refreshing.
	ChainKey types.RID

	// ShareReceived[j] = xʲᵢ = fⱼ(i)
	ShareReceived map[party.ID]curve.Scalar
}

// VerifyMessage implements round.Round.
//
// It checks the Paillier-Blum modulus proof and the Pedersen parameter
// proof of the sender.
func (r *round5) VerifyMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*message5)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Mod == nil || body.Prm == nil || body.Share == nil {
		return round.ErrNilFields
	}

	if !r.PaillierPublic[from].ValidateCiphertexts(body.Share) {
		return errors.New("invalid share ciphertext")
	}

	if !body.Mod.Verify(zkmod.Public{N: r.PaillierPublic[from].N()}, r.HashForID(from), r.Pool) {
		return errors.New("failed to validate paillier-blum modulus proof")
	}
	if !body.Prm.Verify(zkprm.Public{Aux: r.Pedersen[from]}, r.HashForID(from), r.Pool) {
		return errors.New("failed to validate pedersen parameters proof")
	}
	return nil
}

// StoreMessage implements round.Round.
//
// It decrypts the share and verifies it against the sender's exponent
// polynomial.
func (r *round5) StoreMessage(msg round.Message) error {
	from := msg.From
	body := msg.Content.(*message5)

	decryptedShare, err := r.PaillierSecret.Dec(body.Share)
	if err != nil {
		return err
	}
	share := r.Group().NewScalar().SetNat(decryptedShare.Mod(r.Group().Order()))
	if decryptedShare.Eq(curve.MakeInt(share)) != 1 {
		return errors.New("share is not in the expected range")
	}

	// fⱼ(i)⋅G == Fⱼ(i)
	expectedPublicShare := r.VSSPolynomials[from].Evaluate(r.SelfID().Scalar(r.Group()))
	if !share.ActOnBase().Equal(expectedPublicShare) {
		return errors.New("failed to validate vss share")
	}

	r.ShareReceived[from] = share
	return nil
}

// Finalize implements round.Round.
//
// It computes the new secret share xᵢ = Σⱼ fⱼ(i), derives all public
// shares from the summed exponent polynomial, and broadcasts the Schnorr
// response for the nonce committed in round 1.
func (r *round5) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	updatedSecret := group.NewScalar()
	if r.PreviousSecretECDSA != nil {
		updatedSecret.Set(r.PreviousSecretECDSA)
	}
	for _, j := range r.PartyIDs() {
		updatedSecret.Add(r.ShareReceived[j])
	}

	shamirPolynomials := make([]*polynomial.Exponent, 0, len(r.VSSPolynomials))
	for _, j := range r.PartyIDs() {
		shamirPolynomials = append(shamirPolynomials, r.VSSPolynomials[j])
	}
	shamirPublicPolynomial, err := polynomial.Sum(shamirPolynomials)
	if err != nil {
		return r, err
	}

	publicData := make(map[party.ID]*config.Public, len(r.PartyIDs()))
	for _, j := range r.PartyIDs() {
		publicShare := shamirPublicPolynomial.Evaluate(j.Scalar(group))
		if r.PreviousPublicSharesECDSA != nil {
			publicShare = publicShare.Add(r.PreviousPublicSharesECDSA[j])
		}
		pedersenJ := r.Pedersen[j]
		publicData[j] = &config.Public{
			ECDSA: publicShare,
			N:     pedersenJ.N(),
			S:     pedersenJ.S(),
			T:     pedersenJ.T(),
		}
	}

	updatedConfig := &config.Config{
		Group:     group,
		ID:        r.SelfID(),
		Threshold: r.Threshold(),
		ECDSA:     updatedSecret,
		P:         r.PaillierSecret.P(),
		Q:         r.PaillierSecret.Q(),
		Public:    publicData,
		RID:       r.RID,
		ChainKey:  r.ChainKey,
	}

	// The proof is bound to the new config, so all parties must have
	// derived the same one.
	h := r.Hash()
	_ = h.WriteAny(updatedConfig, r.SelfID())
	proof := r.SchnorrRand.Prove(h, publicData[r.SelfID()].ECDSA, updatedSecret)
	if proof == nil {
		return r, errors.New("failed to prove knowledge of the new share")
	}

	if err = r.BroadcastMessage(out, &broadcast6{SchnorrResponse: proof}); err != nil {
		return r, err
	}
	return &round6{
		round5:        r,
		UpdatedConfig: updatedConfig,
	}, nil
}

// MessageContent implements round.Round.
func (round5) MessageContent() round.Content { return &message5{} }

// Number implements round.Round.
func (round5) Number() round.Number { return 5 }
