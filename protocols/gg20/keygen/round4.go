package keygen

import (
	"errors"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/arith"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
	zkmod "github.com/quorumkey/quorumkey/pkg/zk/mod"
	zkprm "github.com/quorumkey/quorumkey/pkg/zk/prm"
	zksch "github.com/quorumkey/quorumkey/pkg/zk/sch"
)

// round4 opens all commitments, derives the joint rid, and distributes the
// encrypted secret shares along with the Paillier and Pedersen validity
// proofs.
type round4 struct {
	*round3
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// It verifies the decommitment against the commitment of round 1 and
// validates all revealed values.
func (r *round4) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}

	if body.VSSPolynomial == nil || body.SchnorrCommitment == nil || body.N == nil || body.S == nil || body.T == nil {
		return round.ErrNilFields
	}
	if err := body.RID.Validate(); err != nil {
		return err
	}
	if err := body.C.Validate(); err != nil {
		return err
	}

	if err := paillier.ValidateN(body.N); err != nil {
		return err
	}
	pedersenParams := pedersen.New(arith.ModulusFromN(body.N), body.S, body.T)
	if err := pedersenParams.Validate(); err != nil {
		return err
	}

	if body.VSSPolynomial.Degree() != r.Threshold() {
		return errors.New("vss polynomial has incorrect degree")
	}
	// A refresh must not shift the joint secret, so the constant term of
	// every sharing polynomial has to be zero. For keygen it must not be.
	refreshing := r.PreviousSecretECDSA != nil
	if body.VSSPolynomial.Constant().IsIdentity() != refreshing {
		return errors.New("vss polynomial has an incorrect constant")
	}

	if !r.HashForID(from).Decommit(r.Commitments[from], body.Decommitment,
		body.RID, body.C, body.VSSPolynomial, body.SchnorrCommitment, pedersenParams) {
		return errors.New("failed to decommit")
	}

	r.RIDs[from] = body.RID
	r.ChainKeys[from] = body.C
	r.PaillierPublic[from] = paillier.NewPublicKey(body.N)
	r.Pedersen[from] = pedersenParams
	r.VSSPolynomials[from] = body.VSSPolynomial
	r.SchnorrCommitments[from] = body.SchnorrCommitment
	return nil
}

// VerifyMessage implements round.Round.
func (round4) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round4) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// It computes rid = ⊕ⱼ ridⱼ, binds it to the session hash, proves the
// Paillier and Pedersen parameters valid, and sends each party its encrypted
// share fᵢ(j).
func (r *round4) Finalize(out chan<- *round.Message) (round.Session, error) {
	rid := types.EmptyRID()
	chainKey := types.EmptyRID()
	for _, j := range r.PartyIDs() {
		rid.XOR(r.RIDs[j])
		chainKey.XOR(r.ChainKeys[j])
	}
	if r.PreviousChainKey != nil {
		chainKey = r.PreviousChainKey
	}

	// All later hashes, including the proof challenges, depend on rid.
	r.UpdateHashState(rid)

	mod := zkmod.NewProof(r.HashForID(r.SelfID()), zkmod.Private{
		P:   r.PaillierSecret.P(),
		Q:   r.PaillierSecret.Q(),
		Phi: r.PaillierSecret.Phi(),
	}, zkmod.Public{N: r.PaillierPublic[r.SelfID()].N()}, r.Pool)

	prm := zkprm.NewProof(zkprm.Private{
		Lambda: r.PedersenSecret,
		Phi:    r.PaillierSecret.Phi(),
		P:      r.PaillierSecret.P(),
		Q:      r.PaillierSecret.Q(),
	}, r.HashForID(r.SelfID()), zkprm.Public{Aux: r.Pedersen[r.SelfID()]}, r.Pool)

	for _, j := range r.OtherPartyIDs() {
		// Encⱼ(fᵢ(j))
		share := r.VSSSecret.Evaluate(j.Scalar(r.Group()))
		shareCiphertext, _ := r.PaillierPublic[j].Enc(curve.MakeInt(share))
		err := r.SendMessage(out, &message5{
			Mod:   mod,
			Prm:   prm,
			Share: shareCiphertext,
		}, j)
		if err != nil {
			return r, err
		}
	}

	selfShare := r.VSSSecret.Evaluate(r.SelfID().Scalar(r.Group()))
	return &round5{
		round4:        r,
		RID:           rid,
		ChainKey:      chainKey,
		ShareReceived: map[party.ID]curve.Scalar{r.SelfID(): selfShare},
	}, nil
}

// MessageContent implements round.Round.
func (round4) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (r *round4) BroadcastContent() round.BroadcastContent {
	return &broadcast4{
		VSSPolynomial:     polynomial.EmptyExponent(r.Group()),
		SchnorrCommitment: zksch.EmptyCommitment(r.Group()),
	}
}

// Number implements round.Round.
func (round4) Number() round.Number { return 4 }
