package presign

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
	zkaffg "github.com/quorumkey/quorumkey/pkg/zk/affg"
)

// mta holds this party's state of one multiplicative-to-additive conversion
// with one counterparty. From the sender's view, the product aᵢ⋅bⱼ of our
// multiplicative share aᵢ with j's share bⱼ (encrypted as Kⱼ) is turned into
// the additive shares βᵢⱼ (kept) and αⱼᵢ = aᵢ⋅bⱼ - βᵢⱼ (decrypted by j).
type mta struct {
	// Secret = aᵢ
	Secret curve.Scalar

	// Beta = βᵢⱼ mod q
	Beta curve.Scalar
	// BetaNeg = -βᵢⱼ ∈ ±2ˡ'
	BetaNeg *saferith.Int

	// D = (aᵢ ⊙ Kⱼ) ⊕ Encⱼ(-βᵢⱼ; s)
	D *paillier.Ciphertext
	// F = Encᵢ(-βᵢⱼ; r), tying the proof to our own key.
	F *paillier.Ciphertext

	// S, R are the Paillier nonces of D and F.
	S, R *saferith.Nat

	// Alpha = αᵢⱼ, decrypted from the D ciphertext received from j.
	Alpha curve.Scalar
}

// newMtA runs the sender's half of the conversion for the counterparty whose
// encrypted share is Kj.
func newMtA(ai curve.Scalar, Kj *paillier.Ciphertext, sender, receiver *paillier.PublicKey) *mta {
	group := ai.Curve()

	beta := sample.IntervalLPrime(rand.Reader)
	betaNeg := beta.Clone().Neg(1)

	F, r := sender.Enc(betaNeg)

	D, s := receiver.Enc(betaNeg)
	D.Add(receiver, Kj.Clone().Mul(receiver, curve.MakeInt(ai)))

	return &mta{
		Secret:  ai,
		Beta:    group.NewScalar().SetNat(beta.Mod(group.Order())),
		BetaNeg: betaNeg,
		D:       D,
		F:       F,
		S:       s,
		R:       r,
	}
}

// proof generates the affine-group range proof for the verifier j, showing
// that D was derived from the share committed in Ai.
func (m *mta) proof(group curve.Curve, h *hash.Hash, Ai curve.Point, Kj *paillier.Ciphertext,
	sender, receiver *paillier.PublicKey, aux *pedersen.Parameters) *zkaffg.Proof {
	return zkaffg.NewProof(group, h, zkaffg.Public{
		Kv:       Kj,
		Dv:       m.D,
		Fp:       m.F,
		Xp:       Ai,
		Prover:   sender,
		Verifier: receiver,
		Aux:      aux,
	}, zkaffg.Private{
		X:    curve.MakeInt(m.Secret),
		Y:    m.BetaNeg,
		Rho:  m.S,
		RhoY: m.R,
	})
}

// share returns this conversion's contribution αᵢⱼ + βᵢⱼ to the additive
// sharing of the product.
func (m *mta) share(group curve.Curve) curve.Scalar {
	return group.NewScalar().Set(m.Alpha).Add(m.Beta)
}
