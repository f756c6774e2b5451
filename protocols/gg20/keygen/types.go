package keygen

import (
	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	zkmod "github.com/quorumkey/quorumkey/pkg/zk/mod"
	zkprm "github.com/quorumkey/quorumkey/pkg/zk/prm"
	zksch "github.com/quorumkey/quorumkey/pkg/zk/sch"
)

// broadcast2 commits this party to all values revealed in round 4.
type broadcast2 struct {
	round.NormalBroadcastContent
	// Commitment = Vᵢ = H(ssid, i, ridᵢ, cᵢ, Fᵢ(X), Aᵢ, Nᵢ, sᵢ, tᵢ, uᵢ)
	Commitment hash.Commitment
}

// broadcast3 is the echo of all commitments, detecting inconsistent
// broadcasts over a plain point-to-point network.
type broadcast3 struct {
	round.NormalBroadcastContent
	// EchoHash = H(ssid, V₁, …, Vₙ)
	EchoHash []byte
}

// broadcast4 opens the commitment from round 2.
type broadcast4 struct {
	round.NormalBroadcastContent
	// RID is this party's contribution to the joint session randomizer.
	RID types.RID
	// C is this party's contribution to the chain key.
	C types.RID
	// VSSPolynomial = Fᵢ(X) = fᵢ(X)⋅G
	VSSPolynomial *polynomial.Exponent
	// SchnorrCommitment = Aᵢ, used in the proof of knowledge of the final
	// share in the last round.
	SchnorrCommitment *zksch.Commitment
	// N, S, T are the party's Paillier modulus and Pedersen parameters.
	N *saferith.Modulus
	S *saferith.Nat
	T *saferith.Nat
	// Decommitment = uᵢ
	Decommitment hash.Decommitment
}

// message5 carries the validity proofs for the Paillier and Pedersen
// parameters, and the recipient's encrypted secret share.
type message5 struct {
	Mod *zkmod.Proof
	Prm *zkprm.Proof
	// Share = Encⱼ(fᵢ(j))
	Share *paillier.Ciphertext
}

// broadcast6 is the proof of knowledge of the final secret share.
type broadcast6 struct {
	round.NormalBroadcastContent
	SchnorrResponse *zksch.Response
}

func (broadcast2) RoundNumber() round.Number { return 2 }
func (broadcast3) RoundNumber() round.Number { return 3 }
func (broadcast4) RoundNumber() round.Number { return 4 }
func (message5) RoundNumber() round.Number   { return 5 }
func (broadcast6) RoundNumber() round.Number { return 6 }
