// Package zk provides shared fixtures for testing the zero-knowledge
// proofs. Generating safe Paillier primes is far too slow to do in every
// test, so a fixed prover and verifier key pair is used instead.
package zk

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
)

const (
	proverPHex = "CDCEB999C3235B12B7983E211057FD038BF5BF39CC47D967B937E98FB1E1874398E21823FC042CC0E82D8FF8A6A115126AB87A49F3425D81F21923AB0AD394BE7D9F6671923184CE5CA518EE14F6EDFB9A28673D64E87E2F636C33A0A6DFBFC516913DC7A026F01F9E8F9A314D0F74F6CE69D0B75C241621AF50DF0EAD8B4E9F"
	proverQHex = "F2A16F424C98D873868502D7819DFBB4CDB6DB11AC3A3720712E645382DB908B1C4D5B31EEEEA72469469D524C742295BCBD3F7A48E2A335D6FD0D9D5E2FB60D09071EB564E163B49CF6DCE50A782423E31132EEEB493486433A3626566D95D4ABE458448444FFBF4B561BF456C3DD320FAFE086F0A5FB8587A61CB0BEBC4647"

	verifierPHex = "E3E92C59146CF40BA38B5891C558EBBCCE4DC618D9DE86550F63E9D4167C5015D06A588DE11F41B7C33B73B8F33B991909DE774E7A136CC2558A2EC47227BD0648EB7D714B05A14CB906750F149B063CF2D1365405CB8ED46569DBA7AD8631203DA382A44250B8A23EB911440EE649A954BCBF1A2FCD05C9A0EDECFFCFC968B3"
	verifierQHex = "D90447A431174A3E71ACB0E1F4F8518135ACF3D6D0E430DAA83EB1B9F24FBB7F1D207EFD50618A6BB56BC289540614C025E9A043730EEA050CB55079986BF2BA58250891E811E1E93FCB4EE49FE7DFD4F799C5AC07315F5B321DFD599F2CA36EBE06EDE9B688B53065375B3AE60C51602D833C6DAB296437DC9BBC010C1D96CB"
)

var (
	ProverPaillierSecret *paillier.SecretKey
	ProverPaillierPublic *paillier.PublicKey

	VerifierPaillierSecret *paillier.SecretKey
	VerifierPaillierPublic *paillier.PublicKey

	// Pedersen is a set of commitment parameters over the verifier's
	// modulus.
	Pedersen *pedersen.Parameters
)

func init() {
	p, _ := new(saferith.Nat).SetHex(proverPHex)
	q, _ := new(saferith.Nat).SetHex(proverQHex)
	ProverPaillierSecret = paillier.NewSecretKeyFromPrimes(p, q)
	ProverPaillierPublic = ProverPaillierSecret.PublicKey

	p, _ = new(saferith.Nat).SetHex(verifierPHex)
	q, _ = new(saferith.Nat).SetHex(verifierQHex)
	VerifierPaillierSecret = paillier.NewSecretKeyFromPrimes(p, q)
	VerifierPaillierPublic = VerifierPaillierSecret.PublicKey

	s, t, _ := sample.Pedersen(rand.Reader, VerifierPaillierSecret.Phi(), VerifierPaillierSecret.N())
	Pedersen = pedersen.New(VerifierPaillierSecret.Modulus(), s, t)
}
