package config

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/bip32"
	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/arith"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pedersen"
)

// Public holds the public key material associated with one party.
type Public struct {
	// ECDSA is the party's public key share Xⱼ = xⱼ⋅G.
	ECDSA curve.Point
	// N is the party's Paillier modulus, N = p⋅q with p ≡ q ≡ 3 (mod 4).
	N *saferith.Modulus
	// S, T are the party's Pedersen commitment parameters over N.
	S *saferith.Nat
	T *saferith.Nat
}

// Config is the result of a key generation or refresh, holding this party's
// secret share and the public data of the whole quorum.
type Config struct {
	Group curve.Curve

	// ID is this party's index.
	ID party.ID

	// Threshold is the maximum number of tolerated corruptions.
	// Threshold + 1 shares are required to sign.
	Threshold int

	// ECDSA is this party's share xᵢ of the secret key x.
	ECDSA curve.Scalar

	// P, Q are the primes of this party's Paillier modulus.
	P, Q *saferith.Nat

	// Public maps each party's ID to its public key material.
	Public map[party.ID]*Public

	// RID is a random identifier jointly generated for this key.
	RID types.RID
	// ChainKey is the BIP-32 chaining value associated with this key.
	ChainKey types.RID
}

// PublicPoint returns the quorum's joint public key, interpolated from the
// public shares.
func (c Config) PublicPoint() curve.Point {
	sum := c.Group.NewPoint()
	partyIDs := make([]party.ID, 0, len(c.Public))
	for j := range c.Public {
		partyIDs = append(partyIDs, j)
	}
	l := polynomial.Lagrange(c.Group, partyIDs)
	for j, partyJ := range c.Public {
		sum = sum.Add(l[j].Act(partyJ.ECDSA))
	}
	return sum
}

// Validate checks the consistency of the config:
//   - 0 ⩽ threshold ⩽ n-1
//   - all public data is present and valid
//   - the secret share and primes correspond to this party's public data.
func (c Config) Validate() error {
	if !ValidThreshold(c.Threshold, len(c.Public)) {
		return fmt.Errorf("config: threshold %d is invalid", c.Threshold)
	}

	if err := c.RID.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.ECDSA == nil || c.P == nil || c.Q == nil {
		return errors.New("config: one or more fields is empty")
	}
	if c.ECDSA.IsZero() {
		return errors.New("config: ECDSA secret key share is zero")
	}

	if err := paillier.ValidatePrime(c.P); err != nil {
		return fmt.Errorf("config: prime p: %w", err)
	}
	if err := paillier.ValidatePrime(c.Q); err != nil {
		return fmt.Errorf("config: prime q: %w", err)
	}

	for j, publicJ := range c.Public {
		if err := publicJ.validate(); err != nil {
			return fmt.Errorf("config: party %d: %w", j, err)
		}
	}

	public := c.Public[c.ID]
	if public == nil {
		return errors.New("config: no public data for this party")
	}

	if !c.ECDSA.ActOnBase().Equal(public.ECDSA) {
		return errors.New("config: ECDSA secret share does not correspond to public share")
	}

	n := new(saferith.Nat).Mul(c.P, c.Q, -1)
	if public.N.Nat().Eq(n) != 1 {
		return errors.New("config: P⋅Q ≠ N")
	}

	return nil
}

// PartyIDs returns a sorted slice of the quorum's party IDs.
func (c Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(c.Public))
	for j := range c.Public {
		ids = append(ids, j)
	}
	return party.NewIDSlice(ids)
}

func (p *Public) validate() error {
	if p == nil || p.ECDSA == nil || p.N == nil || p.S == nil || p.T == nil {
		return errors.New("public: one or more fields is empty")
	}
	if p.ECDSA.IsIdentity() {
		return errors.New("public: ECDSA public key share is identity")
	}
	if err := paillier.ValidateN(p.N); err != nil {
		return fmt.Errorf("public: %w", err)
	}
	if err := p.Pedersen().Validate(); err != nil {
		return fmt.Errorf("public: %w", err)
	}
	return nil
}

// Paillier returns the public Paillier key of this party.
func (p *Public) Paillier() *paillier.PublicKey {
	return paillier.NewPublicKey(p.N)
}

// Pedersen returns the Pedersen commitment parameters of this party.
func (p *Public) Pedersen() *pedersen.Parameters {
	return pedersen.New(arith.ModulusFromN(p.N), p.S, p.T)
}

// Paillier returns the secret Paillier key of this party.
func (c *Config) Paillier() *paillier.SecretKey {
	return paillier.NewSecretKeyFromPrimes(c.P, c.Q)
}

// WriteTo implements io.WriterTo, binding the full config to a hash state.
func (c *Config) WriteTo(w io.Writer) (total int64, err error) {
	if c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var n int64

	n, err = types.ThresholdWrapper(c.Threshold).WriteTo(w)
	total += n
	if err != nil {
		return
	}

	partyIDs := c.PartyIDs()
	n, err = partyIDs.WriteTo(w)
	total += n
	if err != nil {
		return
	}

	n, err = c.RID.WriteTo(w)
	total += n
	if err != nil {
		return
	}

	for _, j := range partyIDs {
		n, err = c.Public[j].WriteTo(w)
		total += n
		if err != nil {
			return
		}
	}

	return
}

// Domain implements hash.WriterToWithDomain.
func (c Config) Domain() string {
	return "Config"
}

// WriteTo implements io.WriterTo.
func (p *Public) WriteTo(w io.Writer) (total int64, err error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	data, err := p.ECDSA.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	total = int64(n)
	if err != nil {
		return
	}

	buf := make([]byte, params.BytesIntModN)
	for _, i := range []*saferith.Nat{p.N.Nat(), p.S, p.T} {
		i.FillBytes(buf)
		n, err = w.Write(buf)
		total += int64(n)
		if err != nil {
			return
		}
	}
	return
}

// Domain implements hash.WriterToWithDomain.
func (Public) Domain() string {
	return "Public Data"
}

// CanSign returns true if the given sorted list of signers is a valid
// subset of the quorum of size at least threshold+1 which includes self.
func (c *Config) CanSign(signers party.IDSlice) bool {
	if !ValidThreshold(c.Threshold, len(signers)) {
		return false
	}
	if !signers.Valid() {
		return false
	}
	if !signers.Contains(c.ID) {
		return false
	}
	for _, j := range signers {
		if _, ok := c.Public[j]; !ok {
			return false
		}
	}
	return true
}

// ValidThreshold returns true when 0 ⩽ t ⩽ n-1.
func ValidThreshold(t, n int) bool {
	if t < 0 || t > math.MaxUint32 {
		return false
	}
	if n <= 0 || t > n-1 {
		return false
	}
	return true
}

// Equal returns true if both publics hold identical key material.
func (p *Public) Equal(other *Public) bool {
	if !p.ECDSA.Equal(other.ECDSA) {
		return false
	}
	if p.N.Nat().Eq(other.N.Nat()) != 1 {
		return false
	}
	if p.S.Eq(other.S) != 1 {
		return false
	}
	if p.T.Eq(other.T) != 1 {
		return false
	}
	return true
}

// DeriveBIP32 derives a sharing of the i-th child of the quorum's signing
// key, using non-hardened BIP-32 derivation.
//
// Some indices yield an invalid key, in which case an error is returned and
// the caller should try the next index.
func (c *Config) DeriveBIP32(i uint32) (*Config, error) {
	if _, ok := c.Group.(curve.Secp256k1); !ok {
		return nil, errors.New("config: BIP-32 derivation requires secp256k1")
	}
	scalar, newChainKey, err := bip32.DeriveScalar(c.PublicPoint(), c.ChainKey, i)
	if err != nil {
		return nil, err
	}

	// Adding the derived scalar to the secret is achieved by adding it to
	// each share, and scalar⋅G to each verification share.
	scalarG := scalar.ActOnBase()

	publics := make(map[party.ID]*Public, len(c.Public))
	for k, v := range c.Public {
		publics[k] = &Public{
			ECDSA: v.ECDSA.Add(scalarG),
			N:     v.N,
			S:     v.S,
			T:     v.T,
		}
	}

	chainKey := types.EmptyRID()
	copy(chainKey, newChainKey)

	return &Config{
		Group:     c.Group,
		ID:        c.ID,
		Threshold: c.Threshold,
		ECDSA:     c.Group.NewScalar().Set(c.ECDSA).Add(scalar),
		P:         c.P,
		Q:         c.Q,
		Public:    publics,
		RID:       c.RID,
		ChainKey:  chainKey,
	}, nil
}
