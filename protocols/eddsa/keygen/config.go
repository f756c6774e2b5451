package keygen

import (
	"errors"
	"fmt"
	"io"

	"github.com/quorumkey/quorumkey/internal/bip32"
	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// Config is the durable key material held by one participant after key
// generation.
//
// Before unmarshalling, EmptyConfig must be called to fix the group, so
// that scalars and points decode into the right concrete types.
type Config struct {
	// ID is the identifier of this participant.
	ID party.ID
	// Threshold is the number of corrupted parties tolerated. Threshold+1
	// participants are needed to sign.
	Threshold int
	// PrivateShare is this participant's Shamir share of the secret key.
	PrivateShare curve.Scalar
	// PublicKey is the joint public key of the consortium.
	PublicKey curve.Point
	// ChainKey is shared randomness for key derivation.
	ChainKey []byte
	// VerificationShares maps each participant to its public share
	// PrivateShareⱼ⋅G.
	VerificationShares *party.PointMap
}

// EmptyConfig creates an empty Config with a fixed group, ready for
// unmarshalling.
func EmptyConfig(group curve.Curve) *Config {
	return &Config{
		PrivateShare:       group.NewScalar(),
		PublicKey:          group.NewPoint(),
		VerificationShares: party.EmptyPointMap(group),
	}
}

// Curve returns the group this key lives on.
func (c *Config) Curve() curve.Curve {
	return c.PublicKey.Curve()
}

// Validate checks the Config for completeness and internal consistency.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: empty")
	}
	if c.Threshold < 0 {
		return fmt.Errorf("config: invalid threshold %d", c.Threshold)
	}
	if c.PrivateShare == nil || c.PrivateShare.IsZero() {
		return errors.New("config: missing private share")
	}
	if c.PublicKey == nil || c.PublicKey.IsIdentity() {
		return errors.New("config: missing public key")
	}
	if len(c.ChainKey) != params.SecBytes {
		return errors.New("config: invalid chain key")
	}
	if c.VerificationShares == nil {
		return errors.New("config: missing verification shares")
	}
	selfShare, ok := c.VerificationShares.Points[c.ID]
	if !ok {
		return errors.New("config: no verification share for self")
	}
	if !c.PrivateShare.ActOnBase().Equal(selfShare) {
		return errors.New("config: private share inconsistent with verification share")
	}
	return nil
}

// PartyIDs returns a sorted slice of all participants holding a share.
func (c *Config) PartyIDs() party.IDSlice {
	return party.NewIDSlice(c.VerificationShares.IDs())
}

// CanSign returns true if the given signers are a valid subset of the
// parties holding shares, and includes self.
func (c *Config) CanSign(signers party.IDSlice) bool {
	if !ValidThreshold(c.Threshold, len(signers)) {
		return false
	}
	if !signers.Contains(c.ID) {
		return false
	}
	for _, j := range signers {
		if _, ok := c.VerificationShares.Points[j]; !ok {
			return false
		}
	}
	return true
}

// ValidThreshold returns true if threshold t is valid for a quorum of n
// signers.
func ValidThreshold(t, n int) bool {
	return t >= 0 && t+1 <= n
}

// WriteTo implements io.WriterTo, binding the full public state of the
// key to a hash.
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

	data, err := c.PublicKey.MarshalBinary()
	if err != nil {
		return
	}
	n32, err := w.Write(data)
	total += int64(n32)
	if err != nil {
		return
	}

	n32, err = w.Write(c.ChainKey)
	total += int64(n32)
	if err != nil {
		return
	}

	partyIDs := c.PartyIDs()
	n, err = partyIDs.WriteTo(w)
	total += n
	if err != nil {
		return
	}

	for _, j := range partyIDs {
		data, err = c.VerificationShares.Points[j].MarshalBinary()
		if err != nil {
			return
		}
		n32, err = w.Write(data)
		total += int64(n32)
		if err != nil {
			return
		}
	}

	return
}

// Domain implements hash.WriterToWithDomain.
func (c Config) Domain() string {
	return "EdDSA Config"
}

// Derive adds a scalar to the key, yielding a related key with the same
// sharing structure. A new chain key may be supplied; otherwise the
// existing one is kept.
func (c *Config) Derive(adjust curve.Scalar, newChainKey []byte) (*Config, error) {
	if len(newChainKey) == 0 {
		newChainKey = c.ChainKey
	}
	if len(newChainKey) != params.SecBytes {
		return nil, fmt.Errorf("config: expected %d bytes for chain key, got %d", params.SecBytes, len(newChainKey))
	}

	adjustG := adjust.ActOnBase()

	verificationShares := make(map[party.ID]curve.Point, len(c.VerificationShares.Points))
	for j, share := range c.VerificationShares.Points {
		verificationShares[j] = share.Add(adjustG)
	}
	return &Config{
		ID:                 c.ID,
		Threshold:          c.Threshold,
		PrivateShare:       c.Curve().NewScalar().Set(c.PrivateShare).Add(adjust),
		PublicKey:          c.PublicKey.Add(adjustG),
		ChainKey:           newChainKey,
		VerificationShares: party.NewPointMap(verificationShares),
	}, nil
}

// DeriveChild derives the key for a child index per BIP-32. Only
// non-hardened indices are supported.
func (c *Config) DeriveChild(i uint32) (*Config, error) {
	scalar, newChainKey, err := bip32.DeriveScalar(c.PublicKey, c.ChainKey, i)
	if err != nil {
		return nil, err
	}
	return c.Derive(scalar, newChainKey)
}
