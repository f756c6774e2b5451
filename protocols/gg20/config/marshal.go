package config

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// EmptyConfig creates an empty Config with a fixed group, ready for
// unmarshalling.
//
// This needs to be used like:
//
//	c := config.EmptyConfig(group)
//	err := cbor.Unmarshal(data, c)
func EmptyConfig(group curve.Curve) *Config {
	return &Config{
		Group: group,
	}
}

type configMarshal struct {
	CurveName     string
	ID            party.ID
	Threshold     uint32
	ECDSA         []byte
	P, Q          []byte
	RID, ChainKey []byte
	Public        map[party.ID]publicMarshal
}

type publicMarshal struct {
	ECDSA   []byte
	N, S, T []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Config) MarshalBinary() ([]byte, error) {
	ecdsa, err := c.ECDSA.MarshalBinary()
	if err != nil {
		return nil, err
	}
	public := make(map[party.ID]publicMarshal, len(c.Public))
	for id, p := range c.Public {
		point, err := p.ECDSA.MarshalBinary()
		if err != nil {
			return nil, err
		}
		public[id] = publicMarshal{
			ECDSA: point,
			N:     p.N.Bytes(),
			S:     p.S.Bytes(),
			T:     p.T.Bytes(),
		}
	}
	return cbor.Marshal(configMarshal{
		CurveName: c.Group.Name(),
		ID:        c.ID,
		Threshold: uint32(c.Threshold),
		ECDSA:     ecdsa,
		P:         c.P.Bytes(),
		Q:         c.Q.Bytes(),
		RID:       c.RID,
		ChainKey:  c.ChainKey,
		Public:    public,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The group must have been set beforehand with EmptyConfig.
func (c *Config) UnmarshalBinary(data []byte) error {
	if c.Group == nil {
		return errors.New("config: unmarshal into Config with unknown group")
	}
	var m configMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	if m.CurveName != c.Group.Name() {
		return fmt.Errorf("config: expected curve %s, got %s", c.Group.Name(), m.CurveName)
	}

	ecdsa := c.Group.NewScalar()
	if err := ecdsa.UnmarshalBinary(m.ECDSA); err != nil {
		return err
	}

	public := make(map[party.ID]*Public, len(m.Public))
	for id, p := range m.Public {
		point := c.Group.NewPoint()
		if err := point.UnmarshalBinary(p.ECDSA); err != nil {
			return err
		}
		nNat := new(saferith.Nat).SetBytes(p.N)
		if nNat.EqZero() == 1 {
			return errors.New("config: modulus is zero")
		}
		public[id] = &Public{
			ECDSA: point,
			N:     saferith.ModulusFromNat(nNat),
			S:     new(saferith.Nat).SetBytes(p.S),
			T:     new(saferith.Nat).SetBytes(p.T),
		}
	}

	c.ID = m.ID
	c.Threshold = int(m.Threshold)
	c.ECDSA = ecdsa
	c.P = new(saferith.Nat).SetBytes(m.P)
	c.Q = new(saferith.Nat).SetBytes(m.Q)
	c.RID = m.RID
	c.ChainKey = m.ChainKey
	c.Public = public

	return c.Validate()
}
