// Package eddsa exposes the threshold Ed25519 protocol suite: distributed
// key generation, proactive refresh and signing.
//
// Each function returns a protocol.StartFunc to be driven by a
// protocol.Handler.
package eddsa

import (
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/protocol"
	"github.com/quorumkey/quorumkey/protocols/eddsa/keygen"
	"github.com/quorumkey/quorumkey/protocols/eddsa/sign"
)

// Config is the durable key material produced by Keygen and Refresh.
type Config = keygen.Config

// EmptyConfig creates an empty Config ready for unmarshalling.
func EmptyConfig() *Config {
	return keygen.EmptyConfig(curve.Edwards25519{})
}

// Keygen generates a new threshold Ed25519 key among the given parties.
// The protocol result is a *Config.
func Keygen(selfID party.ID, participants []party.ID, threshold int) protocol.StartFunc {
	return keygen.Start(curve.Edwards25519{}, selfID, participants, threshold)
}

// Refresh re-randomizes the shares of an existing key without changing the
// public key. The protocol result is a *Config.
func Refresh(c *Config) protocol.StartFunc {
	return keygen.Refresh(c)
}

// Sign signs the given message with a quorum of at least threshold+1
// signers. The protocol result is an *eddsa.Signature whose wire encoding
// verifies under standard Ed25519.
func Sign(c *Config, signers []party.ID, message []byte) protocol.StartFunc {
	return sign.StartSign(c, signers, message)
}
