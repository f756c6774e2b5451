// Package gg20 exposes the threshold ECDSA protocol suite: distributed key
// generation, proactive refresh, presigning and signing.
//
// Each function returns a protocol.StartFunc to be driven by a
// protocol.Handler.
package gg20

import (
	"github.com/quorumkey/quorumkey/pkg/ecdsa"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/pkg/protocol"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
	"github.com/quorumkey/quorumkey/protocols/gg20/keygen"
	"github.com/quorumkey/quorumkey/protocols/gg20/presign"
	"github.com/quorumkey/quorumkey/protocols/gg20/sign"
)

// Config is the durable key material produced by Keygen and Refresh.
type Config = config.Config

// EmptyConfig creates an empty Config with a fixed group, ready for
// unmarshalling.
func EmptyConfig(group curve.Curve) *Config {
	return config.EmptyConfig(group)
}

// Keygen generates a new threshold ECDSA key among the given parties.
// The protocol result is a *Config.
func Keygen(group curve.Curve, selfID party.ID, participants []party.ID, threshold int, pl *pool.Pool) protocol.StartFunc {
	return keygen.Start(group, selfID, participants, threshold, pl)
}

// Refresh re-randomizes the shares and auxiliary parameters of an existing
// key without changing the public key. The protocol result is a *Config.
func Refresh(c *Config, pl *pool.Pool) protocol.StartFunc {
	return keygen.Refresh(c, pl)
}

// Sign runs the full signing protocol over the given message digest with a
// quorum of at least threshold+1 signers. The protocol result is an
// *ecdsa.Signature.
func Sign(c *Config, signers []party.ID, messageHash []byte, pl *pool.Pool) protocol.StartFunc {
	return presign.StartPresign(c, signers, messageHash, pl)
}

// Presign runs the message-independent part of signing ahead of time. The
// protocol result is an *ecdsa.PreSignature which must be consumed by
// exactly one PresignOnline run.
func Presign(c *Config, signers []party.ID, pl *pool.Pool) protocol.StartFunc {
	return presign.StartPresign(c, signers, nil, pl)
}

// PresignOnline signs the given message digest with a stored presignature
// in a single round. The protocol result is an *ecdsa.Signature.
func PresignOnline(c *Config, preSignature *ecdsa.PreSignature, messageHash []byte, pl *pool.Pool) protocol.StartFunc {
	return sign.StartSignOnline(c, preSignature, messageHash, pl)
}
