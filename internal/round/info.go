package round

import (
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// Info contains static information about a protocol execution, fixed before
// the first round runs.
type Info struct {
	// ProtocolID identifies the protocol being executed.
	ProtocolID string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber Number
	// SelfID is this party's ID.
	SelfID party.ID
	// PartyIDs lists all participating parties.
	PartyIDs []party.ID
	// Threshold is the maximum number of parties assumed corrupted during
	// this execution.
	Threshold int
	// Group is the elliptic curve group used for this execution.
	Group curve.Curve
}

// Session represents the current execution of a round-based protocol.
// It embeds the current round and gives access to the execution's static
// data.
type Session interface {
	Round
	// Group returns the curve used for this protocol execution.
	Group() curve.Curve
	// Hash returns a cloned hash function with the current session state.
	Hash() *hash.Hash
	// ProtocolID identifies the protocol being executed.
	ProtocolID() string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber() Number
	// SSID is the unique identifier for this protocol execution.
	SSID() []byte
	// SelfID is this party's ID.
	SelfID() party.ID
	// PartyIDs is a sorted slice of the participating parties.
	PartyIDs() party.IDSlice
	// OtherPartyIDs is PartyIDs without SelfID.
	OtherPartyIDs() party.IDSlice
	// Threshold is the maximum number of parties assumed corrupted during
	// this execution.
	Threshold() int
	// N returns the total number of participants.
	N() int
}
