package protocol

import (
	"errors"
	"fmt"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// Sentinel errors for message validation failures.
var (
	ErrMessageDuplicate          = errors.New("protocol: message was already handled")
	ErrMessageUnknownSender      = errors.New("protocol: message from unknown sender")
	ErrMessageWrongSSID          = errors.New("protocol: message intended for other session")
	ErrMessageWrongProtocolID    = errors.New("protocol: message intended for other protocol")
	ErrMessageWrongDestination   = errors.New("protocol: message intended for other party")
	ErrMessageInvalidRoundNumber = errors.New("protocol: message has invalid round number")
	ErrMessageNotBroadcast       = errors.New("protocol: expected broadcast message")
	ErrMessageNotP2P             = errors.New("protocol: expected point-to-point message")
	ErrNotFinished               = errors.New("protocol: not finished")
	ErrUnresponsiveParties       = errors.New("protocol: aborted while waiting for messages")
)

// Error wraps a failure during a protocol execution with the round it
// occurred in and, when identifiable, the party responsible.
type Error struct {
	// RoundNumber is the round during which the failure was detected.
	RoundNumber round.Number
	// Culprit is the party responsible for the failure, or 0 when the
	// offender could not be identified.
	Culprit party.ID
	Err     error
}

// Error implements error.
func (e Error) Error() string {
	if e.Culprit != 0 {
		return fmt.Sprintf("round %d: party %d: %s", e.RoundNumber, e.Culprit, e.Err)
	}
	return fmt.Sprintf("round %d: %s", e.RoundNumber, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e Error) Unwrap() error {
	return e.Err
}
