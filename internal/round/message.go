package round

import (
	"github.com/quorumkey/quorumkey/pkg/party"
)

// Content is the payload of a message produced by a round during
// finalization.
type Content interface {
	// RoundNumber is the round which consumes this content.
	RoundNumber() Number
}

// BroadcastContent is a Content which must be delivered identically to all
// participants.
type BroadcastContent interface {
	Content
	Reset()
}

// Message is the envelope exchanged between parties during one round.
// A zero To indicates a message intended for all participants.
type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}

// NormalBroadcastContent can be embedded in a broadcast message struct to
// provide the Reset method when no special state needs clearing.
type NormalBroadcastContent struct{}

func (NormalBroadcastContent) Reset() {}
