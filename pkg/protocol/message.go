package protocol

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// Message is the wire envelope exchanged between parties.
//
// The SSID, RoundNumber and From fields bind every message to one round of
// one protocol execution, so replayed or misrouted messages are rejected
// before their payload is parsed.
type Message struct {
	// SSID uniquely identifies the session this message belongs to.
	SSID []byte
	// From is the index of the sender.
	From party.ID
	// To is the intended recipient. 0 indicates a message for all parties.
	To party.ID
	// Protocol identifies the protocol this message belongs to.
	Protocol string
	// RoundNumber is the round this message is consumed in.
	RoundNumber round.Number
	// Data is the serialized content consumed by the round.
	Data []byte
	// Broadcast is true if this message must be delivered identically to
	// all participants.
	Broadcast bool
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("message: round %d, from: %d, to: %d, protocol: %s", m.RoundNumber, m.From, m.To, m.Protocol)
}

// IsFor returns true if the message is intended for the given party.
func (m Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == 0 || m.To == id
}

// Hash returns a digest of the message including its headers, suitable as
// input to a transport-level signature.
func (m Message) Hash() []byte {
	h := hash.New(
		hash.BytesWithDomain{TheDomain: "SSID", Bytes: m.SSID},
		m.From,
		m.To,
		hash.BytesWithDomain{TheDomain: "Protocol", Bytes: []byte(m.Protocol)},
		m.RoundNumber,
		hash.BytesWithDomain{TheDomain: "Content", Bytes: m.Data},
	)
	return h.Sum()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(m)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, m)
}

// unmarshalContent parses the payload into the content struct provided by
// the current round.
func (m Message) unmarshalContent(content round.Content) error {
	if content == nil {
		return ErrMessageInvalidRoundNumber
	}
	if err := cbor.Unmarshal(m.Data, content); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal content: %w", err)
	}
	if content.RoundNumber() != m.RoundNumber {
		return ErrMessageInvalidRoundNumber
	}
	return nil
}
