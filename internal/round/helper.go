package round

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/hash"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
)

// ErrOutChanFull is returned when the out channel cannot accept another
// message. The channel must be buffered with enough capacity for a full
// round of messages.
var ErrOutChanFull = errors.New("round: out channel is full")

// Helper implements Session without Round, and is embedded in the first
// round of a protocol so that the full struct implements Session.
type Helper struct {
	info Info

	// Pool allows parallelizing expensive operations. May be nil.
	Pool *pool.Pool

	// partyIDs is a sorted copy of info.PartyIDs.
	partyIDs party.IDSlice
	// otherPartyIDs is partyIDs without selfID.
	otherPartyIDs party.IDSlice

	// ssid is the unique identifier for this protocol execution.
	ssid []byte

	hash *hash.Hash

	mtx sync.Mutex
}

// NewSession creates a *Helper for a new protocol execution.
//
// sessionID is an optional application-provided value which must be unique
// for each execution, for example a counter or a common random string.
// auxInfo is additional data bound to the session's hash state, such as a
// previously generated key configuration.
func NewSession(info Info, sessionID []byte, pl *pool.Pool, auxInfo ...hash.WriterToWithDomain) (*Helper, error) {
	partyIDs := party.NewIDSlice(info.PartyIDs)
	if !partyIDs.Valid() {
		return nil, errors.New("session: partyIDs invalid")
	}
	if !partyIDs.Contains(info.SelfID) {
		return nil, errors.New("session: selfID not included in partyIDs")
	}

	if info.Threshold < 0 || info.Threshold > math.MaxUint32 {
		return nil, fmt.Errorf("session: threshold %d is invalid", info.Threshold)
	}
	if n := len(partyIDs); n <= 0 || info.Threshold > n-1 {
		return nil, fmt.Errorf("session: threshold %d is invalid for number of parties %d", info.Threshold, n)
	}

	var err error
	h := hash.New()

	if sessionID != nil {
		if err = h.WriteAny(&hash.BytesWithDomain{
			TheDomain: "Session ID",
			Bytes:     sessionID,
		}); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	if err = h.WriteAny(&hash.BytesWithDomain{
		TheDomain: "Protocol ID",
		Bytes:     []byte(info.ProtocolID),
	}); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	if info.Group != nil {
		if err = h.WriteAny(&hash.BytesWithDomain{
			TheDomain: "Group Name",
			Bytes:     []byte(info.Group.Name()),
		}); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	if err = h.WriteAny(partyIDs); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	if err = h.WriteAny(types.ThresholdWrapper(info.Threshold)); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	for _, a := range auxInfo {
		if a == nil {
			continue
		}
		if err = h.WriteAny(a); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	return &Helper{
		info:          info,
		Pool:          pl,
		partyIDs:      partyIDs,
		otherPartyIDs: partyIDs.Remove(info.SelfID),
		ssid:          deriveSSID(h.Clone().Sum()),
		hash:          h,
	}, nil
}

// deriveSSID expands the session's initial hash state into the fixed-size
// identifier which prefixes all wire messages.
func deriveSSID(seed []byte) []byte {
	shake := sha3.NewCShake128(nil, []byte("QuorumKey SSID"))
	_, _ = shake.Write(seed)
	ssid := make([]byte, params.SecBytes)
	_, _ = shake.Read(ssid)
	return ssid
}

// HashForID returns a clone of the session hash, keyed with the given id.
func (h *Helper) HashForID(id party.ID) *hash.Hash {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	cloned := h.hash.Clone()
	if id != 0 {
		_ = cloned.WriteAny(id)
	}
	return cloned
}

// UpdateHashState writes additional data to the session hash state.
func (h *Helper) UpdateHashState(value hash.WriterToWithDomain) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	_ = h.hash.WriteAny(value)
}

// BroadcastMessage sends the given content to all participants.
func (h *Helper) BroadcastMessage(out chan<- *Message, broadcastContent Content) error {
	msg := &Message{
		From:      h.info.SelfID,
		Broadcast: true,
		Content:   broadcastContent,
	}
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// SendMessage sends content to a single party. If the message is intended
// for all participants without requiring reliable broadcast, to may be 0.
func (h *Helper) SendMessage(out chan<- *Message, content Content, to party.ID) error {
	msg := &Message{
		From:    h.info.SelfID,
		To:      to,
		Content: content,
	}
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// Hash returns a copy of the hash function of this protocol execution.
func (h *Helper) Hash() *hash.Hash {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.hash.Clone()
}

// ResultRound returns a terminal round containing the protocol's output.
func (h *Helper) ResultRound(result interface{}) Session {
	return &Output{
		Helper: h,
		Result: result,
	}
}

// AbortRound returns a terminal round containing the identified culprits.
// Finalize should still return a nil error alongside it.
func (h *Helper) AbortRound(err error, culprits ...party.ID) Session {
	return &Abort{
		Helper:   h,
		Culprits: culprits,
		Err:      err,
	}
}

// ProtocolID identifies the protocol being executed.
func (h *Helper) ProtocolID() string { return h.info.ProtocolID }

// FinalRoundNumber is the number of rounds before the output round.
func (h *Helper) FinalRoundNumber() Number { return h.info.FinalRoundNumber }

// SSID is the unique identifier for this protocol execution.
func (h *Helper) SSID() []byte { return h.ssid }

// SelfID is this party's ID.
func (h *Helper) SelfID() party.ID { return h.info.SelfID }

// PartyIDs is a sorted slice of the participating parties.
func (h *Helper) PartyIDs() party.IDSlice { return h.partyIDs }

// OtherPartyIDs is PartyIDs without SelfID.
func (h *Helper) OtherPartyIDs() party.IDSlice { return h.otherPartyIDs }

// Threshold is the maximum number of parties assumed corrupted during this
// execution.
func (h *Helper) Threshold() int { return h.info.Threshold }

// N returns the number of participants.
func (h *Helper) N() int { return len(h.info.PartyIDs) }

// Group returns the curve used for this protocol execution.
func (h *Helper) Group() curve.Curve { return h.info.Group }
