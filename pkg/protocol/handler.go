package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// StartFunc creates the first round of a protocol, bound to the given
// session identifier.
type StartFunc func(sessionID []byte) (round.Session, error)

// Handler drives one execution of a protocol.
//
// The user forwards messages produced on Listen to the other parties, and
// delivers incoming messages with Update. Once Update returns a terminal
// state, Result returns the protocol output or the failure.
type Handler struct {
	mtx sync.Mutex

	Log zerolog.Logger

	queue *queue

	done    bool
	outChan chan *Message

	r      round.Session
	result interface{}
	err    error

	// received tracks the point-to-point message expected from each party
	// in the current round, receivedBroadcast the broadcast one. A nil map
	// means the current round does not expect that kind of message.
	received          map[party.ID]bool
	receivedBroadcast map[party.ID]bool
}

// NewHandler starts a protocol execution from the given StartFunc.
//
// sessionID must be unique for each execution, for example a counter or a
// common random string agreed upon out of band.
func NewHandler(create StartFunc, sessionID []byte) (*Handler, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create first round: %w", err)
	}

	h := &Handler{
		queue:   &queue{},
		outChan: make(chan *Message, int(r.FinalRoundNumber())*(r.N()+1)),
		r:       r,
	}
	h.Log = zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel).With().
		Str("protocol", r.ProtocolID()).
		Uint16("party", uint16(r.SelfID())).
		Logger()
	h.Log.Info().Int("round", int(r.Number())).Msg("start")

	h.mtx.Lock()
	defer h.mtx.Unlock()
	if err = h.finishRound(); err != nil {
		return nil, err
	}
	return h, nil
}

// Listen returns the channel of outgoing messages. Messages with Broadcast
// set must be delivered to all participants over a reliable broadcast.
// The channel is closed once the protocol terminates.
func (h *Handler) Listen() <-chan *Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.outChan
}

// Result returns the protocol output once the execution completed, or the
// error which terminated it.
func (h *Handler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, ErrNotFinished
}

// Update delivers an incoming message to the protocol. It may be called
// concurrently, and advances to the next round once all expected messages
// have been received.
func (h *Handler) Update(msg *Message) error {
	h.mtx.Lock()
	defer func() {
		if h.err != nil {
			h.stop()
		}
		h.mtx.Unlock()
	}()

	if h.result != nil || h.err != nil || h.done {
		return h.err
	}

	if msg != nil {
		h.Log.Debug().Stringer("msg", msg).Msg("got new message")
		if err := h.validate(msg); err != nil {
			h.Log.Warn().Err(err).Stringer("msg", msg).Msg("failed to validate")
			return err
		}
		if err := h.handleMessage(msg); err != nil {
			h.Log.Error().Err(err).Stringer("msg", msg).Msg("failed to handle")
			return err
		}
	}

	if h.receivedAll() {
		if err := h.finishRound(); err != nil {
			h.Log.Error().Err(err).Msg("failed to finish round")
			return err
		}
	}

	return nil
}

// Stop aborts the execution, reporting the parties whose messages were
// still outstanding in the current round. It is intended to be called when
// a timeout expires.
func (h *Handler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.done || h.result != nil || h.err != nil {
		return
	}

	var missing []party.ID
	for _, id := range h.r.OtherPartyIDs() {
		if (h.received != nil && !h.received[id]) ||
			(h.receivedBroadcast != nil && !h.receivedBroadcast[id]) {
			missing = append(missing, id)
		}
	}
	h.err = Error{
		RoundNumber: h.r.Number(),
		Err:         fmt.Errorf("%w: %v", ErrUnresponsiveParties, missing),
	}
	h.stop()
}

func (h *Handler) validate(msg *Message) error {
	if msg.From == 0 || msg.Data == nil {
		return errors.New("protocol: message is malformed")
	}
	if !msg.IsFor(h.r.SelfID()) {
		return ErrMessageWrongDestination
	}
	if !bytes.Equal(h.r.SSID(), msg.SSID) {
		return ErrMessageWrongSSID
	}
	if msg.Protocol != h.r.ProtocolID() {
		return ErrMessageWrongProtocolID
	}
	if msg.RoundNumber > h.r.FinalRoundNumber() {
		return ErrMessageInvalidRoundNumber
	}
	if !h.r.PartyIDs().Contains(msg.From) {
		return ErrMessageUnknownSender
	}
	if msg.RoundNumber < h.r.Number() {
		return ErrMessageDuplicate
	}
	return nil
}

func (h *Handler) handleMessage(msg *Message) error {
	if msg.RoundNumber != h.r.Number() {
		h.Log.Debug().Uint16("from", uint16(msg.From)).Int("roundNumber", int(msg.RoundNumber)).Msg("queueing message for later round")
		h.queue.Store(msg)
		return nil
	}
	if msg.Broadcast {
		return h.handleBroadcastMessage(msg)
	}
	return h.handleP2PMessage(msg)
}

func (h *Handler) handleBroadcastMessage(msg *Message) error {
	br, ok := h.r.(round.BroadcastRound)
	if !ok || h.receivedBroadcast == nil {
		return ErrMessageNotP2P
	}
	if h.receivedBroadcast[msg.From] {
		return ErrMessageDuplicate
	}
	h.receivedBroadcast[msg.From] = true

	content := br.BroadcastContent()
	content.Reset()
	if err := msg.unmarshalContent(content); err != nil {
		return h.abort(err, msg.From)
	}
	if err := br.StoreBroadcastMessage(round.Message{
		From:      msg.From,
		Broadcast: true,
		Content:   content,
	}); err != nil {
		return h.abort(err, msg.From)
	}
	return nil
}

func (h *Handler) handleP2PMessage(msg *Message) error {
	if h.received == nil {
		return ErrMessageNotBroadcast
	}
	if h.received[msg.From] {
		return ErrMessageDuplicate
	}
	h.received[msg.From] = true

	content := h.r.MessageContent()
	if err := msg.unmarshalContent(content); err != nil {
		return h.abort(err, msg.From)
	}
	roundMsg := round.Message{
		From:    msg.From,
		To:      msg.To,
		Content: content,
	}
	if err := h.r.VerifyMessage(roundMsg); err != nil {
		return h.abort(err, msg.From)
	}
	if err := h.r.StoreMessage(roundMsg); err != nil {
		return h.abort(err, msg.From)
	}
	return nil
}

func (h *Handler) finishRound() error {
	roundOut := make(chan *round.Message, h.r.N()+1)
	nextRound, err := h.r.Finalize(roundOut)
	close(roundOut)
	if err != nil {
		return h.abort(err, 0)
	}
	if err = h.flush(roundOut); err != nil {
		return h.abort(err, 0)
	}

	switch R := nextRound.(type) {
	case *round.Output:
		h.result = R.Result
		h.r = nil
		if h.result == nil && h.err == nil {
			h.err = Error{
				RoundNumber: 0,
				Err:         errors.New("failed without error before reaching the final round"),
			}
		}
		h.stop()
		return h.err
	case *round.Abort:
		err := h.abortWithCulprits(R.Err, R.Culprits)
		h.stop()
		return err
	case nil:
		return h.abort(errors.New("protocol: round did not return a session"), 0)
	}

	h.r = nextRound
	h.Log.Info().Int("round", int(h.r.Number())).Msg("round advanced")
	h.resetReceived()

	for _, msg := range h.queue.Get(h.r.Number()) {
		if err := h.handleMessage(msg); err != nil {
			return err
		}
	}

	if h.receivedAll() {
		return h.finishRound()
	}
	return nil
}

// flush converts the round messages produced during Finalize into wire
// messages on the out channel.
func (h *Handler) flush(roundOut <-chan *round.Message) error {
	for rm := range roundOut {
		data, err := cbor.Marshal(rm.Content)
		if err != nil {
			return fmt.Errorf("protocol: failed to marshal content: %w", err)
		}
		h.outChan <- &Message{
			SSID:        h.r.SSID(),
			From:        rm.From,
			To:          rm.To,
			Protocol:    h.r.ProtocolID(),
			RoundNumber: rm.Content.RoundNumber(),
			Data:        data,
			Broadcast:   rm.Broadcast,
		}
	}
	return nil
}

// resetReceived installs the expectations for the current round.
func (h *Handler) resetReceived() {
	h.received = nil
	h.receivedBroadcast = nil

	if h.r.MessageContent() != nil {
		h.received = make(map[party.ID]bool, h.r.N())
		for _, id := range h.r.OtherPartyIDs() {
			h.received[id] = false
		}
	}
	if br, ok := h.r.(round.BroadcastRound); ok && br.BroadcastContent() != nil {
		h.receivedBroadcast = make(map[party.ID]bool, h.r.N())
		for _, id := range h.r.OtherPartyIDs() {
			h.receivedBroadcast[id] = false
		}
	}
}

func (h *Handler) receivedAll() bool {
	for _, ok := range h.received {
		if !ok {
			return false
		}
	}
	for _, ok := range h.receivedBroadcast {
		if !ok {
			return false
		}
	}
	return true
}

// abort records a failure attributed to culprit, or to no one when the
// offender cannot be identified.
func (h *Handler) abort(err error, culprit party.ID) error {
	roundErr := Error{
		RoundNumber: h.roundNumber(),
		Culprit:     culprit,
		Err:         err,
	}
	if h.err == nil {
		h.err = roundErr
	}
	return roundErr
}

func (h *Handler) abortWithCulprits(err error, culprits []party.ID) error {
	var culprit party.ID
	if len(culprits) > 0 {
		culprit = culprits[0]
	}
	if len(culprits) > 1 {
		err = fmt.Errorf("%w (culprits: %v)", err, culprits)
	}
	return h.abort(err, culprit)
}

func (h *Handler) roundNumber() round.Number {
	if h.r == nil {
		return 0
	}
	return h.r.Number()
}

func (h *Handler) stop() {
	if !h.done {
		h.done = true
		close(h.outChan)
	}
}
