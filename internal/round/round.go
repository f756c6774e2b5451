package round

// Round is the interface implemented by every round of a protocol.
//
// A round processes exactly one message from each other participant, then
// finalizes into the next round.
type Round interface {
	// VerifyMessage checks the content of an incoming message against the
	// rules of this round. The content can be cast to the type returned by
	// MessageContent without further checks.
	// It must not modify the round state, since it may run concurrently.
	VerifyMessage(msg Message) error

	// StoreMessage is called after VerifyMessage and saves the relevant
	// parts of the content for use during Finalize.
	StoreMessage(msg Message) error

	// Finalize is called once all expected messages for this round have
	// been stored. Messages for the next round are sent over out, which is
	// expected to be buffered with sufficient capacity.
	//
	// If a non-critical failure occurs, the same round may be returned so
	// the caller can retry. A protocol abort is signalled by returning an
	// *Abort session.
	Finalize(out chan<- *Message) (Session, error)

	// MessageContent returns an uninitialized message content for this
	// round, ready for unmarshalling. The first round returns nil.
	MessageContent() Content

	// Number is this round's position within the protocol, starting at 1.
	Number() Number
}

// BroadcastRound is implemented by rounds which expect a broadcast message
// in addition to, or instead of, point-to-point messages.
type BroadcastRound interface {
	Round

	// StoreBroadcastMessage saves the broadcast content from another party.
	// The content can be cast to the type returned by BroadcastContent.
	StoreBroadcastMessage(msg Message) error

	// BroadcastContent returns an uninitialized broadcast content for this
	// round, ready for unmarshalling.
	BroadcastContent() BroadcastContent
}
