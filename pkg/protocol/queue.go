package protocol

import (
	"github.com/quorumkey/quorumkey/internal/round"
)

// queue holds messages which arrived before the round that consumes them.
type queue struct {
	messages map[round.Number][]*Message
}

// Store saves a message for a later round.
func (q *queue) Store(msg *Message) {
	if q.messages == nil {
		q.messages = make(map[round.Number][]*Message)
	}
	q.messages[msg.RoundNumber] = append(q.messages[msg.RoundNumber], msg)
}

// Get removes and returns all stored messages for the given round.
func (q *queue) Get(number round.Number) []*Message {
	if q.messages == nil {
		return nil
	}
	msgs := q.messages[number]
	delete(q.messages, number)
	return msgs
}
