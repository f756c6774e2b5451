package round

import "errors"

var (
	// ErrInvalidContent is returned when a message payload does not have the
	// type expected by the current round.
	ErrInvalidContent = errors.New("round: message content is invalid")

	// ErrNilFields is returned when a message payload misses required fields.
	ErrNilFields = errors.New("round: message contains nil fields")
)
