package test

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/protocol"
)

// Rule describes hooks applied to a protocol execution, used to emulate a
// misbehaving party.
type Rule interface {
	// ModifyBefore modifies r before r.Finalize() is called.
	ModifyBefore(r round.Session)
	// ModifyAfter modifies rNext, the round returned by r.Finalize().
	ModifyAfter(rNext round.Session)
	// ModifyContent modifies content for the message delivered in rNext.
	ModifyContent(rNext round.Session, to party.ID, content round.Content)
}

// Rounds executes one round for all sessions and delivers the produced
// messages, going through the wire format. It returns true once all
// sessions have reached a terminal state.
func Rounds(rounds []round.Session, rule Rule) (error, bool) {
	var (
		err       error
		roundType reflect.Type
		errGroup  errgroup.Group
		N         = len(rounds)
		out       = make(chan *round.Message, N*(N+1))
	)

	if roundType, err = checkAllRoundsSame(rounds); err != nil {
		return err, false
	}

	for id := range rounds {
		idx := id
		r := rounds[idx]
		errGroup.Go(func() error {
			var rNew round.Session
			var finalizeErr error
			if rule != nil {
				rule.ModifyBefore(r)
				outFake := make(chan *round.Message, N+1)
				rNew, finalizeErr = r.Finalize(outFake)
				close(outFake)
				rule.ModifyAfter(rNew)
				for msg := range outFake {
					rule.ModifyContent(rNew, msg.To, msg.Content)
					out <- msg
				}
			} else {
				rNew, finalizeErr = r.Finalize(out)
			}

			if finalizeErr != nil {
				return finalizeErr
			}

			if rNew != nil {
				rounds[idx] = rNew
			}
			return nil
		})
	}
	if err = errGroup.Wait(); err != nil {
		return err, false
	}
	close(out)

	if roundType, err = checkAllRoundsSame(rounds); err != nil {
		return err, false
	}
	if roundType == reflect.TypeOf(&round.Output{}) || roundType == reflect.TypeOf(&round.Abort{}) {
		return nil, true
	}

	for msg := range out {
		msgBytes, err := cbor.Marshal(msg.Content)
		if err != nil {
			return err, false
		}
		for _, r := range rounds {
			m := *msg
			r := r
			if msg.From == r.SelfID() || msg.Content.RoundNumber() != r.Number() {
				continue
			}
			errGroup.Go(func() error {
				// Failures are attributed to the sender, like the handler
				// does during a live execution.
				culpritErr := func(err error) error {
					return protocol.Error{RoundNumber: r.Number(), Culprit: m.From, Err: err}
				}
				if m.Broadcast {
					b, ok := r.(round.BroadcastRound)
					if !ok {
						return errors.New("broadcast message but not broadcast round")
					}
					m.Content = b.BroadcastContent()
					if err := cbor.Unmarshal(msgBytes, m.Content); err != nil {
						return err
					}
					if err := b.StoreBroadcastMessage(m); err != nil {
						return culpritErr(err)
					}
					return nil
				}

				m.Content = r.MessageContent()
				if err := cbor.Unmarshal(msgBytes, m.Content); err != nil {
					return err
				}
				if m.To == 0 || m.To == r.SelfID() {
					if err := r.VerifyMessage(m); err != nil {
						return culpritErr(err)
					}
					if err := r.StoreMessage(m); err != nil {
						return culpritErr(err)
					}
				}
				return nil
			})
		}
		if err = errGroup.Wait(); err != nil {
			return err, false
		}
	}

	return nil, false
}

func checkAllRoundsSame(rounds []round.Session) (reflect.Type, error) {
	var t reflect.Type
	for _, r := range rounds {
		t2 := reflect.TypeOf(r)
		if t == nil {
			t = t2
		} else if t != t2 {
			return t, fmt.Errorf("two different rounds: %s %s", t, t2)
		}
	}
	return t, nil
}
