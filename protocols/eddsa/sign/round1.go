package sign

import (
	"crypto/rand"

	"github.com/quorumkey/quorumkey/internal/round"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/protocols/eddsa/keygen"
)

// round1 samples the nonce pair and broadcasts its commitments.
type round1 struct {
	*round.Helper

	Config *keygen.Config
	// Message = m, the digest being signed.
	Message []byte
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	group := r.Group()

	// dᵢ is the hiding nonce, eᵢ the binding nonce. Both commitments are
	// published before any binding factor can be computed, so no party can
	// bias the joint nonce point.
	d := sample.Scalar(rand.Reader, group)
	e := sample.Scalar(rand.Reader, group)
	D := d.ActOnBase()
	E := e.ActOnBase()

	if err := r.BroadcastMessage(out, &broadcast2{D: D, E: E}); err != nil {
		return r, err
	}

	return &round2{
		round1: r,
		d:      d,
		e:      e,
		D:      map[party.ID]curve.Point{r.SelfID(): D},
		E:      map[party.ID]curve.Point{r.SelfID(): E},
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
