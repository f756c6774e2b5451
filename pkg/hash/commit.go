package hash

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/quorumkey/quorumkey/internal/params"
)

type (
	// Commitment is the hash of a message and a random nonce.
	Commitment []byte
	// Decommitment is the random nonce which opens a Commitment.
	Decommitment []byte
)

// WriteTo implements io.WriterTo.
func (c Commitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (Commitment) Domain() string {
	return "Commitment"
}

// Validate returns an error if the commitment has the wrong length.
func (c Commitment) Validate() error {
	if l := len(c); l != params.HashBytes {
		return fmt.Errorf("commitment: incorrect length (got %d, expected %d)", l, params.HashBytes)
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (d Decommitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (Decommitment) Domain() string {
	return "Decommitment"
}

// Validate returns an error if the decommitment has the wrong length.
func (d Decommitment) Validate() error {
	if l := len(d); l != params.SecBytes {
		return fmt.Errorf("decommitment: incorrect length (got %d, expected %d)", l, params.SecBytes)
	}
	return nil
}

// Commit creates a commitment to data, returning a commitment hash and the
// decommitment string such that commitment = h(data, decommitment).
func (hash *Hash) Commit(data ...interface{}) (Commitment, Decommitment, error) {
	var err error
	decommitment := Decommitment(make([]byte, params.SecBytes))

	if _, err = rand.Read(decommitment); err != nil {
		return nil, nil, fmt.Errorf("hash.Commit: failed to generate decommitment: %w", err)
	}

	h := hash.Clone()

	for _, item := range data {
		if err = h.WriteAny(item); err != nil {
			return nil, nil, fmt.Errorf("hash.Commit: failed to write data: %w", err)
		}
	}
	_ = h.WriteAny(decommitment)

	commitment := make(Commitment, params.HashBytes)
	if _, err = io.ReadFull(h.Digest(), commitment); err != nil {
		return nil, nil, fmt.Errorf("hash.Commit: %w", err)
	}

	return commitment, decommitment, nil
}

// Decommit verifies that the commitment corresponds to the data and
// decommitment, such that commitment = h(data, decommitment).
func (hash *Hash) Decommit(c Commitment, d Decommitment, data ...interface{}) bool {
	var err error
	if err = c.Validate(); err != nil {
		return false
	}
	if err = d.Validate(); err != nil {
		return false
	}

	h := hash.Clone()

	for _, item := range data {
		if err = h.WriteAny(item); err != nil {
			return false
		}
	}
	_ = h.WriteAny(d)

	computedCommitment := make([]byte, params.HashBytes)
	if _, err = io.ReadFull(h.Digest(), computedCommitment); err != nil {
		return false
	}

	return bytes.Equal(computedCommitment, c)
}
