package types

import (
	"errors"
	"fmt"
	"io"

	"github.com/quorumkey/quorumkey/internal/params"
)

// RID is a session randomizer whose size equals the security parameter.
// All parties contribute to it during key generation by XOR-ing their
// individual contributions. An all-zero or empty RID is invalid.
type RID []byte

// EmptyRID returns a zeroed-out RID of the correct length.
func EmptyRID() RID {
	return make(RID, params.SecBytes)
}

// NewRID samples a fresh RID from r.
func NewRID(r io.Reader) (RID, error) {
	rid := EmptyRID()
	_, err := io.ReadFull(r, rid)
	return rid, err
}

// XOR modifies the receiver by taking the XOR with the argument.
func (rid RID) XOR(otherRID RID) {
	for b := 0; b < params.SecBytes; b++ {
		rid[b] ^= otherRID[b]
	}
}

// WriteTo implements io.WriterTo.
func (rid RID) WriteTo(w io.Writer) (int64, error) {
	if rid == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(rid[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (RID) Domain() string { return "RID" }

// Validate ensures the RID is the correct length and is not identically 0.
func (rid RID) Validate() error {
	if l := len(rid); l != params.SecBytes {
		return fmt.Errorf("rid: incorrect length (got %d, expected %d)", l, params.SecBytes)
	}
	for _, b := range rid {
		if b != 0 {
			return nil
		}
	}
	return errors.New("rid: rid is 0")
}

// Copy returns an independent copy of the RID.
func (rid RID) Copy() RID {
	other := EmptyRID()
	copy(other, rid)
	return other
}
