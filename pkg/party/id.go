package party

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
)

// ByteSize is the number of bytes required to store an ID.
const ByteSize = 2

// MaxID bounds the number of parties, and the maximum value an ID can take.
const MaxID = (1 << (ByteSize * 8)) - 1

// ID is the index of a participant. Valid IDs lie in [1, n], are unique
// within a session, and remain stable across all protocol runs for a given
// key. The zero value is not a valid ID.
type ID uint16

// Scalar returns the corresponding group scalar, used as the evaluation
// point of this party in all secret sharing polynomials.
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(uint64(id)))
}

// Bytes returns a big-endian representation of the ID.
func (id ID) Bytes() []byte {
	bytes := make([]byte, ByteSize)
	binary.BigEndian.PutUint16(bytes, uint16(id))
	return bytes
}

// String returns a base 10 representation of the ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// FromBytes reads the first party.ByteSize bytes from b and creates an ID from them.
func FromBytes(b []byte) ID {
	return ID(binary.BigEndian.Uint16(b))
}

// WriteTo implements io.WriterTo.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(id.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string { return "Party ID" }
