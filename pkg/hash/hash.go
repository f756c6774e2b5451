package hash

import (
	"encoding"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"

	"github.com/quorumkey/quorumkey/internal/params"
)

// DigestLengthBytes is the length of a full digest, in bytes.
const DigestLengthBytes = params.SecBytes * 2 // 64

// Hash is the hash function used for commitments, challenges, and binding
// protocol data to a session. Internally it wraps BLAKE3, but any hash
// function with an easily extendable output would work as well.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct, with the given initial data written to it.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, returning what is
// essentially a stream of pseudo-random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current
// hash state. If a different length is required, use
// io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// writeWithDomain writes the domain string and data to w, with length
// prefixes to ensure unambiguous parsing.
func writeWithDomain(w io.Writer, data WriterToWithDomain) error {
	domain := data.Domain()

	// Write out the domain, with a length prefix.
	sizeBuf := make([]byte, 8)
	writeSize := func(size int64) error {
		for i := 0; i < 8; i++ {
			sizeBuf[i] = byte(size >> (56 - (i << 3)))
		}
		_, err := w.Write(sizeBuf)
		return err
	}
	if err := writeSize(int64(len(domain))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(domain)); err != nil {
		return err
	}
	// We don't know the length of the data beforehand, so write it to a
	// buffer first.
	size, err := data.WriteTo(io.Discard)
	if err != nil {
		return err
	}
	if err := writeSize(size); err != nil {
		return err
	}
	_, err = data.WriteTo(w)
	return err
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - *saferith.Nat, *saferith.Int, *saferith.Modulus
//   - WriterToWithDomain
//   - encoding.BinaryMarshaler (curve scalars and points, among others)
//
// This function applies its own domain separation for the first two types.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var err error
		switch t := d.(type) {
		case []byte:
			err = writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "[]byte",
				Bytes:     t,
			})
		case *saferith.Nat:
			err = writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "Nat",
				Bytes:     t.Bytes(),
			})
		case *saferith.Int:
			// Prefix the absolute value with the sign, since Int has no
			// unambiguous byte serialization of its own.
			bytes := append([]byte{byte(t.IsNegative())}, t.Abs().Bytes()...)
			err = writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "Int",
				Bytes:     bytes,
			})
		case *saferith.Modulus:
			err = writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "Modulus",
				Bytes:     t.Bytes(),
			})
		case WriterToWithDomain:
			err = writeWithDomain(hash.h, t)
		case encoding.BinaryMarshaler:
			var data []byte
			data, err = t.MarshalBinary()
			if err == nil {
				err = writeWithDomain(hash.h, &BytesWithDomain{
					TheDomain: "BinaryMarshaler",
					Bytes:     data,
				})
			}
		default:
			panic(fmt.Sprintf("hash.Hash: unsupported type: %T", d))
		}
		if err != nil {
			return fmt.Errorf("hash.Hash: %w", err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
