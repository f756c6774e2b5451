package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a sorted slice of IDs, without duplicates.
type IDSlice []ID

// NewIDSlice returns a sorted copy of the given IDs.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := IDSlice(partyIDs).Copy()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Valid returns true if the slice is sorted, contains no duplicates,
// and contains no zero ID.
func (partyIDs IDSlice) Valid() bool {
	for i := range partyIDs {
		if partyIDs[i] == 0 {
			return false
		}
		if i > 0 && partyIDs[i-1] >= partyIDs[i] {
			return false
		}
	}
	return true
}

// Copy returns an identical copy of the receiver.
func (partyIDs IDSlice) Copy() IDSlice {
	a := make(IDSlice, len(partyIDs))
	copy(a, partyIDs)
	return a
}

// Search returns the index of id in partyIDs, and whether it was found.
// Assumes the slice is sorted.
func (partyIDs IDSlice) Search(id ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= id })
	if index >= 0 && index < len(partyIDs) && partyIDs[index] == id {
		return index, true
	}
	return 0, false
}

// Contains returns true if partyIDs contains all the given ids.
func (partyIDs IDSlice) Contains(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := partyIDs.Search(id); !ok {
			return false
		}
	}
	return true
}

// GetIndex returns the index of id in partyIDs, or -1 if it is absent.
func (partyIDs IDSlice) GetIndex(id ID) int {
	if idx, ok := partyIDs.Search(id); ok {
		return idx
	}
	return -1
}

// Remove returns a new slice with id removed. The original is not modified.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(partyIDs))
	for _, otherID := range partyIDs {
		if otherID != id {
			out = append(out, otherID)
		}
	}
	return out
}

// Len returns the number of parties in the slice.
func (partyIDs IDSlice) Len() int { return len(partyIDs) }

// WriteTo implements io.WriterTo and is used within the hash.Hash function.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	lengthBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(lengthBytes, uint64(len(partyIDs)))
	nAll, err := w.Write(lengthBytes)
	if err != nil {
		return int64(nAll), err
	}
	for _, id := range partyIDs {
		n, err := w.Write(id.Bytes())
		nAll += n
		if err != nil {
			return int64(nAll), err
		}
	}
	return int64(nAll), nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string { return "IDSlice" }
