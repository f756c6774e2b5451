package party

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
)

func TestIDBytesRoundTrip(t *testing.T) {
	for _, id := range []ID{1, 42, MaxID} {
		assert.Equal(t, id, FromBytes(id.Bytes()))
	}
}

func TestIDScalar(t *testing.T) {
	group := curve.Secp256k1{}
	assert.False(t, ID(1).Scalar(group).IsZero())
	assert.False(t, ID(1).Scalar(group).Equal(ID(2).Scalar(group)))
}

func TestIDSliceSortedAndValid(t *testing.T) {
	ids := NewIDSlice([]ID{5, 2, 9, 1})
	assert.Equal(t, IDSlice{1, 2, 5, 9}, ids)
	assert.True(t, ids.Valid())

	assert.False(t, NewIDSlice([]ID{1, 1, 2}).Valid(), "duplicates are invalid")
	assert.False(t, NewIDSlice([]ID{0, 1}).Valid(), "the zero ID is invalid")
}

func TestIDSliceSearch(t *testing.T) {
	ids := NewIDSlice([]ID{2, 4, 6})

	idx, ok := ids.Search(4)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = ids.Search(5)
	assert.False(t, ok)

	assert.True(t, ids.Contains(2, 6))
	assert.False(t, ids.Contains(2, 3))
	assert.Equal(t, 2, ids.GetIndex(6))
	assert.Equal(t, -1, ids.GetIndex(7))
}

func TestIDSliceRemove(t *testing.T) {
	ids := NewIDSlice([]ID{1, 2, 3})
	removed := ids.Remove(2)
	assert.Equal(t, IDSlice{1, 3}, removed)
	assert.Equal(t, IDSlice{1, 2, 3}, ids, "the original slice must be unchanged")
}

func TestPointMapMarshalRoundTrip(t *testing.T) {
	group := curve.Edwards25519{}
	points := map[ID]curve.Point{
		1: sample.Scalar(rand.Reader, group).ActOnBase(),
		2: sample.Scalar(rand.Reader, group).ActOnBase(),
		3: sample.Scalar(rand.Reader, group).ActOnBase(),
	}
	m := NewPointMap(points)

	data, err := m.MarshalBinary()
	require.NoError(t, err)

	m2 := EmptyPointMap(group)
	require.NoError(t, m2.UnmarshalBinary(data))

	require.Len(t, m2.Points, len(points))
	for id, point := range points {
		assert.True(t, point.Equal(m2.Points[id]))
	}
	assert.Equal(t, IDSlice{1, 2, 3}, m2.IDs())
}
