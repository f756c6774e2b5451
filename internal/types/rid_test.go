package types

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/internal/params"
)

func TestRIDValidate(t *testing.T) {
	rid, err := NewRID(rand.Reader)
	require.NoError(t, err)
	assert.NoError(t, rid.Validate())

	assert.Error(t, EmptyRID().Validate(), "the zero RID is invalid")
	assert.Error(t, RID(nil).Validate(), "a nil RID is invalid")
	assert.Error(t, RID(make([]byte, params.SecBytes-1)).Validate(), "a short RID is invalid")
}

func TestRIDXOR(t *testing.T) {
	a, err := NewRID(rand.Reader)
	require.NoError(t, err)
	b, err := NewRID(rand.Reader)
	require.NoError(t, err)

	combined := a.Copy()
	combined.XOR(b)

	// XOR-ing in the same contribution again must undo it.
	combined.XOR(b)
	assert.Equal(t, a, combined)
}

func TestRIDCopyIsIndependent(t *testing.T) {
	a, err := NewRID(rand.Reader)
	require.NoError(t, err)
	b := a.Copy()
	b[0] ^= 0xff
	assert.NotEqual(t, a[0], b[0])
}
