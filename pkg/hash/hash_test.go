package hash

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainSeparation(t *testing.T) {
	data := []byte("payload")

	h1 := New()
	_ = h1.WriteAny(&BytesWithDomain{TheDomain: "A", Bytes: data})
	h2 := New()
	_ = h2.WriteAny(&BytesWithDomain{TheDomain: "B", Bytes: data})

	assert.False(t, bytes.Equal(h1.Sum(), h2.Sum()), "different domains must yield different digests")
}

func TestClone(t *testing.T) {
	h := New()
	_ = h.WriteAny(&BytesWithDomain{TheDomain: "Shared", Bytes: []byte("prefix")})

	h2 := h.Clone()
	base := h.Clone().Sum()
	require.True(t, bytes.Equal(base, h2.Clone().Sum()), "clones must agree before divergence")

	_ = h.WriteAny(&BytesWithDomain{TheDomain: "X", Bytes: []byte("one")})
	_ = h2.WriteAny(&BytesWithDomain{TheDomain: "X", Bytes: []byte("two")})
	assert.False(t, bytes.Equal(h.Sum(), h2.Sum()), "clones must diverge after different writes")
}

func TestWriteAnyOrderMatters(t *testing.T) {
	a := &BytesWithDomain{TheDomain: "A", Bytes: []byte("a")}
	b := &BytesWithDomain{TheDomain: "B", Bytes: []byte("b")}

	h1 := New()
	_ = h1.WriteAny(a, b)
	h2 := New()
	_ = h2.WriteAny(b, a)

	assert.False(t, bytes.Equal(h1.Sum(), h2.Sum()))
}

func TestCommitDecommit(t *testing.T) {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	data := &BytesWithDomain{TheDomain: "Secret", Bytes: secret}

	h := New()
	c, d, err := h.Clone().Commit(data)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.NoError(t, d.Validate())

	assert.True(t, h.Clone().Decommit(c, d, data), "honest decommitment must verify")

	other := &BytesWithDomain{TheDomain: "Secret", Bytes: []byte("different")}
	assert.False(t, h.Clone().Decommit(c, d, other), "decommitment to different data must fail")

	d2 := make([]byte, len(d))
	copy(d2, d)
	d2[0] ^= 1
	assert.False(t, h.Clone().Decommit(c, Decommitment(d2), data), "tampered decommitment must fail")
}

func TestCommitIsHiding(t *testing.T) {
	data := &BytesWithDomain{TheDomain: "Value", Bytes: []byte("same value")}

	c1, _, err := New().Commit(data)
	require.NoError(t, err)
	c2, _, err := New().Commit(data)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(c1, c2), "commitments to the same value must not repeat")
}
