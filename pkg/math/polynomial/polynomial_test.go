package polynomial

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/party"
)

var group = curve.Secp256k1{}

func TestEvaluateConstant(t *testing.T) {
	secret := sample.Scalar(rand.Reader, group)
	f := NewPolynomial(group, 3, secret, rand.Reader)
	assert.True(t, f.Constant().Equal(secret))

	// A nil constant is interpreted as 0.
	zero := NewPolynomial(group, 3, nil, rand.Reader)
	assert.True(t, zero.Constant().IsZero())
}

func TestEvaluateAtZeroPanics(t *testing.T) {
	f := NewPolynomial(group, 2, sample.Scalar(rand.Reader, group), rand.Reader)
	assert.Panics(t, func() {
		f.Evaluate(group.NewScalar())
	})
}

func TestExponentMatchesPolynomial(t *testing.T) {
	secret := sample.Scalar(rand.Reader, group)
	f := NewPolynomial(group, 4, secret, rand.Reader)
	F := NewPolynomialExponent(f)

	require.Equal(t, 4, F.Degree())
	assert.True(t, F.Constant().Equal(secret.ActOnBase()))

	for _, id := range []party.ID{1, 2, 5, 42} {
		x := id.Scalar(group)
		assert.True(t, f.Evaluate(x).ActOnBase().Equal(F.Evaluate(x)),
			"exponent evaluation must agree with the scalar polynomial at %d", id)
	}
}

func TestExponentSum(t *testing.T) {
	n := 3
	polynomials := make([]*Polynomial, n)
	exponents := make([]*Exponent, n)
	for i := range polynomials {
		polynomials[i] = NewPolynomial(group, 2, sample.Scalar(rand.Reader, group), rand.Reader)
		exponents[i] = NewPolynomialExponent(polynomials[i])
	}

	summed, err := Sum(exponents)
	require.NoError(t, err)

	x := party.ID(7).Scalar(group)
	expected := group.NewScalar()
	for _, f := range polynomials {
		expected.Add(f.Evaluate(x))
	}
	assert.True(t, summed.Evaluate(x).Equal(expected.ActOnBase()))

	// Mismatched degrees must be rejected.
	short := NewPolynomialExponent(NewPolynomial(group, 1, nil, rand.Reader))
	_, err = Sum([]*Exponent{exponents[0], short})
	assert.Error(t, err)
}

func TestExponentMarshalRoundTrip(t *testing.T) {
	f := NewPolynomial(group, 3, sample.Scalar(rand.Reader, group), rand.Reader)
	F := NewPolynomialExponent(f)

	data, err := F.MarshalBinary()
	require.NoError(t, err)

	F2 := EmptyExponent(group)
	require.NoError(t, F2.UnmarshalBinary(data))
	assert.True(t, F.Equal(F2))
}

func TestLagrangeInterpolation(t *testing.T) {
	threshold := 2
	ids := party.NewIDSlice([]party.ID{1, 2, 3, 4, 5})

	secret := sample.Scalar(rand.Reader, group)
	f := NewPolynomial(group, threshold, secret, rand.Reader)

	// Any t+1 shares must interpolate back to the secret at 0.
	subset := []party.ID{2, 4, 5}
	coefficients := LagrangeFor(group, subset, subset...)
	reconstructed := group.NewScalar()
	for _, id := range subset {
		share := f.Evaluate(id.Scalar(group))
		reconstructed.Add(coefficients[id].Mul(share))
	}
	assert.True(t, reconstructed.Equal(secret))

	// The coefficients over the full domain must sum the same way.
	all := Lagrange(group, ids)
	full := group.NewScalar()
	for _, id := range ids {
		share := f.Evaluate(id.Scalar(group))
		full.Add(all[id].Mul(share))
	}
	assert.True(t, full.Equal(secret))
}

func TestLagrangeSingle(t *testing.T) {
	domain := []party.ID{1, 3, 9}
	all := Lagrange(group, domain)
	single := LagrangeSingle(group, domain, 3)
	assert.True(t, all[3].Equal(single))
}
