package polynomial

import (
	"io"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ, with coefficients in
// the scalar field of a curve.
type Polynomial struct {
	group        curve.Curve
	coefficients []curve.Scalar
}

// NewPolynomial generates a Polynomial f(X) = secret + a₁⋅X + … + aₜ⋅Xᵗ,
// with random coefficients and degree t.
//
// If constant is nil, it is interpreted as 0.
func NewPolynomial(group curve.Curve, degree int, constant curve.Scalar, rand io.Reader) *Polynomial {
	polynomial := &Polynomial{
		group:        group,
		coefficients: make([]curve.Scalar, degree+1),
	}

	if constant == nil {
		constant = group.NewScalar()
	}
	polynomial.coefficients[0] = constant

	for i := 1; i <= degree; i++ {
		polynomial.coefficients[i] = sample.Scalar(rand, group)
	}

	return polynomial
}

// Evaluate evaluates the polynomial at the given index, using Horner's method.
//
// Evaluating at 0 would return the secret, so we panic to avoid leaking it
// through a mistaken party index.
func (p *Polynomial) Evaluate(index curve.Scalar) curve.Scalar {
	if index.IsZero() {
		panic("polynomial: attempt to leak secret")
	}

	result := p.group.NewScalar()
	// bₙ₋₁ = bₙ⋅x + aₙ₋₁
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result.Mul(index).Add(p.coefficients[i])
	}
	return result
}

// Constant returns a copy of the constant coefficient of the polynomial.
func (p *Polynomial) Constant() curve.Scalar {
	return p.group.NewScalar().Set(p.coefficients[0])
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() uint32 {
	return uint32(len(p.coefficients)) - 1
}
