package polynomial

import (
	"errors"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
)

// Exponent represents a polynomial F(X) whose coefficients belong to a group 𝔾:
// F(X) = [f(X)]⋅G for some polynomial f with scalar coefficients.
//
// Exchanging an Exponent commits each party to its secret sharing polynomial
// without revealing the underlying scalars.
type Exponent struct {
	group        curve.Curve
	coefficients []curve.Point
}

// NewPolynomialExponent generates F(X) = [f(X)]⋅G from the given polynomial f.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{
		group:        polynomial.group,
		coefficients: make([]curve.Point, len(polynomial.coefficients)),
	}
	for i := range p.coefficients {
		p.coefficients[i] = polynomial.coefficients[i].ActOnBase()
	}
	return p
}

// EmptyExponent returns an Exponent for the given group, ready for unmarshalling.
func EmptyExponent(group curve.Curve) *Exponent {
	return &Exponent{group: group}
}

// Evaluate returns F(x), computed with a Horner-style evaluation.
func (p *Exponent) Evaluate(x curve.Scalar) curve.Point {
	result := p.group.NewPoint()
	// Bₙ₋₁ = [x]Bₙ + Aₙ₋₁
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = x.Act(result).Add(p.coefficients[i])
	}
	return result
}

// Degree is the highest power of the Exponent.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

func (p *Exponent) add(q *Exponent) error {
	if len(p.coefficients) != len(q.coefficients) {
		return errors.New("polynomial: q is not the same length as p")
	}
	for i := 0; i < len(p.coefficients); i++ {
		p.coefficients[i] = p.coefficients[i].Add(q.coefficients[i])
	}
	return nil
}

// Sum creates a new Exponent by summing a slice of existing ones.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	summed := polynomials[0].Copy()
	for j := 1; j < len(polynomials); j++ {
		if err := summed.add(polynomials[j]); err != nil {
			return nil, err
		}
	}
	return summed, nil
}

// Copy returns an independent copy of the Exponent.
func (p *Exponent) Copy() *Exponent {
	q := &Exponent{
		group:        p.group,
		coefficients: make([]curve.Point, len(p.coefficients)),
	}
	for i := range p.coefficients {
		q.coefficients[i] = p.group.NewPoint().Add(p.coefficients[i])
	}
	return q
}

// Equal returns true if both exponents have identical coefficients.
func (p *Exponent) Equal(other *Exponent) bool {
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := 0; i < len(p.coefficients); i++ {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// Constant returns a copy of the constant coefficient of the polynomial.
func (p *Exponent) Constant() curve.Point {
	return p.group.NewPoint().Add(p.coefficients[0])
}

// WriteTo implements io.WriterTo and is used within the hash.Hash function.
func (p *Exponent) WriteTo(w io.Writer) (int64, error) {
	var nAll int64
	for _, c := range p.coefficients {
		data, err := c.MarshalBinary()
		if err != nil {
			return nAll, err
		}
		n, err := w.Write(data)
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Exponent) Domain() string {
	return "Exponent"
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Exponent) MarshalBinary() ([]byte, error) {
	coefficients := make([][]byte, len(p.coefficients))
	var err error
	for i, c := range p.coefficients {
		coefficients[i], err = c.MarshalBinary()
		if err != nil {
			return nil, err
		}
	}
	return cbor.Marshal(coefficients)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The group must have been set beforehand with EmptyExponent.
func (p *Exponent) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return errors.New("polynomial: unmarshal into Exponent with unknown group")
	}
	var coefficients [][]byte
	if err := cbor.Unmarshal(data, &coefficients); err != nil {
		return err
	}
	p.coefficients = make([]curve.Point, len(coefficients))
	for i, c := range coefficients {
		point := p.group.NewPoint()
		if err := point.UnmarshalBinary(c); err != nil {
			return err
		}
		p.coefficients[i] = point
	}
	return nil
}
