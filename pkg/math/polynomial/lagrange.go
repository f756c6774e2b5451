package polynomial

import (
	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// Lagrange returns the Lagrange coefficients at 0 for all parties in the
// interpolation domain.
func Lagrange(group curve.Curve, interpolationDomain []party.ID) map[party.ID]curve.Scalar {
	return LagrangeFor(group, interpolationDomain, interpolationDomain...)
}

// LagrangeFor returns the Lagrange coefficients at 0 for all parties in the
// given subset.
func LagrangeFor(group curve.Curve, interpolationDomain []party.ID, subset ...party.ID) map[party.ID]curve.Scalar {
	// numerator = x₀ ⋅ … ⋅ xₖ
	scalars, numerator := getScalarsAndNumerator(group, interpolationDomain)

	coefficients := make(map[party.ID]curve.Scalar, len(subset))
	for _, j := range subset {
		coefficients[j] = lagrange(group, scalars, numerator, j)
	}
	return coefficients
}

// LagrangeSingle returns the Lagrange coefficient at 0 of the party with
// index j.
func LagrangeSingle(group curve.Curve, interpolationDomain []party.ID, j party.ID) curve.Scalar {
	return LagrangeFor(group, interpolationDomain, j)[j]
}

func getScalarsAndNumerator(group curve.Curve, interpolationDomain []party.ID) (map[party.ID]curve.Scalar, curve.Scalar) {
	// numerator = x₀ ⋅ … ⋅ xₖ
	numerator := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	scalars := make(map[party.ID]curve.Scalar, len(interpolationDomain))
	for _, id := range interpolationDomain {
		xi := id.Scalar(group)
		scalars[id] = xi
		numerator.Mul(xi)
	}
	return scalars, numerator
}

// lagrange returns the Lagrange coefficient ℓⱼ(0), for the party with index j.
//
//	ℓⱼ(0) =      x₀ ⋅ … ⋅ xₖ      / (xⱼ ⋅ ∏ⱼ≠ᵢ (xᵢ - xⱼ))
//	      = [ ∏ⱼ≠ᵢ xᵢ ⋅ (xᵢ - xⱼ) ]⁻¹ ⋅ x₀ ⋅ … ⋅ xₖ / xⱼ
func lagrange(group curve.Curve, interpolationDomain map[party.ID]curve.Scalar, numerator curve.Scalar, j party.ID) curve.Scalar {
	xJ := interpolationDomain[j]
	tmp := group.NewScalar()

	// denominator = xⱼ ⋅ ∏ ᵢ≠ⱼ (xᵢ - xⱼ)
	denominator := group.NewScalar().Set(xJ)
	for i, xI := range interpolationDomain {
		if i == j {
			continue
		}
		// tmp = xᵢ - xⱼ
		tmp.Set(xJ).Negate().Add(xI)
		// denominator *= xᵢ - xⱼ
		denominator.Mul(tmp)
	}

	// lJ = numerator ⋅ denominator⁻¹
	return denominator.Invert().Mul(numerator)
}
