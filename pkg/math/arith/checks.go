package arith

import (
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/params"
)

// IsValidNatModN checks that ints are all in the range [1, …, n-1] and
// are coprime to n.
func IsValidNatModN(n *saferith.Modulus, ints ...*saferith.Nat) bool {
	for _, i := range ints {
		if i == nil {
			return false
		}
		if _, _, lt := i.CmpMod(n); lt != 1 {
			return false
		}
		if i.IsUnit(n) != 1 {
			return false
		}
	}
	return true
}

// IsValidIntModN checks that ints are all in the range [-(n-1)/2, …, (n-1)/2]
// and are coprime to n.
func IsValidIntModN(n *saferith.Modulus, ints ...*saferith.Int) bool {
	for _, i := range ints {
		if i == nil {
			return false
		}
		if i.CheckInRange(n) != 1 {
			return false
		}
		if i.Abs().IsUnit(n) != 1 {
			return false
		}
	}
	return true
}

// IsValidBigModN checks that ints are all in the range [1, …, n-1] and
// are coprime to n.
func IsValidBigModN(n *big.Int, ints ...*big.Int) bool {
	var gcd big.Int
	one := big.NewInt(1)
	for _, i := range ints {
		if i == nil {
			return false
		}
		if i.Sign() != 1 {
			return false
		}
		if i.Cmp(n) != -1 {
			return false
		}
		gcd.GCD(nil, nil, i, n)
		if gcd.Cmp(one) != 0 {
			return false
		}
	}
	return true
}

// IsInIntervalLEps returns true if n is in the interval ±2ˡ⁺ᵉ.
func IsInIntervalLEps(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.Abs().TrueLen() <= params.LPlusEpsilon
}

// IsInIntervalLPrimeEps returns true if n is in the interval ±2ˡ'⁺ᵉ.
func IsInIntervalLPrimeEps(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.Abs().TrueLen() <= params.LPrimePlusEpsilon
}
