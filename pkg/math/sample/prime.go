package sample

import (
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/pkg/pool"
)

// trialPrimes contains the first 128 odd prime numbers, used to quickly
// discard candidates before running expensive primality tests.
var trialPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23,
	29, 31, 37, 41, 43, 47, 53, 59,
	61, 67, 71, 73, 79, 83, 89, 97,
	101, 103, 107, 109, 113, 127, 131, 137,
	139, 149, 151, 157, 163, 167, 173, 179,
	181, 191, 193, 197, 199, 211, 223, 227,
	229, 233, 239, 241, 251, 257, 263, 269,
	271, 277, 281, 283, 293, 307, 311, 313,
	317, 331, 337, 347, 349, 353, 359, 367,
	373, 379, 383, 389, 397, 401, 409, 419,
	421, 431, 433, 439, 443, 449, 457, 461,
	463, 467, 479, 487, 491, 499, 503, 509,
	521, 523, 541, 547, 557, 563, 569, 571,
	577, 587, 593, 599, 601, 607, 613, 617,
	619, 631, 641, 643, 647, 653, 659, 661,
	673, 677, 683, 691, 701, 709, 719, 727,
	733, 739, 743, 751, 757, 761, 769, 773,
}

// potentialSafePrime generates a candidate safe prime of the given bit size.
//
// The candidate will have undergone trial division, but not the heavier
// primality tests like Miller-Rabin.
func potentialSafePrime(rand io.Reader, bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, errors.New("sample: prime size must be at least 2 bits")
	}

	// The number of significant bits in the last byte of our number.
	lastBits := uint(bits % 8)
	if lastBits == 0 {
		lastBits = 8
	}

	bytes := make([]byte, (bits+7)/8)
	p := new(big.Int)
	scratch := new(big.Int)
	// A remainder per trial prime, adjusted with deltas instead of
	// recomputing the remainder of the full candidate.
	mods := make([]uint64, len(trialPrimes))

	for {
		if _, err := io.ReadFull(rand, bytes); err != nil {
			return nil, err
		}

		// Clear bits in the first byte to make sure the candidate has a size <= bits.
		bytes[0] &= uint8(int(1<<lastBits) - 1)
		// Setting the top two bits, rather than just the top bit, means that
		// when two of these values are multiplied together, the result isn't
		// ever one bit short.
		if lastBits >= 2 {
			bytes[0] |= 0b11 << (lastBits - 2)
		} else {
			bytes[0] |= 1
			if len(bytes) > 1 {
				bytes[1] |= 0b1000_0000
			}
		}
		// Safe primes are always 3 mod 4, so we set the least significant two
		// bits, and make sure to keep them that way.
		bytes[len(bytes)-1] |= 3

		p.SetBytes(bytes)

		for i := 0; i < len(trialPrimes); i++ {
			scratch.SetUint64(trialPrimes[i])
			mods[i] = scratch.Mod(p, scratch).Uint64()
		}
		// This is a heuristic cap used by OpenSSL.
		maxDelta := (uint64(1) << 32) - trialPrimes[len(trialPrimes)-1]
	NextDelta:
		// We add 4 each iteration, to remain 3 mod 4.
		for delta := uint64(0); delta < maxDelta; delta += 4 {
			for i := 0; i < len(trialPrimes); i++ {
				remainder := (mods[i] + delta) % trialPrimes[i]
				// If x = 0 mod p, then x is certainly not prime.
				// If x = 1 mod p, then (x - 1) / 2 = 0 mod p, so x cannot be
				// a safe prime either.
				if remainder <= 1 {
					continue NextDelta
				}
			}
			scratch.SetUint64(delta)
			p.Add(p, scratch)

			// Adding delta may have made the number one bit too long.
			if p.BitLen() == bits {
				return p, nil
			}
		}
	}
}

// blumPrimalityIterations is the number of Miller-Rabin iterations used when
// checking primality. 20 is the same number that Go uses internally.
const blumPrimalityIterations = 20

func tryBlumPrime(rand io.Reader) *saferith.Nat {
	p, err := potentialSafePrime(rand, params.BitsBlumPrime)
	if err != nil {
		return nil
	}
	// For p to be safe, we need q := (p - 1) / 2 to also be prime.
	q := new(big.Int).Sub(p, big.NewInt(1))
	q.Rsh(q, 1)
	// p is likely to be prime already, so we first do the other check,
	// which is more likely to fail.
	if !q.ProbablyPrime(blumPrimalityIterations) {
		return nil
	}
	if !p.ProbablyPrime(blumPrimalityIterations) {
		return nil
	}
	return new(saferith.Nat).SetBig(p, p.BitLen())
}

// Paillier generates the necessary integers for a Paillier key pair.
// p, q are safe primes ((p - 1) / 2 is also prime), and Blum primes (p = 3 mod 4).
func Paillier(rand io.Reader, pl *pool.Pool) (p, q *saferith.Nat) {
	reader := pool.NewLockedReader(rand)
	results := pl.Search(2, func() interface{} {
		candidate := tryBlumPrime(reader)
		// Unfortunately, we can't directly return the candidate,
		// because of how interfaces work.
		if candidate == nil {
			return nil
		}
		return candidate
	})
	p, q = results[0].(*saferith.Nat), results[1].(*saferith.Nat)
	return
}
