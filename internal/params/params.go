package params

const (
	// SecParam is the main security parameter κ, in bits.
	SecParam = 256
	SecBytes = SecParam / 8

	// StatParam is the statistical security parameter for the binary-challenge
	// proofs (Paillier-Blum modulus, Pedersen parameters).
	StatParam = 80

	// HashBytes is the size of a commitment produced by pkg/hash.
	HashBytes = 32

	L                 = 1 * SecParam     // = 256
	LPrime            = 5 * SecParam     // = 1280
	Epsilon           = 2 * SecParam     // = 512
	LPlusEpsilon      = L + Epsilon      // = 768
	LPrimePlusEpsilon = LPrime + Epsilon // = 1792

	BitsIntModN  = 8 * SecParam    // = 2048
	BytesIntModN = BitsIntModN / 8 // = 256

	BitsBlumPrime = 4 * SecParam      // = 1024
	BitsPaillier  = 2 * BitsBlumPrime // = 2048

	BytesPaillier   = BitsPaillier / 8  // = 256
	BytesCiphertext = 2 * BytesPaillier // = 512
)
