package pedersen

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"

	"github.com/quorumkey/quorumkey/internal/params"
	"github.com/quorumkey/quorumkey/pkg/math/arith"
)

// Error is a string-based error type for Pedersen parameter validation.
type Error string

const (
	ErrNilFields    Error = "contains nil field"
	ErrSEqualT      Error = "S cannot be equal to T"
	ErrNotValidModN Error = "S and T must be in [1,…,N-1] and coprime to N"
)

func (e Error) Error() string {
	return fmt.Sprintf("pedersen: %s", string(e))
}

// Parameters are the public auxiliary values (N, s, t) used to commit to
// integers during range proofs, with s = tᵏ (mod N) for a secret k.
type Parameters struct {
	n    *arith.Modulus
	s, t *saferith.Nat
}

// New returns a new set of Pedersen parameters. The factorization of n, if
// present, accelerates the commitment exponentiations.
func New(n *arith.Modulus, s, t *saferith.Nat) *Parameters {
	return &Parameters{
		s: s,
		t: t,
		n: n,
	}
}

// Validate returns an error if the parameters are malformed.
func (p Parameters) Validate() error {
	if p.n == nil || p.s == nil || p.t == nil {
		return ErrNilFields
	}
	if !arith.IsValidNatModN(p.n.Modulus, p.s, p.t) {
		return ErrNotValidModN
	}
	if _, eq, _ := p.s.Cmp(p.t); eq == 1 {
		return ErrSEqualT
	}
	return nil
}

// N returns the plain modulus N.
func (p Parameters) N() *saferith.Modulus { return p.n.Modulus }

// NArith returns the modulus wrapper which may carry a CRT acceleration.
func (p Parameters) NArith() *arith.Modulus { return p.n }

// S returns the group element s.
func (p Parameters) S() *saferith.Nat { return p.s }

// T returns the group element t.
func (p Parameters) T() *saferith.Nat { return p.t }

// Commit computes sˣ tʸ (mod N).
func (p Parameters) Commit(x, y *saferith.Int) *saferith.Nat {
	sx := p.n.ExpI(p.s, x)
	ty := p.n.ExpI(p.t, y)

	result := sx.ModMul(sx, ty, p.n.Modulus)
	return result
}

// Verify returns true if sᵃ tᵇ ≡ S Tᵉ (mod N).
func (p Parameters) Verify(a, b, e *saferith.Int, S, T *saferith.Nat) bool {
	if a == nil || b == nil || e == nil || S == nil || T == nil {
		return false
	}
	nMod := p.n.Modulus
	if !arith.IsValidNatModN(nMod, S, T) {
		return false
	}

	lhs := p.Commit(a, b)

	te := p.n.ExpI(T, e)
	rhs := te.ModMul(te, S, nMod)

	_, eq, _ := lhs.Cmp(rhs)
	return eq == 1
}

// WriteTo implements io.WriterTo, writing N ∥ s ∥ t, each padded to the
// byte length of N.
func (p Parameters) WriteTo(w io.Writer) (int64, error) {
	if p.n == nil || p.s == nil || p.t == nil {
		return 0, io.ErrUnexpectedEOF
	}
	nAll := int64(0)
	buf := make([]byte, params.BytesIntModN)

	// write N, s, t
	for _, i := range []*saferith.Nat{p.n.Nat(), p.s, p.t} {
		i.FillBytes(buf)
		n, err := w.Write(buf)
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (Parameters) Domain() string {
	return "Pedersen Parameters"
}

type marshalled struct {
	N, S, T []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p Parameters) MarshalBinary() ([]byte, error) {
	if p.n == nil || p.s == nil || p.t == nil {
		return nil, ErrNilFields
	}
	return cbor.Marshal(marshalled{
		N: p.n.Bytes(),
		S: p.s.Bytes(),
		T: p.t.Bytes(),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	var m marshalled
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	if m.N == nil || m.S == nil || m.T == nil {
		return ErrNilFields
	}
	nNat := new(saferith.Nat).SetBytes(m.N)
	if nNat.EqZero() == 1 {
		return errors.New("pedersen: modulus is zero")
	}
	p.n = arith.ModulusFromN(saferith.ModulusFromNat(nNat))
	p.s = new(saferith.Nat).SetBytes(m.S)
	p.t = new(saferith.Nat).SetBytes(m.T)
	return nil
}
