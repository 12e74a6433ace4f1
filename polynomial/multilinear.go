// Package polynomial provides the dense multilinear and small univariate
// polynomial forms used by the prover pipeline.
package polynomial

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Multilinear is a multilinear polynomial in dense evaluation form over the
// boolean hypercube {0,1}^d: entry i is the evaluation at the point whose
// k-th coordinate is bit k of i. The length is always a power of two.
//
// Variable 0 is the least significant bit. This ordering matches the
// univariate embedding used by the commitment opening protocol, where the
// evaluation vector is committed as a univariate coefficient vector and
// folding variable 0 pairs even and odd coefficients.
type Multilinear []fr.Element

// Clone returns an owned copy of m.
func (m Multilinear) Clone() Multilinear {
	c := make(Multilinear, len(m))
	copy(c, m)
	return c
}

// Fold fixes variable 0 to r, halving the table in place:
// m'[i] = m[2i] + r·(m[2i+1] − m[2i]). It returns the halved slice.
func (m Multilinear) Fold(r fr.Element) Multilinear {
	half := len(m) / 2
	var t fr.Element
	for i := 0; i < half; i++ {
		t.Sub(&m[2*i+1], &m[2*i]).Mul(&t, &r)
		t.Add(&t, &m[2*i])
		m[i] = t
	}
	return m[:half]
}

// Evaluate returns m(u), u[k] being the value of variable k. m is left
// untouched.
func (m Multilinear) Evaluate(u []fr.Element) fr.Element {
	scratch := m.Clone()
	for _, r := range u {
		scratch = scratch.Fold(r)
	}
	return scratch[0]
}

// Shifted is a read-only next-row view of a multilinear polynomial: the value
// at row i is the base polynomial's value at row i+1. It does not own
// storage. The boundary convention is zero-fill: the value at the last row is
// the zero element, consistent with the univariate embedding where shifting
// divides the committed polynomial by X.
type Shifted struct {
	base Multilinear
}

// NewShifted returns the next-row view of m.
func NewShifted(m Multilinear) Shifted {
	return Shifted{base: m}
}

// Len returns the number of rows of the view.
func (s Shifted) Len() int { return len(s.base) }

// At returns the value at row i.
func (s Shifted) At(i int) fr.Element {
	if i+1 == len(s.base) {
		return fr.Element{}
	}
	return s.base[i+1]
}

// Materialize returns an owned evaluation table of the view, for use as a
// sumcheck working polynomial.
func (s Shifted) Materialize() Multilinear {
	c := make(Multilinear, len(s.base))
	copy(c, s.base[1:])
	return c
}
