package polynomial

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Univariate is a low-degree univariate polynomial represented by its
// evaluations on the integer domain {0, 1, ..., len-1}. Sumcheck round
// polynomials are exchanged in this form.
type Univariate []fr.Element

// EvaluateAt interpolates the polynomial at x, using barycentric evaluation
// over the integer domain.
func (u Univariate) EvaluateAt(x fr.Element) fr.Element {
	n := len(u)

	// distances x - i; if x lies on the domain the stored evaluation is exact
	diffs := make([]fr.Element, n)
	var i64 fr.Element
	for i := 0; i < n; i++ {
		i64.SetUint64(uint64(i))
		diffs[i].Sub(&x, &i64)
		if diffs[i].IsZero() {
			return u[i]
		}
	}

	// full = Π (x - i)
	var full fr.Element
	full.SetOne()
	for i := 0; i < n; i++ {
		full.Mul(&full, &diffs[i])
	}

	// barycentric weights over {0..n-1}: 1 / (i! · (n-1-i)! · (-1)^(n-1-i))
	dens := make([]fr.Element, n)
	fact := factorials(n)
	for i := 0; i < n; i++ {
		dens[i].Mul(&fact[i], &fact[n-1-i])
		if (n-1-i)%2 == 1 {
			dens[i].Neg(&dens[i])
		}
		dens[i].Mul(&dens[i], &diffs[i])
	}
	dens = fr.BatchInvert(dens)

	var res, t fr.Element
	for i := 0; i < n; i++ {
		t.Mul(&u[i], &dens[i])
		res.Add(&res, &t)
	}
	res.Mul(&res, &full)
	return res
}

func factorials(n int) []fr.Element {
	fact := make([]fr.Element, n)
	fact[0].SetOne()
	var k fr.Element
	for i := 1; i < n; i++ {
		k.SetUint64(uint64(i))
		fact[i].Mul(&fact[i-1], &k)
	}
	return fact
}
