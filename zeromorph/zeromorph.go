// Package zeromorph implements the multilinear-to-univariate commitment
// opening protocol: the claimed evaluations of the committed polynomials at
// the sumcheck point are batched into a single univariate opening problem,
// reduced through multilinear quotients, and settled with one KZG opening.
//
// Multilinear evaluation vectors are committed as univariate coefficient
// vectors. Under that embedding a shifted polynomial is the base polynomial
// divided by X, which is exact because every to-be-shifted polynomial has a
// zero first entry.
package zeromorph

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/honk/polynomial"
	"github.com/consensys/honk/transcript"
)

var (
	// ErrBatchedClaimMismatch is returned when the claimed evaluations do not
	// match the batched polynomial. Like any invariant breach inside the
	// pipeline this is an upstream defect, not a recoverable condition.
	ErrBatchedClaimMismatch = errors.New("zeromorph: batched evaluation does not match claims")
)

// ChallengeNames returns the transcript challenge ids consumed by the opening
// protocol, in protocol order.
func ChallengeNames() []string {
	return []string{"ZM:rho", "ZM:y", "ZM:x", "ZM:z"}
}

// Open proves that the committed multilinears evaluate as claimed at u:
// unshifted polynomials open to evalsUnshifted[i] at u, to-be-shifted ones to
// evalsShifted[j] at u through their next-row view. It appends the quotient
// commitments and the final opening to the transcript.
func Open(
	ts *transcript.Transcript,
	pk kzg.ProvingKey,
	unshifted []polynomial.Multilinear,
	toBeShifted []polynomial.Multilinear,
	evalsUnshifted, evalsShifted []fr.Element,
	u []fr.Element,
) error {
	d := len(u)
	n := 1 << d

	rho, err := ts.Challenge("ZM:rho")
	if err != nil {
		return err
	}

	// batch all claims with powers of rho, unshifted first
	fBatched := make([]fr.Element, n)
	gBatched := make([]fr.Element, n)
	var claimed, rhoPow, t fr.Element
	rhoPow.SetOne()
	for i, f := range unshifted {
		for j := range f {
			t.Mul(&f[j], &rhoPow)
			fBatched[j].Add(&fBatched[j], &t)
		}
		t.Mul(&evalsUnshifted[i], &rhoPow)
		claimed.Add(&claimed, &t)
		rhoPow.Mul(&rhoPow, &rho)
	}
	for i, g := range toBeShifted {
		for j := range g {
			t.Mul(&g[j], &rhoPow)
			gBatched[j].Add(&gBatched[j], &t)
		}
		t.Mul(&evalsShifted[i], &rhoPow)
		claimed.Add(&claimed, &t)
		rhoPow.Mul(&rhoPow, &rho)
	}

	// F = fBatched + shift(gBatched); the shift is the division by X of the
	// committed form
	fPoly := make([]fr.Element, n)
	copy(fPoly, fBatched)
	for j := 0; j+1 < n; j++ {
		fPoly[j].Add(&fPoly[j], &gBatched[j+1])
	}

	quotients, v := multilinearQuotients(fPoly, u)
	if !v.Equal(&claimed) {
		return ErrBatchedClaimMismatch
	}

	// commit and send the multilinear quotients
	comQ := make([]kzg.Digest, d)
	var g errgroup.Group
	for k := 0; k < d; k++ {
		g.Go(func() error {
			var err error
			comQ[k], err = kzg.Commit(quotients[k], pk)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for k := 0; k < d; k++ {
		if err := ts.AppendPoint(fmt.Sprintf("ZM:C_q_%d", k), &comQ[k]); err != nil {
			return err
		}
	}

	y, err := ts.Challenge("ZM:y")
	if err != nil {
		return err
	}

	// degree-lifted batched quotient: qHat = sum_k y^k X^(n-2^k) q_k
	qHat := make([]fr.Element, n)
	var yPow fr.Element
	yPow.SetOne()
	for k := 0; k < d; k++ {
		offset := n - (1 << k)
		for j, q := range quotients[k] {
			t.Mul(&q, &yPow)
			qHat[offset+j].Add(&qHat[offset+j], &t)
		}
		yPow.Mul(&yPow, &y)
	}
	comQHat, err := kzg.Commit(qHat, pk)
	if err != nil {
		return err
	}
	if err := ts.AppendPoint("ZM:C_q", &comQHat); err != nil {
		return err
	}

	x, err := ts.Challenge("ZM:x")
	if err != nil {
		return err
	}
	z, err := ts.Challenge("ZM:z")
	if err != nil {
		return err
	}

	// Q = zeta_x + z*Z_x vanishes at x when every claim is correct:
	//   zeta_x = qHat - sum_k y^k x^(n-2^k) q_k            (degree check)
	//   Z_x    = x*fBatched + gBatched - v*x*phi_d(x)
	//            - x*sum_k (x^(2^k)*phi_{d-k-1}(x^(2^(k+1)))
	//                       - u_k*phi_{d-k}(x^(2^k))) * q_k (evaluation check)
	q := make([]fr.Element, n)
	copy(q, qHat)
	var zx fr.Element
	for j := 0; j < n; j++ {
		zx.Mul(&fBatched[j], &x)
		zx.Add(&zx, &gBatched[j])
		zx.Mul(&zx, &z)
		q[j].Add(&q[j], &zx)
	}
	var c fr.Element
	c.Mul(&v, &x)
	phiD := phi(x, d)
	c.Mul(&c, &phiD).Mul(&c, &z)
	q[0].Sub(&q[0], &c)

	xPows := squares(x, d+1) // x^(2^k) for k in [0..d]
	yPow.SetOne()
	for k := 0; k < d; k++ {
		// y^k x^(n-2^k) from the degree check, z*x*coeff_k from the identity
		var scalar fr.Element
		exp := big.NewInt(int64(n - (1 << k)))
		scalar.Exp(x, exp)
		scalar.Mul(&scalar, &yPow)

		ck := identityCoeff(xPows, u, d, k)
		ck.Mul(&ck, &x).Mul(&ck, &z)
		scalar.Add(&scalar, &ck)

		for j := range quotients[k] {
			t.Mul(&quotients[k][j], &scalar)
			q[j].Sub(&q[j], &t)
		}
		yPow.Mul(&yPow, &y)
	}

	pi, err := kzg.Open(q, x, pk)
	if err != nil {
		return err
	}
	if !pi.ClaimedValue.IsZero() {
		return ErrBatchedClaimMismatch
	}
	return ts.AppendPoint("ZM:PI", &pi.H)
}

// multilinearQuotients decomposes f - f(u) along the hypercube variables:
// f(X) - f(u) = sum_k (X_k - u_k) q_k(X_0..X_{k-1}). It returns the quotients
// (q_k has 2^k entries) and f(u).
func multilinearQuotients(f []fr.Element, u []fr.Element) ([][]fr.Element, fr.Element) {
	d := len(u)
	quotients := make([][]fr.Element, d)

	g := make([]fr.Element, len(f))
	copy(g, f)
	var t fr.Element
	for k := d - 1; k >= 0; k-- {
		half := 1 << k
		q := make([]fr.Element, half)
		for i := 0; i < half; i++ {
			q[i].Sub(&g[i+half], &g[i])
		}
		for i := 0; i < half; i++ {
			t.Mul(&q[i], &u[k])
			g[i].Add(&g[i], &t)
		}
		quotients[k] = q
		g = g[:half]
	}
	return quotients, g[0]
}

// identityCoeff returns x^(2^k)*phi_{d-k-1}(x^(2^(k+1))) - u_k*phi_{d-k}(x^(2^k)),
// the weight of q_k in the partially evaluated opening identity. xPows holds
// the repeated squares of x.
func identityCoeff(xPows []fr.Element, u []fr.Element, d, k int) fr.Element {
	var a, b fr.Element
	a = phi(xPows[k+1], d-k-1)
	a.Mul(&a, &xPows[k])
	b = phi(xPows[k], d-k)
	b.Mul(&b, &u[k])
	a.Sub(&a, &b)
	return a
}

// phi computes phi_m(t) = 1 + t + ... + t^(2^m - 1) = (t^(2^m) - 1)/(t - 1).
func phi(t fr.Element, m int) fr.Element {
	var one fr.Element
	one.SetOne()
	if t.IsOne() {
		// t is a transcript challenge; hitting one is vanishingly unlikely
		var r fr.Element
		r.SetUint64(1 << m)
		return r
	}
	num := t
	for i := 0; i < m; i++ {
		num.Square(&num)
	}
	num.Sub(&num, &one)
	var den fr.Element
	den.Sub(&t, &one)
	den.Inverse(&den)
	num.Mul(&num, &den)
	return num
}

// squares returns t^(2^k) for k in [0, count).
func squares(t fr.Element, count int) []fr.Element {
	s := make([]fr.Element, count)
	s[0] = t
	for k := 1; k < count; k++ {
		s[k].Square(&s[k-1])
	}
	return s
}
