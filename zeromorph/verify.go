package zeromorph

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
)

// VerifyFinal checks the reduced opening claim against the commitments.
// Commitments and claimed evaluations come in the order the prover batched
// them; the challenges and quotient commitments are the ones exchanged
// through the transcript.
//
// It reconstructs the commitment to zeta_x + z*Z_x by a multi-scalar
// multiplication over the received commitments and verifies the final KZG
// opening of zero at x.
func VerifyFinal(
	vk kzg.VerifyingKey,
	comsUnshifted, comsToBeShifted []kzg.Digest,
	evalsUnshifted, evalsShifted []fr.Element,
	u []fr.Element,
	rho, y, x, z fr.Element,
	comQ []kzg.Digest, comQHat kzg.Digest, pi curve.G1Affine,
) error {
	d := len(u)
	n := 1 << d

	// batched claimed evaluation
	var v, rhoPow, t fr.Element
	rhoPow.SetOne()
	scalars := make([]fr.Element, 0, len(comsUnshifted)+len(comsToBeShifted)+d+2)
	points := make([]kzg.Digest, 0, cap(scalars))

	// x*z*rho^i for the unshifted polynomials of x*fBatched
	var zx fr.Element
	zx.Mul(&z, &x)
	for i := range comsUnshifted {
		t.Mul(&evalsUnshifted[i], &rhoPow)
		v.Add(&v, &t)
		t.Mul(&rhoPow, &zx)
		scalars = append(scalars, t)
		points = append(points, comsUnshifted[i])
		rhoPow.Mul(&rhoPow, &rho)
	}
	// z*rho^j for the to-be-shifted polynomials of gBatched
	for j := range comsToBeShifted {
		t.Mul(&evalsShifted[j], &rhoPow)
		v.Add(&v, &t)
		t.Mul(&rhoPow, &z)
		scalars = append(scalars, t)
		points = append(points, comsToBeShifted[j])
		rhoPow.Mul(&rhoPow, &rho)
	}

	// the batched degree-lifted quotient enters with weight one
	var one fr.Element
	one.SetOne()
	scalars = append(scalars, one)
	points = append(points, comQHat)

	// -(y^k x^(n-2^k) + z*x*coeff_k) for each multilinear quotient
	xPows := squares(x, d+1)
	var yPow fr.Element
	yPow.SetOne()
	for k := 0; k < d; k++ {
		var s fr.Element
		exp := big.NewInt(int64(n - (1 << k)))
		s.Exp(x, exp)
		s.Mul(&s, &yPow)

		ck := identityCoeff(xPows, u, d, k)
		ck.Mul(&ck, &zx)
		s.Add(&s, &ck).Neg(&s)

		scalars = append(scalars, s)
		points = append(points, comQ[k])
		yPow.Mul(&yPow, &y)
	}

	// -z*v*x*phi_d(x) on the generator
	var c fr.Element
	phiD := phi(x, d)
	c.Mul(&v, &zx).Mul(&c, &phiD).Neg(&c)
	scalars = append(scalars, c)
	points = append(points, vk.G1)

	var com kzg.Digest
	if _, err := com.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return err
	}

	proof := kzg.OpeningProof{H: pi} // claimed value zero
	return kzg.Verify(&com, &proof, x, vk)
}
