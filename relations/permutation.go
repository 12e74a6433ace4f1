package relations

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Permutation enforces the copy constraints between the three wire columns
// through a running grand product: zPerm accumulates, row by row, the ratio
// of the identity-side terms to the sigma-side terms. Two subrelations:
//
//	sub0: (zPerm + Lfirst)·Π(wᵢ + β·idᵢ + γ) − (zPermShift + Llast·Δ)·Π(wᵢ + β·σᵢ + γ)
//	sub1: Llast·zPermShift
//
// zPerm carries a zero first entry (Lfirst supplies the initial one), which
// keeps it shiftable under the commitment embedding. sub0 telescopes the
// product across rows; at the last row it closes the argument against Δ.
type Permutation struct{}

func (Permutation) Name() string { return "permutation" }

func (Permutation) Degree() int { return 4 }

func (Permutation) NbSubRelations() int { return 2 }

func (Permutation) LinearlyIndependent(int) bool { return true }

func (Permutation) Columns() []Column {
	return []Column{
		WL, WR, WO,
		Sigma1, Sigma2, Sigma3,
		ID1, ID2, ID3,
		LagrangeFirst, LagrangeLast,
		ZPerm, ZPermShift,
	}
}

func (Permutation) Evaluate(row *Row, params *Parameters, out []fr.Element) {
	var num, den fr.Element
	num.SetOne()
	den.SetOne()

	wires := [3]Column{WL, WR, WO}
	ids := [3]Column{ID1, ID2, ID3}
	sigmas := [3]Column{Sigma1, Sigma2, Sigma3}

	var t fr.Element
	for j := 0; j < 3; j++ {
		t.Mul(&params.Beta, &row[ids[j]])
		t.Add(&t, &row[wires[j]]).Add(&t, &params.Gamma)
		num.Mul(&num, &t)

		t.Mul(&params.Beta, &row[sigmas[j]])
		t.Add(&t, &row[wires[j]]).Add(&t, &params.Gamma)
		den.Mul(&den, &t)
	}

	var lhs, rhs fr.Element
	lhs.Add(&row[ZPerm], &row[LagrangeFirst])
	lhs.Mul(&lhs, &num)

	rhs.Mul(&row[LagrangeLast], &params.PublicInputDelta)
	rhs.Add(&rhs, &row[ZPermShift])
	rhs.Mul(&rhs, &den)

	out[0].Sub(&lhs, &rhs)
	out[1].Mul(&row[LagrangeLast], &row[ZPermShift])
}
