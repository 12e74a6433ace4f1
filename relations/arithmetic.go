package relations

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Arithmetic enforces the gate equation
//
//	qM·wL·wR + qL·wL + qR·wR + qO·wO + qC = 0
//
// on every row.
type Arithmetic struct{}

func (Arithmetic) Name() string { return "arithmetic" }

func (Arithmetic) Degree() int { return 3 }

func (Arithmetic) NbSubRelations() int { return 1 }

func (Arithmetic) LinearlyIndependent(int) bool { return true }

func (Arithmetic) Columns() []Column {
	return []Column{QM, QL, QR, QO, QC, WL, WR, WO}
}

func (Arithmetic) Evaluate(row *Row, _ *Parameters, out []fr.Element) {
	var acc, t fr.Element

	acc.Mul(&row[WL], &row[WR]).Mul(&acc, &row[QM])
	t.Mul(&row[QL], &row[WL])
	acc.Add(&acc, &t)
	t.Mul(&row[QR], &row[WR])
	acc.Add(&acc, &t)
	t.Mul(&row[QO], &row[WO])
	acc.Add(&acc, &t)
	acc.Add(&acc, &row[QC])

	out[0] = acc
}
