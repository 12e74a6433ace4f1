package relations

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Lookup enforces, through a logarithmic-derivative accumulator, that the wO
// value of every row with qLookup = 1 appears in the table column. Rows with
// qTable = 1 hold the table entries; lookupReadCounts records how many times
// each entry is read; lookupInverses holds 1/((wO+γ)(table+γ)) on rows taking
// part on either side, zero elsewhere. Two subrelations:
//
//	sub0: inv·(wO+γ)·(table+γ) − (qLookup + qTable − qLookup·qTable)
//	sub1: qLookup·inv·(table+γ) − counts·inv·(wO+γ)
//
// sub0 pins the inverses row by row. sub1 is linearly dependent: summed over
// the hypercube it equates Σ 1/(wO+γ) over reading rows with
// Σ counts/(table+γ) over table rows, which vanishes exactly when the read
// multiset is contained in the table.
type Lookup struct{}

func (Lookup) Name() string { return "lookup" }

func (Lookup) Degree() int { return 3 }

func (Lookup) NbSubRelations() int { return 2 }

func (Lookup) LinearlyIndependent(i int) bool { return i == 0 }

func (Lookup) Columns() []Column {
	return []Column{QLookup, QTable, Table, WO, LookupReadCounts, LookupInverses}
}

func (Lookup) Evaluate(row *Row, params *Parameters, out []fr.Element) {
	var read, write fr.Element
	read.Add(&row[WO], &params.Gamma)
	write.Add(&row[Table], &params.Gamma)

	// qLookup OR qTable, as a degree-2 polynomial over boolean selectors
	var hasInverse, t fr.Element
	t.Mul(&row[QLookup], &row[QTable])
	hasInverse.Add(&row[QLookup], &row[QTable]).Sub(&hasInverse, &t)

	out[0].Mul(&row[LookupInverses], &read).Mul(&out[0], &write)
	out[0].Sub(&out[0], &hasInverse)

	var lhs, rhs fr.Element
	lhs.Mul(&row[QLookup], &row[LookupInverses]).Mul(&lhs, &write)
	rhs.Mul(&row[LookupReadCounts], &row[LookupInverses]).Mul(&rhs, &read)
	out[1].Sub(&lhs, &rhs)
}
