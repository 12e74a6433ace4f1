package relations

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Set is a named polynomial set: one evaluation-form view per column, shared
// by reference with the canonical storage owner (the proving key for
// precomputed columns, the session for witness columns). Shifted views are
// never stored; they are read off their base column.
type Set [NbColumns][]fr.Element

// Row loads row i of the set into row, reading shifted views from their base
// column with the zero-fill boundary.
func (s *Set) Row(i int, row *Row) {
	for c := 0; c < NbColumns; c++ {
		if base, ok := BaseColumn(Column(c)); ok {
			col := s[base]
			if col == nil {
				continue
			}
			if i+1 < len(col) {
				row[c] = col[i+1]
			} else {
				row[c] = fr.Element{}
			}
			continue
		}
		if s[c] == nil {
			row[c] = fr.Element{}
			continue
		}
		row[c] = s[c][i]
	}
}

// CheckSet verifies that every column required by the relation set is
// present in s with n rows. It fails with ErrMalformedRelationInput
// otherwise; shifted views are satisfied by their base column.
func CheckSet(s *Set, rels []Relation, n int) error {
	for _, rel := range rels {
		for _, c := range rel.Columns() {
			storage := c
			if base, ok := BaseColumn(c); ok {
				storage = base
			}
			if s[storage] == nil {
				return fmt.Errorf("%w: relation %q: missing column %q", ErrMalformedRelationInput, rel.Name(), c)
			}
			if len(s[storage]) != n {
				return fmt.Errorf("%w: relation %q: column %q has %d rows, want %d",
					ErrMalformedRelationInput, rel.Name(), c, len(s[storage]), n)
			}
		}
	}
	return nil
}

// Evaluator evaluates a relation set and combines the subrelation residuals
// with powers of the separation challenge.
type Evaluator struct {
	relations []Relation
	indep     []bool // linear independence flag per global subrelation index
	columns   []Column
	maxDegree int
}

// NewEvaluator builds an evaluator over the given relation set.
func NewEvaluator(rels []Relation) *Evaluator {
	e := &Evaluator{relations: rels}
	var active [NbColumns]bool
	for _, rel := range rels {
		if d := rel.Degree(); d > e.maxDegree {
			e.maxDegree = d
		}
		for i := 0; i < rel.NbSubRelations(); i++ {
			e.indep = append(e.indep, rel.LinearlyIndependent(i))
		}
		for _, c := range rel.Columns() {
			active[c] = true
		}
	}
	for c := 0; c < NbColumns; c++ {
		if active[c] {
			e.columns = append(e.columns, Column(c))
		}
	}
	return e
}

// Relations returns the evaluated relation set.
func (e *Evaluator) Relations() []Relation { return e.relations }

// NbSubRelations returns the total number of subrelations across the set.
func (e *Evaluator) NbSubRelations() int { return len(e.indep) }

// MaxDegree returns the largest relation degree bound in the set.
func (e *Evaluator) MaxDegree() int { return e.maxDegree }

// Columns returns the columns read by the relation set, shifted views
// included, in canonical order.
func (e *Evaluator) Columns() []Column { return e.columns }

// Evaluate writes the residual of every subrelation at the given row into
// out, which has length NbSubRelations, in global subrelation order.
func (e *Evaluator) Evaluate(row *Row, params *Parameters, out []fr.Element) {
	off := 0
	for _, rel := range e.relations {
		rel.Evaluate(row, params, out[off:off+rel.NbSubRelations()])
		off += rel.NbSubRelations()
	}
}

// EvaluateRow loads row i from the set and evaluates the relation set there.
func (e *Evaluator) EvaluateRow(s *Set, i int, params *Parameters, row *Row, out []fr.Element) {
	s.Row(i, row)
	e.Evaluate(row, params, out)
}

// AlphaPowers returns the per-subrelation weights 1, α, α², ...
func (e *Evaluator) AlphaPowers(alpha fr.Element) []fr.Element {
	if len(e.indep) == 0 {
		return nil
	}
	pows := make([]fr.Element, len(e.indep))
	pows[0].SetOne()
	for j := 1; j < len(pows); j++ {
		pows[j].Mul(&pows[j-1], &alpha)
	}
	return pows
}

// Combine folds a residual vector with the subrelation weights, keeping the
// row-vanishing (independent) and sum-only (dependent) contributions apart:
// only the former is scaled by the zero-check weighting.
func (e *Evaluator) Combine(residuals, alphaPowers []fr.Element) (indep, dep fr.Element) {
	var t fr.Element
	for j := range residuals {
		t.Mul(&residuals[j], &alphaPowers[j])
		if e.indep[j] {
			indep.Add(&indep, &t)
		} else {
			dep.Add(&dep, &t)
		}
	}
	return indep, dep
}
