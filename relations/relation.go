// Package relations defines the polynomial constraints of the proving system
// and their evaluation against a named polynomial set.
//
// A relation is a pure, fixed-degree function of one row of column values (or
// of an algebraic extension of a row during sumcheck). Each of its
// subrelation residuals must vanish on every row of a valid trace — or, for
// linearly dependent subrelations, sum to zero over the whole hypercube.
package relations

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrMalformedRelationInput is returned when a named polynomial required by
// the relation set is absent from the set or has the wrong length. This is a
// programming or setup defect, never retried.
var ErrMalformedRelationInput = errors.New("malformed relation input")

// Parameters carries the transcript challenges shared by all relations.
type Parameters struct {
	Beta  fr.Element
	Gamma fr.Element

	// PublicInputDelta is the expected excess of the permutation grand
	// product over the full trace; one when public inputs do not enter the
	// permutation argument.
	PublicInputDelta fr.Element
}

// NewParameters returns relation parameters for the given challenges, with
// the grand product delta set to one.
func NewParameters(beta, gamma fr.Element) Parameters {
	p := Parameters{Beta: beta, Gamma: gamma}
	p.PublicInputDelta.SetOne()
	return p
}

// Row holds the value of every column at one row of the trace, or its
// algebraic extension during sumcheck. Inactive columns stay zero.
type Row [NbColumns]fr.Element

// Relation is a named set of subrelations over the column values.
// Implementations are pure: Evaluate has no state and no side effects.
type Relation interface {
	Name() string

	// Degree is the maximum total degree of any subrelation residual in the
	// column values. It bounds the number of evaluation points a sumcheck
	// round polynomial needs for this relation.
	Degree() int

	NbSubRelations() int

	// LinearlyIndependent reports whether subrelation i must vanish on every
	// row. Dependent subrelations only need to sum to zero over the
	// hypercube and are not scaled by the zero-check weighting.
	LinearlyIndependent(i int) bool

	// Columns lists the columns the relation reads.
	Columns() []Column

	// Evaluate writes the residual of every subrelation at the given row
	// into out, which has length NbSubRelations.
	Evaluate(row *Row, params *Parameters, out []fr.Element)
}

// All returns the relation set of the proving system for the given circuit
// features, in canonical order. The global subrelation index, and hence the
// power of the separation challenge assigned to each subrelation, follows
// this order.
func All(withLookup bool) []Relation {
	rs := []Relation{Arithmetic{}, Permutation{}}
	if withLookup {
		rs = append(rs, Lookup{})
	}
	return rs
}
