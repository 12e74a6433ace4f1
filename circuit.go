package honk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Circuit describes the fixed shape of a proving session: the selector
// columns, the copy constraints between wire positions, and, optionally, a
// lookup table. It is produced by an external front end; this package only
// checks its consistency.
type Circuit struct {
	// N is the number of rows. Must be a power of two, at least two.
	N int

	// gate selectors, each of length N
	QM, QL, QR, QO, QC []fr.Element

	// CopyCycles lists the groups of wire positions constrained to carry
	// equal values. A position is column*N + row, with columns 0, 1, 2
	// standing for wL, wR, wO. Each position may appear in at most one
	// cycle.
	CopyCycles [][]int

	// Lookup gates. QLookup marks rows whose wO value must appear in the
	// table; QTable marks rows holding table entries; both are boolean
	// selectors of length N, Table holds the entry values. A nil Table
	// disables the lookup relation and its commitment rounds.
	QLookup, QTable, Table []fr.Element
}

// HasLookup reports whether the circuit carries a lookup table.
func (c *Circuit) HasLookup() bool { return c.Table != nil }

// Assignment is the witness of one proving session: the three wire columns,
// each of length N, populated by the external witness generator. Public
// inputs are bound into the transcript preamble.
type Assignment struct {
	WL, WR, WO []fr.Element

	PublicInputs []fr.Element
}
