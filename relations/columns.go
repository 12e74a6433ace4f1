package relations

// Column identifies one polynomial of the fixed, circuit-shape-defined column
// set. The enum order is canonical: commitment rounds and opening claims walk
// the columns in this order.
type Column int

const (
	// precomputed columns, fixed per circuit shape
	QM Column = iota
	QL
	QR
	QO
	QC
	QLookup
	QTable
	Table
	Sigma1
	Sigma2
	Sigma3
	ID1
	ID2
	ID3
	LagrangeFirst
	LagrangeLast

	// witness columns, committed during proving
	WL
	WR
	WO
	LookupReadCounts
	ZPerm
	LookupInverses

	// shifted views, never stored
	ZPermShift

	NbColumns int = iota
)

var columnNames = [NbColumns]string{
	QM:               "q_m",
	QL:               "q_l",
	QR:               "q_r",
	QO:               "q_o",
	QC:               "q_c",
	QLookup:          "q_lookup",
	QTable:           "q_table",
	Table:            "table",
	Sigma1:           "sigma_1",
	Sigma2:           "sigma_2",
	Sigma3:           "sigma_3",
	ID1:              "id_1",
	ID2:              "id_2",
	ID3:              "id_3",
	LagrangeFirst:    "lagrange_first",
	LagrangeLast:     "lagrange_last",
	WL:               "w_l",
	WR:               "w_r",
	WO:               "w_o",
	LookupReadCounts: "lookup_read_counts",
	ZPerm:            "z_perm",
	LookupInverses:   "lookup_inverses",
	ZPermShift:       "z_perm_shift",
}

var columnsByName map[string]Column

func init() {
	columnsByName = make(map[string]Column, NbColumns)
	for c, name := range columnNames {
		columnsByName[name] = Column(c)
	}
}

func (c Column) String() string {
	if int(c) < 0 || int(c) >= NbColumns {
		return "invalid"
	}
	return columnNames[c]
}

// ColumnByName returns the column with the given name; the boolean reports
// whether the name belongs to the column set.
func ColumnByName(name string) (Column, bool) {
	c, ok := columnsByName[name]
	return c, ok
}

// lookupColumns take part in the protocol only when the circuit declares a
// lookup table.
var lookupColumns = map[Column]bool{
	QLookup:          true,
	QTable:           true,
	Table:            true,
	LookupReadCounts: true,
	LookupInverses:   true,
}

// shiftedBase maps each shifted view to the column it is derived from.
var shiftedBase = map[Column]Column{
	ZPermShift: ZPerm,
}

// BaseColumn returns the column a shifted view is derived from; ok is false
// when c is not a shifted view.
func BaseColumn(c Column) (base Column, ok bool) {
	base, ok = shiftedBase[c]
	return
}

// PrecomputedColumns returns the columns owned by the proving key, in
// canonical order. withLookup selects whether the lookup half of the column
// set is active.
func PrecomputedColumns(withLookup bool) []Column {
	var cols []Column
	for c := QM; c <= LagrangeLast; c++ {
		if !withLookup && lookupColumns[c] {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// WitnessColumns returns the columns committed during proving, in canonical
// (round) order.
func WitnessColumns(withLookup bool) []Column {
	var cols []Column
	for c := WL; c <= LookupInverses; c++ {
		if !withLookup && lookupColumns[c] {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// UnshiftedColumns returns every committed or precomputed column, in the
// order the opening protocol batches their claims.
func UnshiftedColumns(withLookup bool) []Column {
	return append(PrecomputedColumns(withLookup), WitnessColumns(withLookup)...)
}

// ToBeShiftedColumns returns the committed columns that also carry a shifted
// evaluation claim, in batching order.
func ToBeShiftedColumns() []Column {
	return []Column{ZPerm}
}

// ShiftedColumns returns the shifted views, in the order matching
// ToBeShiftedColumns.
func ShiftedColumns() []Column {
	return []Column{ZPermShift}
}

// ActiveColumns returns every column taking part in the protocol, shifted
// views included, in canonical order.
func ActiveColumns(withLookup bool) []Column {
	cols := UnshiftedColumns(withLookup)
	return append(cols, ShiftedColumns()...)
}
