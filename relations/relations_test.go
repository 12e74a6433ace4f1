package relations

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func elems(vs ...uint64) []fr.Element {
	es := make([]fr.Element, len(vs))
	for i, v := range vs {
		es[i].SetUint64(v)
	}
	return es
}

// satisfiedSet builds a 4-row trace satisfying the full relation set: one
// addition gate, identity copy constraints and, when withLookup is set, a
// two-entry table read once.
func satisfiedSet(t *testing.T, withLookup bool, params *Parameters) (*Set, int) {
	t.Helper()
	const n = 4

	var set Set
	set[QM] = elems(0, 0, 0, 0)
	set[QL] = elems(1, 0, 0, 0)
	set[QR] = elems(1, 0, 0, 0)
	set[QC] = elems(0, 0, 0, 0)
	qo := elems(1, 0, 0, 0)
	qo[0].Neg(&qo[0])
	set[QO] = qo

	// 2 + 3 = 5 on row 0
	set[WL] = elems(2, 0, 0, 0)
	set[WR] = elems(3, 0, 0, 0)
	set[WO] = elems(5, 0, 0, 9)

	// identity permutation: sigma = id
	for j, c := range []Column{ID1, ID2, ID3} {
		col := make([]fr.Element, n)
		for i := 0; i < n; i++ {
			col[i].SetUint64(uint64(j*n + i))
		}
		set[c] = col
		set[[]Column{Sigma1, Sigma2, Sigma3}[j]] = col
	}

	set[LagrangeFirst] = elems(1, 0, 0, 0)
	set[LagrangeLast] = elems(0, 0, 0, 1)

	// identity permutation: every per-row ratio is one
	set[ZPerm] = elems(0, 1, 1, 1)

	if !withLookup {
		return &set, n
	}

	// rows 1, 2 hold the table {5, 9}; row 3 reads 9
	set[QTable] = elems(0, 1, 1, 0)
	set[Table] = elems(0, 5, 9, 0)
	set[QLookup] = elems(0, 0, 0, 1)
	set[LookupReadCounts] = elems(0, 0, 1, 0)

	inv := make([]fr.Element, n)
	var t1, t2 fr.Element
	for i := 0; i < n; i++ {
		if set[QTable][i].IsZero() && set[QLookup][i].IsZero() {
			continue
		}
		t1.Add(&set[WO][i], &params.Gamma)
		t2.Add(&set[Table][i], &params.Gamma)
		inv[i].Mul(&t1, &t2).Inverse(&inv[i])
	}
	set[LookupInverses] = inv

	return &set, n
}

func testParameters() Parameters {
	var beta, gamma fr.Element
	beta.SetUint64(7)
	gamma.SetUint64(13)
	return NewParameters(beta, gamma)
}

func TestResidualsVanish(t *testing.T) {
	for _, withLookup := range []bool{false, true} {
		name := "plain"
		if withLookup {
			name = "lookup"
		}
		t.Run(name, func(t *testing.T) {
			params := testParameters()
			set, n := satisfiedSet(t, withLookup, &params)
			ev := NewEvaluator(All(withLookup))
			require.NoError(t, CheckSet(set, ev.Relations(), n))

			sums := make([]fr.Element, ev.NbSubRelations())
			residuals := make([]fr.Element, ev.NbSubRelations())
			var row Row
			for i := 0; i < n; i++ {
				ev.EvaluateRow(set, i, &params, &row, residuals)
				sub := 0
				for _, rel := range ev.Relations() {
					for j := 0; j < rel.NbSubRelations(); j++ {
						if rel.LinearlyIndependent(j) {
							require.True(t, residuals[sub].IsZero(),
								"relation %s subrelation %d at row %d", rel.Name(), j, i)
						} else {
							sums[sub].Add(&sums[sub], &residuals[sub])
						}
						sub++
					}
				}
			}
			for sub := range sums {
				require.True(t, sums[sub].IsZero(), "subrelation %d does not sum to zero", sub)
			}
		})
	}
}

func TestPerturbedWitnessDetected(t *testing.T) {
	params := testParameters()
	set, n := satisfiedSet(t, false, &params)
	set[WO][0].SetUint64(6) // gate says 2 + 3 = 6

	ev := NewEvaluator(All(false))
	residuals := make([]fr.Element, ev.NbSubRelations())
	var row Row
	violated := false
	for i := 0; i < n; i++ {
		ev.EvaluateRow(set, i, &params, &row, residuals)
		for sub := range residuals {
			if !residuals[sub].IsZero() {
				violated = true
			}
		}
	}
	require.True(t, violated)
}

func TestCheckSet(t *testing.T) {
	params := testParameters()
	set, n := satisfiedSet(t, false, &params)
	rels := All(false)

	require.NoError(t, CheckSet(set, rels, n))

	t.Run("missing column", func(t *testing.T) {
		bad := *set
		bad[QM] = nil
		err := CheckSet(&bad, rels, n)
		require.ErrorIs(t, err, ErrMalformedRelationInput)
	})

	t.Run("wrong length", func(t *testing.T) {
		bad := *set
		bad[WL] = bad[WL][:n-1]
		err := CheckSet(&bad, rels, n)
		require.ErrorIs(t, err, ErrMalformedRelationInput)
	})

	t.Run("shifted view satisfied by base column", func(t *testing.T) {
		// ZPermShift is never stored; its base being present suffices
		require.Nil(t, set[ZPermShift])
		require.NoError(t, CheckSet(set, rels, n))
	})
}

func TestRowShiftBoundary(t *testing.T) {
	params := testParameters()
	set, n := satisfiedSet(t, false, &params)

	var row Row
	set.Row(n-1, &row)
	require.True(t, row[ZPermShift].IsZero(), "shift must zero-fill past the last row")

	set.Row(0, &row)
	require.True(t, row[ZPermShift].Equal(&set[ZPerm][1]))
}

func TestCombineSeparatesDependentTerms(t *testing.T) {
	ev := NewEvaluator(All(true))
	var alpha fr.Element
	alpha.SetUint64(3)
	pows := ev.AlphaPowers(alpha)
	require.Len(t, pows, ev.NbSubRelations())
	require.True(t, pows[0].IsOne())

	residuals := make([]fr.Element, ev.NbSubRelations())
	for i := range residuals {
		residuals[i].SetUint64(1)
	}
	indep, dep := ev.Combine(residuals, pows)

	// the lookup sum subrelation is the only dependent one: global index 4,
	// weight alpha^4 = 81
	var wantDep, wantIndep fr.Element
	wantDep.SetUint64(81)
	wantIndep.SetUint64(1 + 3 + 9 + 27)
	require.True(t, dep.Equal(&wantDep))
	require.True(t, indep.Equal(&wantIndep))
}

func TestColumnSets(t *testing.T) {
	require.Len(t, PrecomputedColumns(true), 16)
	require.Len(t, PrecomputedColumns(false), 13)
	require.Len(t, WitnessColumns(true), 6)
	require.Len(t, WitnessColumns(false), 4)

	for c := Column(0); int(c) < NbColumns; c++ {
		got, ok := ColumnByName(c.String())
		require.True(t, ok)
		require.Equal(t, c, got)
	}

	base, ok := BaseColumn(ZPermShift)
	require.True(t, ok)
	require.Equal(t, ZPerm, base)
	_, ok = BaseColumn(ZPerm)
	require.False(t, ok)
}
