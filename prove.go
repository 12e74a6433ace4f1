package honk

import (
	"fmt"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/honk/internal/utils"
	"github.com/consensys/honk/logger"
	"github.com/consensys/honk/polynomial"
	"github.com/consensys/honk/relations"
	"github.com/consensys/honk/sumcheck"
	"github.com/consensys/honk/transcript"
	"github.com/consensys/honk/zeromorph"
)

// Prove runs one proving session: it commits the witness columns, reduces the
// relation set through sumcheck and settles the evaluation claims with one
// batched opening. The returned proof is the full transcript log.
//
// The round sequence is fixed: preamble, wire commitments, grand-product and
// lookup-inverse commitments (the latter skipped when the circuit has no
// lookup table), relation check, opening. The verifier replays the same
// sequence bit for bit.
func Prove(pk *ProvingKey, assignment *Assignment, opts ...Option) (*Proof, error) {
	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "honk").Logger()
	start := time.Now()

	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	n := pk.n
	for name, col := range map[string][]fr.Element{"w_l": assignment.WL, "w_r": assignment.WR, "w_o": assignment.WO} {
		if len(col) != n {
			return nil, fmt.Errorf("%w: wire column %s has %d rows, want %d", ErrMalformedRelationInput, name, len(col), n)
		}
	}

	// session working set: precomputed views from the key, witness views
	// from the assignment
	set := pk.cols
	set[relations.WL] = assignment.WL
	set[relations.WR] = assignment.WR
	set[relations.WO] = assignment.WO

	ts := transcript.New(cfg.challengeHash, challengeNames(pk.d)...)

	// preamble
	if err := ts.AppendUint32("circuit_size", uint32(n)); err != nil {
		return nil, err
	}
	if err := ts.AppendUint32("public_input_size", uint32(len(assignment.PublicInputs))); err != nil {
		return nil, err
	}
	for i := range assignment.PublicInputs {
		if err := ts.AppendFieldElement("public_input", &assignment.PublicInputs[i]); err != nil {
			return nil, err
		}
	}

	// wire commitment round
	if pk.hasLookup {
		counts, err := computeReadCounts(&set, n)
		if err != nil {
			return nil, err
		}
		set[relations.LookupReadCounts] = counts
	}
	wireCols := []relations.Column{relations.WL, relations.WR, relations.WO}
	if pk.hasLookup {
		wireCols = append(wireCols, relations.LookupReadCounts)
	}
	if err := commitAndAppend(ts, pk.srs.Pk, &set, wireCols); err != nil {
		return nil, err
	}

	// accumulator commitment round, gated on the relation set
	beta, err := ts.Challenge("beta")
	if err != nil {
		return nil, err
	}
	gamma, err := ts.Challenge("gamma")
	if err != nil {
		return nil, err
	}
	params := relations.NewParameters(beta, gamma)

	set[relations.ZPerm] = computeGrandProduct(&set, &params, n)
	accCols := []relations.Column{relations.ZPerm}
	if pk.hasLookup {
		set[relations.LookupInverses] = computeLookupInverses(&set, &params, n)
		accCols = append(accCols, relations.LookupInverses)
	}
	if err := commitAndAppend(ts, pk.srs.Pk, &set, accCols); err != nil {
		return nil, err
	}

	// relation check round
	ev := relations.NewEvaluator(relations.All(pk.hasLookup))
	if err := relations.CheckSet(&set, ev.Relations(), n); err != nil {
		return nil, err
	}
	if err := checkResiduals(ev, &set, &params, n); err != nil {
		return nil, err
	}

	alpha, err := ts.Challenge("alpha")
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("starting sumcheck")

	scOut, err := sumcheck.NewProver(&set, ev, alpha, ts, n).Prove(&params)
	if err != nil {
		return nil, err
	}

	// opening round
	unshiftedCols := relations.UnshiftedColumns(pk.hasLookup)
	unshifted := make([]polynomial.Multilinear, len(unshiftedCols))
	evalsUnshifted := make([]fr.Element, len(unshiftedCols))
	for i, c := range unshiftedCols {
		unshifted[i] = set[c]
		evalsUnshifted[i] = scOut.ClaimedEvaluations[c]
	}
	toBeShifted := []polynomial.Multilinear{set[relations.ZPerm]}
	evalsShifted := []fr.Element{scOut.ClaimedEvaluations[relations.ZPermShift]}

	if err := zeromorph.Open(ts, pk.srs.Pk, unshifted, toBeShifted, evalsUnshifted, evalsShifted, scOut.Challenge); err != nil {
		return nil, err
	}

	log.Info().Dur("took", time.Since(start)).Msg("prover done")
	return &Proof{Entries: ts.Entries()}, nil
}

// challengeNames lists every challenge of a d-round session, in protocol
// order.
func challengeNames(d int) []string {
	names := []string{"beta", "gamma", "alpha"}
	names = append(names, sumcheck.ChallengeNames(d)...)
	names = append(names, zeromorph.ChallengeNames()...)
	return names
}

func commitAndAppend(ts *transcript.Transcript, pk kzg.ProvingKey, set *relations.Set, cols []relations.Column) error {
	digests := make([]kzg.Digest, len(cols))
	var g errgroup.Group
	for i, c := range cols {
		g.Go(func() error {
			var err error
			digests[i], err = kzg.Commit(set[c], pk)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, c := range cols {
		if err := ts.AppendPoint(c.String(), &digests[i]); err != nil {
			return err
		}
	}
	return nil
}

// computeGrandProduct builds the permutation accumulator: zPerm[0] = 0 and
// zPerm[i] accumulates the ratio of identity-side to sigma-side terms of all
// rows before i (the relation's lagrangeFirst term supplies the leading one).
func computeGrandProduct(set *relations.Set, params *relations.Parameters, n int) []fr.Element {
	num := make([]fr.Element, n)
	den := make([]fr.Element, n)

	wires := [3]relations.Column{relations.WL, relations.WR, relations.WO}
	ids := [3]relations.Column{relations.ID1, relations.ID2, relations.ID3}
	sigmas := [3]relations.Column{relations.Sigma1, relations.Sigma2, relations.Sigma3}

	utils.Parallelize(n, func(start, end int) {
		var t fr.Element
		for i := start; i < end; i++ {
			num[i].SetOne()
			den[i].SetOne()
			for j := 0; j < 3; j++ {
				t.Mul(&params.Beta, &set[ids[j]][i])
				t.Add(&t, &set[wires[j]][i]).Add(&t, &params.Gamma)
				num[i].Mul(&num[i], &t)

				t.Mul(&params.Beta, &set[sigmas[j]][i])
				t.Add(&t, &set[wires[j]][i]).Add(&t, &params.Gamma)
				den[i].Mul(&den[i], &t)
			}
		}
	})
	den = fr.BatchInvert(den)

	z := make([]fr.Element, n)
	var acc fr.Element
	acc.SetOne()
	var t fr.Element
	for i := 0; i+1 < n; i++ {
		t.Mul(&num[i], &den[i])
		acc.Mul(&acc, &t)
		z[i+1] = acc
	}
	return z
}

// computeReadCounts counts, for every table row, how many lookup gates read
// its entry. A lookup value absent from the table cannot satisfy the lookup
// relation, so it aborts the session immediately.
func computeReadCounts(set *relations.Set, n int) ([]fr.Element, error) {
	rowOf := make(map[fr.Element]int, n)
	for i := 0; i < n; i++ {
		if set[relations.QTable][i].IsZero() {
			continue
		}
		v := set[relations.Table][i]
		if _, ok := rowOf[v]; !ok {
			rowOf[v] = i
		}
	}

	counts := make([]fr.Element, n)
	var one fr.Element
	one.SetOne()
	for i := 0; i < n; i++ {
		if set[relations.QLookup][i].IsZero() {
			continue
		}
		row, ok := rowOf[set[relations.WO][i]]
		if !ok {
			return nil, fmt.Errorf("%w: lookup value at row %d not in table", ErrInvariantViolation, i)
		}
		counts[row].Add(&counts[row], &one)
	}
	return counts, nil
}

// computeLookupInverses builds the log-derivative accumulator column:
// 1/((wO+γ)(table+γ)) on rows participating in the lookup argument on either
// side, zero elsewhere.
func computeLookupInverses(set *relations.Set, params *relations.Parameters, n int) []fr.Element {
	inv := make([]fr.Element, n)
	active := make([]bool, n)
	var t fr.Element
	for i := 0; i < n; i++ {
		active[i] = !set[relations.QLookup][i].IsZero() || !set[relations.QTable][i].IsZero()
		if !active[i] {
			inv[i].SetOne() // placeholder, zeroed after the batch inversion
			continue
		}
		inv[i].Add(&set[relations.WO][i], &params.Gamma)
		t.Add(&set[relations.Table][i], &params.Gamma)
		inv[i].Mul(&inv[i], &t)
	}
	inv = fr.BatchInvert(inv)
	for i := 0; i < n; i++ {
		if !active[i] {
			inv[i] = fr.Element{}
		}
	}
	return inv
}

// checkResiduals verifies the witness against the relation set before any
// sumcheck work: row-vanishing residuals must be zero on every row, sum-only
// residuals must cancel over the whole trace. An unsatisfied witness must
// abort the session — emitting a proof for it would be a correctness breach.
func checkResiduals(ev *relations.Evaluator, set *relations.Set, params *relations.Parameters, n int) error {
	nbSub := ev.NbSubRelations()
	sums := make([]fr.Element, nbSub)
	var mu sync.Mutex
	var firstErr error

	utils.Parallelize(n, func(start, end int) {
		var row relations.Row
		residuals := make([]fr.Element, nbSub)
		local := make([]fr.Element, nbSub)
		var rowErr error

		for i := start; i < end && rowErr == nil; i++ {
			ev.EvaluateRow(set, i, params, &row, residuals)
			sub := 0
			for _, rel := range ev.Relations() {
				for j := 0; j < rel.NbSubRelations(); j++ {
					if rel.LinearlyIndependent(j) {
						if !residuals[sub].IsZero() {
							rowErr = fmt.Errorf("%w: relation %q subrelation %d does not vanish at row %d",
								ErrInvariantViolation, rel.Name(), j, i)
						}
					} else {
						local[sub].Add(&local[sub], &residuals[sub])
					}
					sub++
				}
			}
		}

		mu.Lock()
		if rowErr != nil && firstErr == nil {
			firstErr = rowErr
		}
		for j := range sums {
			sums[j].Add(&sums[j], &local[j])
		}
		mu.Unlock()
	})
	if firstErr != nil {
		return firstErr
	}

	sub := 0
	for _, rel := range ev.Relations() {
		for j := 0; j < rel.NbSubRelations(); j++ {
			if !rel.LinearlyIndependent(j) && !sums[sub].IsZero() {
				return fmt.Errorf("%w: relation %q subrelation %d does not sum to zero",
					ErrInvariantViolation, rel.Name(), j)
			}
			sub++
		}
	}
	return nil
}
