// Package sumcheck implements the prover side of the zero-check sumcheck
// reduction: the claim that the relation-separation-combined polynomial sums
// to zero over the boolean hypercube is reduced, one variable per round, to
// evaluation claims for every named polynomial at a single random point.
package sumcheck

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/honk/internal/utils"
	"github.com/consensys/honk/polynomial"
	"github.com/consensys/honk/relations"
	"github.com/consensys/honk/transcript"
)

// ErrInvariantViolation is returned when a round polynomial does not carry
// the previous round's claim, or when the trace does not satisfy the relation
// set. It indicates an unsatisfied witness or a defect in the relation
// definitions; the session must abort rather than emit a proof.
var ErrInvariantViolation = errors.New("sumcheck invariant violation")

// Output is what the sumcheck reduction leaves behind for the opening
// protocol.
type Output struct {
	// RoundUnivariates[k] is the round-k polynomial, as evaluations on
	// {0, ..., D}.
	RoundUnivariates []polynomial.Univariate

	// Challenge is the point u the polynomials were specialized to, one
	// coordinate per round.
	Challenge []fr.Element

	// ClaimedEvaluations holds the claimed value of every active column at u.
	ClaimedEvaluations relations.Row
}

// ChallengeNames returns the transcript challenge ids consumed by a d-round
// sumcheck, in protocol order.
func ChallengeNames(d int) []string {
	names := make([]string, 0, d+1)
	names = append(names, "Sumcheck:zeta")
	for k := 0; k < d; k++ {
		names = append(names, fmt.Sprintf("Sumcheck:u_%d", k))
	}
	return names
}

// Prover runs the d-round reduction. It owns working copies of the named
// polynomials (shifted views materialized) and folds them in place as
// challenges arrive; the canonical storage is never mutated.
type Prover struct {
	ev          *relations.Evaluator
	ts          *transcript.Transcript
	alphaPowers []fr.Element

	tables [relations.NbColumns]polynomial.Multilinear
	pow    polynomial.Multilinear

	n, d int
}

// NewProver copies the active columns of the set into session-owned working
// tables. The set must have been checked against the relation set before.
func NewProver(set *relations.Set, ev *relations.Evaluator, alpha fr.Element, ts *transcript.Transcript, n int) *Prover {
	p := &Prover{
		ev:          ev,
		ts:          ts,
		alphaPowers: ev.AlphaPowers(alpha),
		n:           n,
	}
	for d := n; d > 1; d >>= 1 {
		p.d++
	}
	for _, c := range ev.Columns() {
		if base, ok := relations.BaseColumn(c); ok {
			p.tables[c] = polynomial.NewShifted(set[base]).Materialize()
			continue
		}
		p.tables[c] = polynomial.Multilinear(set[c]).Clone()
	}
	return p
}

// Prove runs all rounds, appending every round polynomial to the transcript
// and drawing one challenge per dimension. The initial claim is zero.
func (p *Prover) Prove(params *relations.Parameters) (*Output, error) {
	zeta, err := p.ts.Challenge("Sumcheck:zeta")
	if err != nil {
		return nil, err
	}

	// zero-check weighting: pow[i] = zeta^i over the hypercube
	p.pow = make(polynomial.Multilinear, p.n)
	p.pow[0].SetOne()
	for i := 1; i < p.n; i++ {
		p.pow[i].Mul(&p.pow[i-1], &zeta)
	}

	out := &Output{
		RoundUnivariates: make([]polynomial.Univariate, p.d),
		Challenge:        make([]fr.Element, p.d),
	}

	var claim fr.Element // zero: every residual vanishes on a valid trace
	nbPoints := p.ev.MaxDegree() + 2

	for k := 0; k < p.d; k++ {
		univ := p.roundUnivariate(params, nbPoints)

		// a verifier recomputes this from the round polynomial; the prover
		// must satisfy it by construction
		var s fr.Element
		s.Add(&univ[0], &univ[1])
		if !s.Equal(&claim) {
			return nil, fmt.Errorf("%w: round %d: S(0)+S(1) != claim", ErrInvariantViolation, k)
		}

		if err := p.ts.AppendFieldElements(fmt.Sprintf("Sumcheck:univariate_%d", k), univ); err != nil {
			return nil, err
		}
		u, err := p.ts.Challenge(fmt.Sprintf("Sumcheck:u_%d", k))
		if err != nil {
			return nil, err
		}

		claim = univ.EvaluateAt(u)
		out.RoundUnivariates[k] = univ
		out.Challenge[k] = u
		p.fold(u)
	}

	for _, c := range p.ev.Columns() {
		out.ClaimedEvaluations[c] = p.tables[c][0]
	}
	evals := make([]fr.Element, 0, len(p.ev.Columns()))
	for _, c := range p.ev.Columns() {
		evals = append(evals, out.ClaimedEvaluations[c])
	}
	if err := p.ts.AppendFieldElements("Sumcheck:evaluations", evals); err != nil {
		return nil, err
	}

	return out, nil
}

// roundUnivariate computes the current round polynomial as evaluations on
// {0..nbPoints-1}: for each point t, the partial sum over the remaining free
// dimensions of the combined relation polynomial with the round variable set
// to t.
func (p *Prover) roundUnivariate(params *relations.Parameters, nbPoints int) polynomial.Univariate {
	half := len(p.pow) / 2
	cols := p.ev.Columns()
	nbSub := p.ev.NbSubRelations()

	univ := make(polynomial.Univariate, nbPoints)
	var mu sync.Mutex

	utils.Parallelize(half, func(start, end int) {
		var row relations.Row
		var delta relations.Row
		var powRow, powDelta fr.Element
		residuals := make([]fr.Element, nbSub)
		local := make(polynomial.Univariate, nbPoints)
		var t fr.Element

		for i := start; i < end; i++ {
			// extend each column's edge (m[2i], m[2i+1]) to the evaluation
			// domain by repeated addition of the edge slope
			for _, c := range cols {
				row[c] = p.tables[c][2*i]
				delta[c].Sub(&p.tables[c][2*i+1], &p.tables[c][2*i])
			}
			powRow = p.pow[2*i]
			powDelta.Sub(&p.pow[2*i+1], &p.pow[2*i])

			for pt := 0; pt < nbPoints; pt++ {
				if pt > 0 {
					for _, c := range cols {
						row[c].Add(&row[c], &delta[c])
					}
					powRow.Add(&powRow, &powDelta)
				}
				p.ev.Evaluate(&row, params, residuals)
				indep, dep := p.ev.Combine(residuals, p.alphaPowers)
				t.Mul(&indep, &powRow).Add(&t, &dep)
				local[pt].Add(&local[pt], &t)
			}
		}

		// field addition is associative and commutative: the merged sums do
		// not depend on chunk boundaries
		mu.Lock()
		for pt := range univ {
			univ[pt].Add(&univ[pt], &local[pt])
		}
		mu.Unlock()
	})

	return univ
}

// fold specializes the current round variable to u in every working table.
func (p *Prover) fold(u fr.Element) {
	for _, c := range p.ev.Columns() {
		p.tables[c] = p.tables[c].Fold(u)
	}
	p.pow = p.pow.Fold(u)
}
