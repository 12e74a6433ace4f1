package honk

import (
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"

	"github.com/consensys/honk/logger"
	"github.com/consensys/honk/polynomial"
	"github.com/consensys/honk/relations"
	"github.com/consensys/honk/transcript"
	"github.com/consensys/honk/zeromorph"
)

// Verify replays the proof transcript entry by entry, rederiving every
// challenge, and checks the sumcheck reduction and the final batched opening.
// Any deviation from the expected round sequence, any malformed element and
// any failed check is reported as ErrInvalidProof.
func Verify(vk *VerifyingKey, proof *Proof, publicInputs []fr.Element, opts ...Option) error {
	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "honk").Logger()
	start := time.Now()

	cfg, err := newConfig(opts...)
	if err != nil {
		return err
	}

	n := int(vk.CircuitSize)
	d := 0
	for s := n; s > 1; s >>= 1 {
		d++
	}

	ts := transcript.New(cfg.challengeHash, challengeNames(d)...)
	r := &reader{entries: proof.Entries, ts: ts}

	// preamble
	size, err := r.uint32BE("circuit_size")
	if err != nil {
		return err
	}
	if size != vk.CircuitSize {
		return fmt.Errorf("%w: circuit size %d, want %d", ErrInvalidProof, size, vk.CircuitSize)
	}
	nbPublic, err := r.uint32BE("public_input_size")
	if err != nil {
		return err
	}
	if int(nbPublic) != len(publicInputs) {
		return fmt.Errorf("%w: %d public inputs, want %d", ErrInvalidProof, nbPublic, len(publicInputs))
	}
	for i := range publicInputs {
		pi, err := r.fieldElements("public_input", 1)
		if err != nil {
			return err
		}
		if !pi[0].Equal(&publicInputs[i]) {
			return fmt.Errorf("%w: public input %d does not match", ErrInvalidProof, i)
		}
	}

	// wire and accumulator commitments, interleaved with their challenges
	coms := make(map[relations.Column]kzg.Digest)
	for i, c := range relations.PrecomputedColumns(vk.HasLookup) {
		coms[c] = vk.Precomputed[i]
	}
	wireCols := []relations.Column{relations.WL, relations.WR, relations.WO}
	if vk.HasLookup {
		wireCols = append(wireCols, relations.LookupReadCounts)
	}
	for _, c := range wireCols {
		if coms[c], err = r.point(c.String()); err != nil {
			return err
		}
	}

	beta, err := ts.Challenge("beta")
	if err != nil {
		return err
	}
	gamma, err := ts.Challenge("gamma")
	if err != nil {
		return err
	}
	params := relations.NewParameters(beta, gamma)

	accCols := []relations.Column{relations.ZPerm}
	if vk.HasLookup {
		accCols = append(accCols, relations.LookupInverses)
	}
	for _, c := range accCols {
		if coms[c], err = r.point(c.String()); err != nil {
			return err
		}
	}

	alpha, err := ts.Challenge("alpha")
	if err != nil {
		return err
	}

	// sumcheck replay
	ev := relations.NewEvaluator(relations.All(vk.HasLookup))
	alphaPowers := ev.AlphaPowers(alpha)
	nbPoints := ev.MaxDegree() + 2

	zeta, err := ts.Challenge("Sumcheck:zeta")
	if err != nil {
		return err
	}

	u := make([]fr.Element, d)
	var claim fr.Element
	for k := 0; k < d; k++ {
		univ, err := r.fieldElements(fmt.Sprintf("Sumcheck:univariate_%d", k), nbPoints)
		if err != nil {
			return err
		}
		var s fr.Element
		s.Add(&univ[0], &univ[1])
		if !s.Equal(&claim) {
			return fmt.Errorf("%w: sumcheck round %d: S(0)+S(1) != claim", ErrInvalidProof, k)
		}
		if u[k], err = ts.Challenge(fmt.Sprintf("Sumcheck:u_%d", k)); err != nil {
			return err
		}
		claim = polynomial.Univariate(univ).EvaluateAt(u[k])
	}

	evals, err := r.fieldElements("Sumcheck:evaluations", len(ev.Columns()))
	if err != nil {
		return err
	}
	var row relations.Row
	for i, c := range ev.Columns() {
		row[c] = evals[i]
	}

	// final sumcheck check: the last claim must equal the combined relation
	// polynomial at the claimed evaluations, with the zero-check weighting
	// specialized to u
	residuals := make([]fr.Element, ev.NbSubRelations())
	ev.Evaluate(&row, &params, residuals)
	indep, dep := ev.Combine(residuals, alphaPowers)

	var expected, t, one fr.Element
	one.SetOne()
	expected.SetOne()
	zetaPow := zeta
	for k := 0; k < d; k++ {
		t.Sub(&zetaPow, &one).Mul(&t, &u[k]).Add(&t, &one)
		expected.Mul(&expected, &t)
		zetaPow.Square(&zetaPow)
	}
	expected.Mul(&expected, &indep).Add(&expected, &dep)
	if !expected.Equal(&claim) {
		return fmt.Errorf("%w: relation check failed at the sumcheck point", ErrInvalidProof)
	}

	// opening replay
	rho, err := ts.Challenge("ZM:rho")
	if err != nil {
		return err
	}
	comQ := make([]kzg.Digest, d)
	for k := 0; k < d; k++ {
		if comQ[k], err = r.point(fmt.Sprintf("ZM:C_q_%d", k)); err != nil {
			return err
		}
	}
	y, err := ts.Challenge("ZM:y")
	if err != nil {
		return err
	}
	comQHat, err := r.point("ZM:C_q")
	if err != nil {
		return err
	}
	x, err := ts.Challenge("ZM:x")
	if err != nil {
		return err
	}
	z, err := ts.Challenge("ZM:z")
	if err != nil {
		return err
	}
	pi, err := r.point("ZM:PI")
	if err != nil {
		return err
	}
	if len(r.entries) != 0 {
		return fmt.Errorf("%w: %d trailing elements", ErrInvalidProof, len(r.entries))
	}

	unshiftedCols := relations.UnshiftedColumns(vk.HasLookup)
	comsUnshifted := make([]kzg.Digest, len(unshiftedCols))
	evalsUnshifted := make([]fr.Element, len(unshiftedCols))
	for i, c := range unshiftedCols {
		comsUnshifted[i] = coms[c]
		evalsUnshifted[i] = row[c]
	}
	comsToBeShifted := []kzg.Digest{coms[relations.ZPerm]}
	evalsShifted := []fr.Element{row[relations.ZPermShift]}

	if err := zeromorph.VerifyFinal(vk.Kzg, comsUnshifted, comsToBeShifted,
		evalsUnshifted, evalsShifted, u, rho, y, x, z, comQ, comQHat, pi); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	log.Info().Dur("took", time.Since(start)).Msg("verifier done")
	return nil
}
