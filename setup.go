package honk

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/honk/logger"
	"github.com/consensys/honk/relations"
)

// ProvingKey holds the canonical storage of the precomputed columns and a
// borrowed reference to the commitment key. It is constructed once per
// circuit shape and never mutated during proving.
type ProvingKey struct {
	vk *VerifyingKey

	n, d      int
	hasLookup bool

	// canonical storage of the precomputed columns; sessions hold views
	cols relations.Set

	srs *kzg.SRS
}

// Vk returns the verifying key paired with pk.
func (pk *ProvingKey) Vk() *VerifyingKey { return pk.vk }

// VerifyingKey is what the verifier needs: the circuit size, the commitments
// to the precomputed columns and the KZG verifying key.
type VerifyingKey struct {
	CircuitSize uint32
	HasLookup   bool

	// Precomputed[i] commits to relations.PrecomputedColumns(HasLookup)[i].
	Precomputed []kzg.Digest

	Kzg kzg.VerifyingKey
}

// Setup builds the proving and verifying keys for the circuit. The SRS is
// borrowed: it must outlive every session using the returned keys. Fails
// eagerly with ErrCommitmentKeyExhausted when the SRS cannot commit to
// polynomials of the circuit size.
func Setup(circuit *Circuit, srs *kzg.SRS) (*ProvingKey, *VerifyingKey, error) {
	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "honk").Logger()
	start := time.Now()

	n := circuit.N
	if n < 2 || bits.OnesCount(uint(n)) != 1 {
		return nil, nil, fmt.Errorf("circuit size %d is not a power of two", n)
	}
	if len(srs.Pk.G1) < n {
		return nil, nil, fmt.Errorf("%w: srs has %d points, circuit needs %d", ErrCommitmentKeyExhausted, len(srs.Pk.G1), n)
	}

	pk := &ProvingKey{
		n:         n,
		d:         bits.TrailingZeros(uint(n)),
		hasLookup: circuit.HasLookup(),
		srs:       srs,
	}

	for c, col := range map[relations.Column][]fr.Element{
		relations.QM: circuit.QM,
		relations.QL: circuit.QL,
		relations.QR: circuit.QR,
		relations.QO: circuit.QO,
		relations.QC: circuit.QC,
	} {
		if len(col) != n {
			return nil, nil, fmt.Errorf("%w: selector %q has %d rows, want %d", ErrMalformedRelationInput, c, len(col), n)
		}
		pk.cols[c] = col
	}
	if pk.hasLookup {
		for c, col := range map[relations.Column][]fr.Element{
			relations.QLookup: circuit.QLookup,
			relations.QTable:  circuit.QTable,
			relations.Table:   circuit.Table,
		} {
			if len(col) != n {
				return nil, nil, fmt.Errorf("%w: lookup column %q has %d rows, want %d", ErrMalformedRelationInput, c, len(col), n)
			}
			pk.cols[c] = col
		}
	}

	if err := buildPermutationColumns(pk, circuit); err != nil {
		return nil, nil, err
	}

	lagrangeFirst := make([]fr.Element, n)
	lagrangeLast := make([]fr.Element, n)
	lagrangeFirst[0].SetOne()
	lagrangeLast[n-1].SetOne()
	pk.cols[relations.LagrangeFirst] = lagrangeFirst
	pk.cols[relations.LagrangeLast] = lagrangeLast

	// commit the precomputed columns
	precomputed := relations.PrecomputedColumns(pk.hasLookup)
	vk := &VerifyingKey{
		CircuitSize: uint32(n),
		HasLookup:   pk.hasLookup,
		Precomputed: make([]kzg.Digest, len(precomputed)),
		Kzg:         srs.Vk,
	}
	var g errgroup.Group
	for i, c := range precomputed {
		g.Go(func() error {
			var err error
			vk.Precomputed[i], err = kzg.Commit(pk.cols[c], srs.Pk)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	pk.vk = vk

	log.Debug().Dur("took", time.Since(start)).Int("n", n).Msg("setup done")
	return pk, vk, nil
}

// buildPermutationColumns derives the id and sigma columns from the copy
// cycles. Positions are encoded as column*N + row; sigma maps every position
// to the next one in its cycle.
func buildPermutationColumns(pk *ProvingKey, circuit *Circuit) error {
	n := pk.n

	sigma := make([]int, 3*n)
	for i := range sigma {
		sigma[i] = i
	}
	seen := bitset.New(uint(3 * n))
	for _, cycle := range circuit.CopyCycles {
		for t, pos := range cycle {
			if pos < 0 || pos >= 3*n {
				return fmt.Errorf("copy cycle position %d out of range", pos)
			}
			if seen.Test(uint(pos)) {
				return fmt.Errorf("copy cycle position %d appears twice", pos)
			}
			seen.Set(uint(pos))
			sigma[pos] = cycle[(t+1)%len(cycle)]
		}
	}

	ids := [3]relations.Column{relations.ID1, relations.ID2, relations.ID3}
	sigmas := [3]relations.Column{relations.Sigma1, relations.Sigma2, relations.Sigma3}
	for j := 0; j < 3; j++ {
		idCol := make([]fr.Element, n)
		sigmaCol := make([]fr.Element, n)
		for i := 0; i < n; i++ {
			idCol[i].SetUint64(uint64(j*n + i))
			sigmaCol[i].SetUint64(uint64(sigma[j*n+i]))
		}
		pk.cols[ids[j]] = idCol
		pk.cols[sigmas[j]] = sigmaCol
	}
	return nil
}
