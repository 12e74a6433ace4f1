package honk

import (
	"errors"

	"github.com/consensys/honk/relations"
	"github.com/consensys/honk/sumcheck"
)

var (
	// ErrCommitmentKeyExhausted is returned by Setup when the structured
	// reference string is smaller than the circuit requires. Checked eagerly
	// so no proving work is wasted.
	ErrCommitmentKeyExhausted = errors.New("commitment key smaller than circuit size")

	// ErrMalformedRelationInput is returned when a named polynomial required
	// by the relation set is missing or mis-sized.
	ErrMalformedRelationInput = relations.ErrMalformedRelationInput

	// ErrInvariantViolation is returned when the trace does not satisfy the
	// relation set or a sumcheck round breaks consistency. The session aborts
	// before any proof is emitted.
	ErrInvariantViolation = sumcheck.ErrInvariantViolation

	// ErrInvalidProof is returned by Verify when the proof does not replay.
	ErrInvalidProof = errors.New("invalid proof")
)
