package honk_test

import (
	"math/big"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/consensys/honk"
)

var (
	testSRS     *kzg.SRS
	testSRSOnce sync.Once
)

func srsForTest(t *testing.T) *kzg.SRS {
	t.Helper()
	testSRSOnce.Do(func() {
		var err error
		testSRS, err = kzg.NewSRS(64, new(big.Int).SetInt64(1337))
		if err != nil {
			panic(err)
		}
	})
	return testSRS
}

func elems(vs ...uint64) []fr.Element {
	es := make([]fr.Element, len(vs))
	for i, v := range vs {
		es[i].SetUint64(v)
	}
	return es
}

// mulAddCircuit builds an 8-row circuit computing 3*5 = 15 and 15+2 = 17,
// with a copy constraint carrying the product into the sum.
func mulAddCircuit() (*honk.Circuit, *honk.Assignment) {
	const n = 8
	circuit := &honk.Circuit{
		N:  n,
		QM: elems(1, 0, 0, 0, 0, 0, 0, 0),
		QL: elems(0, 1, 0, 0, 0, 0, 0, 0),
		QR: elems(0, 1, 0, 0, 0, 0, 0, 0),
		QO: make([]fr.Element, n),
		QC: make([]fr.Element, n),

		// wO of row 0 and wL of row 1 carry the same value
		CopyCycles: [][]int{{2*n + 0, 0*n + 1}},
	}
	circuit.QO[0].SetInt64(-1)
	circuit.QO[1].SetInt64(-1)

	assignment := &honk.Assignment{
		WL:           elems(3, 15, 0, 0, 0, 0, 0, 0),
		WR:           elems(5, 2, 0, 0, 0, 0, 0, 0),
		WO:           elems(15, 17, 0, 0, 0, 0, 0, 0),
		PublicInputs: elems(3, 5),
	}
	return circuit, assignment
}

// rangeLookupCircuit builds an 8-row circuit whose rows 4 and 5 look their
// wO values up in the table {2, 4, 6, 8} held on rows 0 to 3.
func rangeLookupCircuit() (*honk.Circuit, *honk.Assignment) {
	const n = 8
	circuit := &honk.Circuit{
		N:       n,
		QM:      make([]fr.Element, n),
		QL:      make([]fr.Element, n),
		QR:      make([]fr.Element, n),
		QO:      make([]fr.Element, n),
		QC:      make([]fr.Element, n),
		QTable:  elems(1, 1, 1, 1, 0, 0, 0, 0),
		Table:   elems(2, 4, 6, 8, 0, 0, 0, 0),
		QLookup: elems(0, 0, 0, 0, 1, 1, 0, 0),
	}
	assignment := &honk.Assignment{
		WL: make([]fr.Element, n),
		WR: make([]fr.Element, n),
		WO: elems(0, 0, 0, 0, 4, 8, 0, 0),
	}
	return circuit, assignment
}

// additionCircuit builds the smallest interesting shape: four rows, each an
// addition gate a + b = c.
func additionCircuit() (*honk.Circuit, *honk.Assignment) {
	const n = 4
	circuit := &honk.Circuit{
		N:  n,
		QM: make([]fr.Element, n),
		QL: elems(1, 1, 1, 1),
		QR: elems(1, 1, 1, 1),
		QO: make([]fr.Element, n),
		QC: make([]fr.Element, n),
	}
	for i := 0; i < n; i++ {
		circuit.QO[i].SetInt64(-1)
	}
	assignment := &honk.Assignment{
		WL: elems(1, 2, 0, 4),
		WR: elems(2, 3, 0, 4),
		WO: elems(3, 5, 0, 8),
	}
	return circuit, assignment
}

func TestAdditionCircuitEndToEnd(t *testing.T) {
	circuit, assignment := additionCircuit()
	pk, vk, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	proof, err := honk.Prove(pk, assignment)
	require.NoError(t, err)
	require.NoError(t, honk.Verify(vk, proof, nil))

	// one flipped witness value aborts before any proof is emitted
	bad := *assignment
	bad.WO = elems(3, 5, 1, 8)
	proof, err = honk.Prove(pk, &bad)
	require.ErrorIs(t, err, honk.ErrInvariantViolation)
	require.Nil(t, proof)
}

func TestProveVerify(t *testing.T) {
	circuit, assignment := mulAddCircuit()
	pk, vk, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	proof, err := honk.Prove(pk, assignment)
	require.NoError(t, err)
	require.NoError(t, honk.Verify(vk, proof, assignment.PublicInputs))
}

func TestProveVerifyLookup(t *testing.T) {
	circuit, assignment := rangeLookupCircuit()
	pk, vk, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	proof, err := honk.Prove(pk, assignment)
	require.NoError(t, err)
	require.NoError(t, honk.Verify(vk, proof, nil))
}

func TestUnsatisfiedWitness(t *testing.T) {
	circuit, assignment := mulAddCircuit()
	pk, _, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	t.Run("broken gate", func(t *testing.T) {
		bad := *assignment
		bad.WO = elems(14, 17, 0, 0, 0, 0, 0, 0)
		proof, err := honk.Prove(pk, &bad)
		require.ErrorIs(t, err, honk.ErrInvariantViolation)
		require.Nil(t, proof)
	})

	t.Run("broken copy constraint", func(t *testing.T) {
		bad := *assignment
		bad.WL = elems(3, 16, 0, 0, 0, 0, 0, 0)
		bad.WO = elems(15, 18, 0, 0, 0, 0, 0, 0)
		proof, err := honk.Prove(pk, &bad)
		require.ErrorIs(t, err, honk.ErrInvariantViolation)
		require.Nil(t, proof)
	})
}

func TestLookupValueNotInTable(t *testing.T) {
	circuit, assignment := rangeLookupCircuit()
	pk, _, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	bad := *assignment
	bad.WO = elems(0, 0, 0, 0, 4, 7, 0, 0)
	_, err = honk.Prove(pk, &bad)
	require.ErrorIs(t, err, honk.ErrInvariantViolation)
}

func TestVerifyRejectsWrongPublicInputs(t *testing.T) {
	circuit, assignment := mulAddCircuit()
	pk, vk, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	proof, err := honk.Prove(pk, assignment)
	require.NoError(t, err)

	err = honk.Verify(vk, proof, elems(3, 6))
	require.ErrorIs(t, err, honk.ErrInvalidProof)

	err = honk.Verify(vk, proof, elems(3))
	require.ErrorIs(t, err, honk.ErrInvalidProof)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	circuit, assignment := mulAddCircuit()
	pk, vk, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	proof, err := honk.Prove(pk, assignment)
	require.NoError(t, err)

	// flipping any byte of any element must invalidate the proof
	for i := range proof.Entries {
		data, err := proof.MarshalBinary()
		require.NoError(t, err)
		var clone honk.Proof
		require.NoError(t, clone.UnmarshalBinary(data))

		last := len(clone.Entries[i].Data) - 1
		clone.Entries[i].Data[last] ^= 0xff

		err = honk.Verify(vk, &clone, assignment.PublicInputs)
		require.ErrorIs(t, err, honk.ErrInvalidProof, "entry %d (%s)", i, proof.Entries[i].Label)
	}

	t.Run("truncated", func(t *testing.T) {
		clone := honk.Proof{Entries: proof.Entries[:len(proof.Entries)-1]}
		require.ErrorIs(t, honk.Verify(vk, &clone, assignment.PublicInputs), honk.ErrInvalidProof)
	})
}

func TestProofDeterminism(t *testing.T) {
	circuit, assignment := mulAddCircuit()
	pk, _, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	p1, err := honk.Prove(pk, assignment)
	require.NoError(t, err)
	p2, err := honk.Prove(pk, assignment)
	require.NoError(t, err)

	b1, err := p1.MarshalBinary()
	require.NoError(t, err)
	b2, err := p2.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestProofSerializationRoundTrip(t *testing.T) {
	circuit, assignment := rangeLookupCircuit()
	pk, vk, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	proof, err := honk.Prove(pk, assignment)
	require.NoError(t, err)

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	var back honk.Proof
	require.NoError(t, back.UnmarshalBinary(data))

	if diff := cmp.Diff(proof.Entries, back.Entries); diff != "" {
		t.Fatalf("proof round trip mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, honk.Verify(vk, &back, nil))
}

func TestSetupErrors(t *testing.T) {
	circuit, _ := mulAddCircuit()

	t.Run("srs too small", func(t *testing.T) {
		small, err := kzg.NewSRS(4, new(big.Int).SetInt64(1337))
		require.NoError(t, err)
		_, _, err = honk.Setup(circuit, small)
		require.ErrorIs(t, err, honk.ErrCommitmentKeyExhausted)
	})

	t.Run("size not a power of two", func(t *testing.T) {
		bad := *circuit
		bad.N = 6
		_, _, err := honk.Setup(&bad, srsForTest(t))
		require.Error(t, err)
	})

	t.Run("selector length mismatch", func(t *testing.T) {
		bad := *circuit
		bad.QM = bad.QM[:4]
		_, _, err := honk.Setup(&bad, srsForTest(t))
		require.ErrorIs(t, err, honk.ErrMalformedRelationInput)
	})

	t.Run("duplicate copy position", func(t *testing.T) {
		bad := *circuit
		bad.CopyCycles = [][]int{{1, 16}, {16, 3}}
		_, _, err := honk.Setup(&bad, srsForTest(t))
		require.Error(t, err)
	})
}

func TestProveRejectsWrongWireLength(t *testing.T) {
	circuit, assignment := mulAddCircuit()
	pk, _, err := honk.Setup(circuit, srsForTest(t))
	require.NoError(t, err)

	bad := *assignment
	bad.WR = bad.WR[:4]
	_, err = honk.Prove(pk, &bad)
	require.ErrorIs(t, err, honk.ErrMalformedRelationInput)
}
