package transcript

import (
	"crypto/sha256"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestChallengeDeterminism(t *testing.T) {
	run := func() (fr.Element, fr.Element) {
		ts := New(sha256.New(), "alpha", "beta")
		require.NoError(t, ts.AppendUint32("size", 8))
		var e fr.Element
		e.SetUint64(42)
		require.NoError(t, ts.AppendFieldElement("claim", &e))
		alpha, err := ts.Challenge("alpha")
		require.NoError(t, err)
		require.NoError(t, ts.Append("round", []byte{1, 2, 3}))
		beta, err := ts.Challenge("beta")
		require.NoError(t, err)
		return alpha, beta
	}

	a1, b1 := run()
	a2, b2 := run()
	require.True(t, a1.Equal(&a2))
	require.True(t, b1.Equal(&b2))
	require.False(t, a1.Equal(&b1))
}

func TestChallengeOrder(t *testing.T) {
	ts := New(sha256.New(), "alpha", "beta")

	_, err := ts.Challenge("beta")
	require.ErrorIs(t, err, ErrChallengeOrder)

	_, err = ts.Challenge("alpha")
	require.NoError(t, err)

	// a challenge cannot be drawn twice
	_, err = ts.Challenge("alpha")
	require.ErrorIs(t, err, ErrChallengeOrder)

	_, err = ts.Challenge("beta")
	require.NoError(t, err)

	_, err = ts.Challenge("beta")
	require.ErrorIs(t, err, ErrChallengeOrder)
}

func TestAppendAfterLastChallenge(t *testing.T) {
	ts := New(sha256.New(), "alpha")
	require.NoError(t, ts.Append("a", []byte{1}))
	_, err := ts.Challenge("alpha")
	require.NoError(t, err)

	// still logged, nothing derived from it
	require.NoError(t, ts.Append("proof", []byte{2}))
	entries := ts.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "proof", entries[1].Label)
}

func TestEntriesLog(t *testing.T) {
	ts := New(sha256.New(), "alpha")
	data := []byte{9, 8, 7}
	require.NoError(t, ts.Append("first", data))

	// the log owns its bytes
	data[0] = 0
	entries := ts.Entries()
	require.Equal(t, []byte{9, 8, 7}, entries[0].Data)
}

func TestChallengeBinding(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("different appended data gives different challenges", prop.ForAll(
		func(a, b []byte) bool {
			ts1 := New(sha256.New(), "c")
			ts2 := New(sha256.New(), "c")
			if err := ts1.Append("x", a); err != nil {
				return false
			}
			if err := ts2.Append("x", b); err != nil {
				return false
			}
			c1, err1 := ts1.Challenge("c")
			c2, err2 := ts2.Challenge("c")
			if err1 != nil || err2 != nil {
				return false
			}
			if string(a) == string(b) {
				return c1.Equal(&c2)
			}
			return !c1.Equal(&c2)
		},
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("different labels give different challenges", prop.ForAll(
		func(data []byte) bool {
			ts1 := New(sha256.New(), "c")
			ts2 := New(sha256.New(), "c")
			if err := ts1.Append("x", data); err != nil {
				return false
			}
			if err := ts2.Append("y", data); err != nil {
				return false
			}
			c1, err1 := ts1.Challenge("c")
			c2, err2 := ts2.Challenge("c")
			return err1 == nil && err2 == nil && !c1.Equal(&c2)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
