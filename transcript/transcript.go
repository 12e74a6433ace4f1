// Package transcript implements the Fiat-Shamir transcript of a proving
// session: an ordered, append-only log of labeled proof elements from which
// every verifier challenge is deterministically derived.
//
// Challenge derivation is delegated to gnark-crypto's fiat-shamir transcript,
// so a prover and a verifier feeding the same append/challenge sequence into
// the same hash function obtain identical challenges. The entry log doubles
// as the proof: the verifier replays it entry by entry.
package transcript

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
)

var (
	// ErrChallengeOrder is returned when a challenge is requested out of the
	// protocol order fixed at construction.
	ErrChallengeOrder = errors.New("challenge drawn out of order")
)

// Entry is one labeled proof element of the transcript log.
type Entry struct {
	Label string `cbor:"1,keyasint"`
	Data  []byte `cbor:"2,keyasint"`
}

// Transcript accumulates labeled proof elements and derives challenges from
// them. It is a single-writer resource: the orchestrator owns it for the
// session and drives it sequentially.
type Transcript struct {
	fs      *fiatshamir.Transcript
	pending []string
	entries []Entry
}

// New returns a transcript deriving challenges with h. The challenge ids must
// list, in protocol order, every challenge the session will draw; the round
// structure of the protocol is fixed per circuit shape so the caller knows
// them up front.
func New(h hash.Hash, challengeIDs ...string) *Transcript {
	ids := make([]string, len(challengeIDs))
	copy(ids, challengeIDs)
	return &Transcript{
		fs:      fiatshamir.NewTranscript(h, ids...),
		pending: ids,
	}
}

// Append records a labeled proof element and binds it to the next challenge.
// Elements appended after the last challenge has been drawn are still logged;
// nothing is derived from them.
func (t *Transcript) Append(label string, data []byte) error {
	d := make([]byte, len(data))
	copy(d, data)
	t.entries = append(t.entries, Entry{Label: label, Data: d})

	if len(t.pending) == 0 {
		return nil
	}
	if err := t.fs.Bind(t.pending[0], []byte(label)); err != nil {
		return fmt.Errorf("bind label %q: %w", label, err)
	}
	if err := t.fs.Bind(t.pending[0], d); err != nil {
		return fmt.Errorf("bind %q: %w", label, err)
	}
	return nil
}

// AppendFieldElement appends e as its 32-byte big-endian encoding.
func (t *Transcript) AppendFieldElement(label string, e *fr.Element) error {
	return t.Append(label, e.Marshal())
}

// AppendFieldElements appends the concatenation of the big-endian encodings
// of es as a single element.
func (t *Transcript) AppendFieldElements(label string, es []fr.Element) error {
	data := make([]byte, 0, len(es)*fr.Bytes)
	for i := range es {
		data = append(data, es[i].Marshal()...)
	}
	return t.Append(label, data)
}

// AppendPoint appends the raw (uncompressed) encoding of p.
func (t *Transcript) AppendPoint(label string, p *curve.G1Affine) error {
	buf := p.RawBytes()
	return t.Append(label, buf[:])
}

// AppendUint32 appends v as 4 big-endian bytes.
func (t *Transcript) AppendUint32(label string, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return t.Append(label, buf[:])
}

// Challenge derives the named challenge from the full transcript history.
// name must be the next challenge in the protocol order given to New.
func (t *Transcript) Challenge(name string) (fr.Element, error) {
	var r fr.Element
	if len(t.pending) == 0 || t.pending[0] != name {
		return r, fmt.Errorf("%w: %q", ErrChallengeOrder, name)
	}
	b, err := t.fs.ComputeChallenge(name)
	if err != nil {
		return r, fmt.Errorf("compute challenge %q: %w", name, err)
	}
	t.pending = t.pending[1:]
	r.SetBytes(b)
	return r, nil
}

// Entries returns the accumulated log. The slice aliases the transcript's
// internal storage; it is only valid to read it after the session completed.
func (t *Transcript) Entries() []Entry {
	return t.entries
}
