package honk

import (
	"fmt"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"

	"github.com/consensys/honk/transcript"
)

// Proof is the exported transcript log: an ordered sequence of labeled
// byte-serialized proof elements whose ordering matches the prover's round
// sequence exactly. It is immutable once exported.
type Proof struct {
	Entries []transcript.Entry
}

var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// MarshalBinary serializes the proof deterministically.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cborEnc.Marshal(p.Entries)
}

// UnmarshalBinary deserializes a proof produced by MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, &p.Entries)
}

// reader walks the proof entries in order during verification, replaying
// each one into the verifier's transcript before decoding it.
type reader struct {
	entries []transcript.Entry
	ts      *transcript.Transcript
}

func (r *reader) next(label string) ([]byte, error) {
	if len(r.entries) == 0 {
		return nil, fmt.Errorf("%w: missing element %q", ErrInvalidProof, label)
	}
	e := r.entries[0]
	r.entries = r.entries[1:]
	if e.Label != label {
		return nil, fmt.Errorf("%w: element %q where %q expected", ErrInvalidProof, e.Label, label)
	}
	if err := r.ts.Append(e.Label, e.Data); err != nil {
		return nil, err
	}
	return e.Data, nil
}

func (r *reader) point(label string) (curve.G1Affine, error) {
	var p curve.G1Affine
	data, err := r.next(label)
	if err != nil {
		return p, err
	}
	if _, err := p.SetBytes(data); err != nil {
		return p, fmt.Errorf("%w: element %q: %v", ErrInvalidProof, label, err)
	}
	return p, nil
}

func (r *reader) fieldElements(label string, n int) ([]fr.Element, error) {
	data, err := r.next(label)
	if err != nil {
		return nil, err
	}
	if len(data) != n*fr.Bytes {
		return nil, fmt.Errorf("%w: element %q has %d bytes, want %d", ErrInvalidProof, label, len(data), n*fr.Bytes)
	}
	es := make([]fr.Element, n)
	for i := range es {
		if err := es[i].SetBytesCanonical(data[i*fr.Bytes : (i+1)*fr.Bytes]); err != nil {
			return nil, fmt.Errorf("%w: element %q: %v", ErrInvalidProof, label, err)
		}
	}
	return es, nil
}

func (r *reader) uint32BE(label string) (uint32, error) {
	data, err := r.next(label)
	if err != nil {
		return 0, err
	}
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: element %q has %d bytes, want 4", ErrInvalidProof, label, len(data))
	}
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]), nil
}
