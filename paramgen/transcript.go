// Package paramgen derives complete Poseidon parameter sets for the
// bls12-377 scalar field: S-box exponent, round numbers, mixing matrix,
// round constants and the precomputed optimized forms the permutation
// consumes. Generation is deterministic, offline and pure; two calls with
// the same inputs produce bit-identical parameter sets.
package paramgen

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/gtank/merlin"
)

// Transcript is the deterministic byte-stream oracle round constants are
// drawn from, backed by a STROBE-based merlin transcript. It moves through
// three stages: construction binds the protocol label, absorbing seeds the
// instance description, deriving produces the constant stream. Absorbing
// after the first derivation is a programmer error and panics; a transcript
// serves exactly one generation run.
type Transcript struct {
	inner    *merlin.Transcript
	deriving bool
}

// NewTranscript starts a transcript bound to the given protocol label.
func NewTranscript(label string) *Transcript {
	return &Transcript{inner: merlin.NewTranscript(label)}
}

// Absorb mixes labeled bytes into the transcript state.
func (t *Transcript) Absorb(label string, data []byte) {
	if t.deriving {
		panic("poseidon377: transcript absorb after first derive")
	}
	t.inner.AppendMessage([]byte(label), data)
}

// AbsorbUint64 mixes a labeled integer, encoded as 8 little-endian bytes.
func (t *Transcript) AbsorbUint64(label string, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	t.Absorb(label, buf[:])
}

// DeriveElement draws the next field element from the stream. It extracts
// 16 bytes beyond the modulus size and reduces, keeping the bias below
// 2^-128.
func (t *Transcript) DeriveElement(label string) fr.Element {
	t.deriving = true
	raw := t.inner.ExtractBytes([]byte(label), fr.Bytes+16)
	var e fr.Element
	e.SetBigInt(new(big.Int).SetBytes(raw))
	return e
}
