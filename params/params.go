package params

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Parameters bundles all constants needed by the permutation: the instance
// description, the round numbers, the S-box exponent, the mixing matrix and
// round constants, and the precomputed optimized forms of both.
type Parameters struct {
	Input  InputParameters
	Rounds RoundNumbers
	Alpha  Alpha

	MDS          MdsMatrix
	Arc          ArcMatrix
	OptimizedArc OptimizedArcMatrix
	OptimizedMDS OptimizedMdsMatrices
}

// Validate checks the parameter set for internal consistency and returns a
// ValidationError carrying every failed check, or nil when the set is sound.
// A permutation must never run on a set that fails validation.
func (p *Parameters) Validate() error {
	var issues []error

	width := p.Input.T
	if width < 2 {
		issues = append(issues, fmt.Errorf("state width %d, need at least 2: %w", width, ErrDimensionMismatch))
	}
	if p.Input.M < 1 {
		issues = append(issues, fmt.Errorf("security level %d bits is not positive", p.Input.M))
	}
	if p.Input.P == nil {
		issues = append(issues, fmt.Errorf("missing field modulus"))
	}

	if p.Alpha.Inverse {
		issues = append(issues, fmt.Errorf("inverse alpha is not supported"))
	} else if p.Alpha.Exponent < 3 || p.Alpha.Exponent%2 == 0 {
		issues = append(issues, fmt.Errorf("alpha %d must be an odd integer of at least 3", p.Alpha.Exponent))
	}

	if p.Rounds.Full < 2 || p.Rounds.Full%2 != 0 {
		issues = append(issues, fmt.Errorf("full rounds must be even and positive, got %d", p.Rounds.Full))
	}
	if p.Rounds.Partial < 1 {
		issues = append(issues, fmt.Errorf("need at least one partial round, got %d", p.Rounds.Partial))
	}

	if p.MDS.Size() != width {
		issues = append(issues, fmt.Errorf("mds matrix is %dx%d, want %dx%d: %w", p.MDS.Rows(), p.MDS.Cols(), width, width, ErrDimensionMismatch))
	} else if det := p.MDS.Determinant(); det.IsZero() {
		issues = append(issues, fmt.Errorf("mixing matrix is not invertible: %w", ErrInvalidMixingMatrix))
	}

	total := p.Rounds.Total()
	if p.Arc.Rows() != total || p.Arc.Cols() != width {
		issues = append(issues, fmt.Errorf("arc is %dx%d, want %dx%d: %w", p.Arc.Rows(), p.Arc.Cols(), total, width, ErrDimensionMismatch))
	}
	if p.OptimizedArc.Rows() != total || p.OptimizedArc.Cols() != width {
		issues = append(issues, fmt.Errorf("optimized arc is %dx%d, want %dx%d: %w", p.OptimizedArc.Rows(), p.OptimizedArc.Cols(), total, width, ErrDimensionMismatch))
	}

	issues = append(issues, p.validateOptimizedMds(width)...)

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func (p *Parameters) validateOptimizedMds(width int) []error {
	var issues []error
	sub := width - 1
	opt := &p.OptimizedMDS

	if opt.MHat.Size() != sub {
		issues = append(issues, fmt.Errorf("M_hat is %dx%d, want %dx%d: %w", opt.MHat.Rows(), opt.MHat.Cols(), sub, sub, ErrDimensionMismatch))
	}
	if opt.MHatInverse.Size() != sub {
		issues = append(issues, fmt.Errorf("M_hat_inverse is %dx%d, want %dx%d: %w", opt.MHatInverse.Rows(), opt.MHatInverse.Cols(), sub, sub, ErrDimensionMismatch))
	}
	if opt.V.Rows() != 1 || opt.V.Cols() != sub {
		issues = append(issues, fmt.Errorf("v is %dx%d, want 1x%d: %w", opt.V.Rows(), opt.V.Cols(), sub, ErrDimensionMismatch))
	}
	if opt.W.Rows() != sub || opt.W.Cols() != 1 {
		issues = append(issues, fmt.Errorf("w is %dx%d, want %dx1: %w", opt.W.Rows(), opt.W.Cols(), sub, ErrDimensionMismatch))
	}
	dense := []struct {
		name string
		m    SquareMatrix
	}{
		{"M_prime", opt.MPrime},
		{"M_double_prime", opt.MDoublePrime},
		{"M_inverse", opt.MInverse},
		{"M_i", opt.MI},
	}
	for _, d := range dense {
		if d.m.Size() != width {
			issues = append(issues, fmt.Errorf("%s is %dx%d, want %dx%d: %w", d.name, d.m.Rows(), d.m.Cols(), width, width, ErrDimensionMismatch))
		}
	}

	if len(opt.VCollection) != p.Rounds.Partial {
		issues = append(issues, fmt.Errorf("v collection has %d entries, want %d: %w", len(opt.VCollection), p.Rounds.Partial, ErrDimensionMismatch))
	}
	for i, col := range opt.VCollection {
		if col.Rows() != sub || col.Cols() != 1 {
			issues = append(issues, fmt.Errorf("v collection entry %d is %dx%d, want %dx1: %w", i, col.Rows(), col.Cols(), sub, ErrDimensionMismatch))
			break
		}
	}
	if len(opt.WHatCollection) != p.Rounds.Partial {
		issues = append(issues, fmt.Errorf("w_hat collection has %d entries, want %d: %w", len(opt.WHatCollection), p.Rounds.Partial, ErrDimensionMismatch))
	}
	for i, row := range opt.WHatCollection {
		if row.Rows() != 1 || row.Cols() != sub {
			issues = append(issues, fmt.Errorf("w_hat collection entry %d is %dx%d, want 1x%d: %w", i, row.Rows(), row.Cols(), sub, ErrDimensionMismatch))
			break
		}
	}
	return issues
}

const fingerprintLabel = "poseidon377-params-v1"

// Fingerprint returns a BLAKE2b-256 digest over a fixed-order canonical
// encoding of the full parameter set. Two sets compare equal exactly when
// their fingerprints do. The encoding exists only for this digest; it is not
// a serialization format.
func (p *Parameters) Fingerprint() [32]byte {
	var buf bytes.Buffer
	buf.WriteString(fingerprintLabel)

	modulus := []byte{}
	if p.Input.P != nil {
		modulus = p.Input.P.Bytes()
	}
	writeUint32(&buf, uint32(len(modulus)))
	buf.Write(modulus)

	writeUint32(&buf, uint32(p.Input.M))
	writeUint32(&buf, uint32(p.Input.T))
	writeUint32(&buf, uint32(p.Rounds.Full))
	writeUint32(&buf, uint32(p.Rounds.Partial))
	if p.Alpha.Inverse {
		writeUint32(&buf, 1)
	} else {
		writeUint32(&buf, 0)
	}
	writeUint32(&buf, p.Alpha.Exponent)

	writeMatrix(&buf, p.MDS.Matrix)
	writeMatrix(&buf, p.Arc.Matrix)
	writeMatrix(&buf, p.OptimizedArc.Matrix)

	opt := &p.OptimizedMDS
	writeMatrix(&buf, opt.MHat.Matrix)
	writeMatrix(&buf, opt.V)
	writeMatrix(&buf, opt.W)
	writeMatrix(&buf, opt.MPrime.Matrix)
	writeMatrix(&buf, opt.MDoublePrime.Matrix)
	writeMatrix(&buf, opt.MInverse.Matrix)
	writeMatrix(&buf, opt.MHatInverse.Matrix)
	m00 := opt.M00.Bytes()
	buf.Write(m00[:])
	writeMatrix(&buf, opt.MI.Matrix)

	writeUint32(&buf, uint32(len(opt.VCollection)))
	for _, col := range opt.VCollection {
		writeMatrix(&buf, col)
	}
	writeUint32(&buf, uint32(len(opt.WHatCollection)))
	for _, row := range opt.WHatCollection {
		writeMatrix(&buf, row)
	}

	return blake2b.Sum256(buf.Bytes())
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeMatrix(buf *bytes.Buffer, m Matrix) {
	writeUint32(buf, uint32(m.Rows()))
	writeUint32(buf, uint32(m.Cols()))
	for i := range m.elements {
		b := m.elements[i].Bytes()
		buf.Write(b[:])
	}
}
