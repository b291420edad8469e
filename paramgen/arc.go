package paramgen

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Zondax/poseidon377/params"
)

// transcriptLabel separates this protocol from any other merlin user.
const transcriptLabel = "poseidon-paramgen"

// GenerateArcMatrix derives the full table of additive round constants, one
// row per round. The transcript is seeded with the complete instance
// description in fixed order, so any change to the field, state width,
// security level, round numbers or alpha yields an unrelated constant
// stream.
func GenerateArcMatrix(input params.InputParameters, rounds params.RoundNumbers, alpha params.Alpha) params.ArcMatrix {
	tr := NewTranscript(transcriptLabel)
	tr.Absorb("p", input.P.Bytes())
	tr.AbsorbUint64("t", uint64(input.T))
	tr.AbsorbUint64("M", uint64(input.M))
	tr.AbsorbUint64("r_F", uint64(rounds.Full))
	tr.AbsorbUint64("r_P", uint64(rounds.Partial))
	if alpha.Inverse {
		tr.Absorb("alpha", []byte("inverse"))
	} else {
		tr.AbsorbUint64("alpha", uint64(alpha.Exponent))
	}

	total := rounds.Total()
	elements := make([]fr.Element, 0, total*input.T)
	for i := 0; i < total*input.T; i++ {
		elements = append(elements, tr.DeriveElement("round-constant"))
	}
	return params.ArcMatrix{Matrix: mustMat(params.NewMatrix(total, input.T, elements))}
}

// OptimizeArcMatrix rearranges round constants for the optimized schedule.
// Working backward over the partial window, each round's constants are
// pulled through the inverse mixing matrix: the tail components fold into
// the previous row and only the component for state element 0 stays in
// place. Rows belonging to full rounds are left untouched.
func OptimizeArcMatrix(arc params.ArcMatrix, mds params.MdsMatrix, rounds params.RoundNumbers) (params.OptimizedArcMatrix, error) {
	t := arc.Cols()
	if arc.Rows() != rounds.Total() {
		return params.OptimizedArcMatrix{}, fmt.Errorf("poseidon377: arc has %d rows for %d rounds: %w", arc.Rows(), rounds.Total(), params.ErrDimensionMismatch)
	}
	if mds.Size() != t {
		return params.OptimizedArcMatrix{}, fmt.Errorf("poseidon377: %dx%d mixing matrix against width-%d constants: %w", mds.Rows(), mds.Cols(), t, params.ErrInvalidMixingMatrix)
	}
	mInverse, err := mds.Inverse()
	if err != nil {
		return params.OptimizedArcMatrix{}, fmt.Errorf("poseidon377: mixing matrix is not invertible: %w", params.ErrInvalidMixingMatrix)
	}

	halfFull := rounds.Full / 2
	out := arc.Matrix.Clone()
	for r := rounds.Total() - 2 - halfFull; r >= halfFull; r-- {
		next := make([]fr.Element, t)
		for i := 0; i < t; i++ {
			next[i] = out.Get(r+1, i)
		}
		pulled := mustMat(params.MatMul(mInverse.Matrix, mustMat(params.NewMatrix(t, 1, next))))

		for i := 1; i < t; i++ {
			folded := out.Get(r, i)
			tail := pulled.Get(i, 0)
			folded.Add(&folded, &tail)
			out.Set(r, i, folded)
			out.Set(r+1, i, fr.Element{})
		}
		out.Set(r+1, 0, pulled.Get(0, 0))
	}
	return params.OptimizedArcMatrix{Matrix: out}, nil
}
