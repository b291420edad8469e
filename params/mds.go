package params

import "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

// MdsMatrix wraps the t x t mixing matrix applied after each round's S-box
// layer.
type MdsMatrix struct {
	SquareMatrix
}

// Hat returns the submatrix with the first row and column removed.
func (m MdsMatrix) Hat() SquareMatrix {
	return m.Minor(0, 0)
}

// V returns the first row without its leading entry, as a 1 x (t-1) row
// vector.
func (m MdsMatrix) V() Matrix {
	t := m.Size()
	arena := make([]fr.Element, t-1)
	for j := 1; j < t; j++ {
		arena[j-1] = m.Get(0, j)
	}
	return Matrix{rows: 1, cols: t - 1, elements: arena}
}

// W returns the first column without its leading entry, as a (t-1) x 1
// column vector.
func (m MdsMatrix) W() Matrix {
	t := m.Size()
	arena := make([]fr.Element, t-1)
	for i := 1; i < t; i++ {
		arena[i-1] = m.Get(i, 0)
	}
	return Matrix{rows: t - 1, cols: 1, elements: arena}
}

// OptimizedMdsMatrices carries the precomputed factorization the optimized
// permutation consumes in the partial-round window.
//
// MPrime and MDoublePrime factor the mixing matrix as M = M' * M''. MI is
// the dense matrix applied once on entry to the partial window. The
// collections hold one sparse factor per partial round: VCollection[j] is
// the (t-1) x 1 column tail and WHatCollection[j] the 1 x (t-1) row tail of
// sparse factor j. The permutation consumes factor P-1-r at middle partial
// round r and factor 0 at the final partial round.
type OptimizedMdsMatrices struct {
	MHat         SquareMatrix
	V            Matrix
	W            Matrix
	MPrime       SquareMatrix
	MDoublePrime SquareMatrix
	MInverse     SquareMatrix
	MHatInverse  SquareMatrix
	M00          fr.Element
	MI           SquareMatrix

	VCollection    []Matrix
	WHatCollection []Matrix
}
