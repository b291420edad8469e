package paramgen

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Zondax/poseidon377/params"
)

// GenerateMdsMatrix builds the t x t Cauchy mixing matrix with entries
// 1/(x_i + y_j) for x_i = i and y_j = t + j. With these sequences every
// denominator is distinct and nonzero, so the matrix is invertible; the
// determinant is still checked before the matrix is accepted.
func GenerateMdsMatrix(input params.InputParameters) (params.MdsMatrix, error) {
	t := input.T
	if t < 2 {
		return params.MdsMatrix{}, fmt.Errorf("poseidon377: mds generation needs width at least 2, got %d: %w", t, params.ErrDimensionMismatch)
	}
	elements := make([]fr.Element, 0, t*t)
	for i := 0; i < t; i++ {
		for j := 0; j < t; j++ {
			var denom fr.Element
			denom.SetUint64(uint64(i + t + j))
			var entry fr.Element
			entry.Inverse(&denom)
			elements = append(elements, entry)
		}
	}
	square, err := params.NewSquareMatrix(elements)
	if err != nil {
		return params.MdsMatrix{}, err
	}
	mds := params.MdsMatrix{SquareMatrix: square}
	if det := mds.Determinant(); det.IsZero() {
		return params.MdsMatrix{}, fmt.Errorf("poseidon377: cauchy matrix for t=%d is singular: %w", t, params.ErrInvalidMixingMatrix)
	}
	return mds, nil
}

// ComputeOptimizedMdsMatrices precomputes the factorization of the mixing
// matrix that the optimized permutation consumes: the M = M' * M''
// split, the dense matrix applied on entry to the partial window, and one
// sparse factor per partial round.
func ComputeOptimizedMdsMatrices(mds params.MdsMatrix, rounds params.RoundNumbers) (params.OptimizedMdsMatrices, error) {
	t := mds.Size()
	if t < 2 {
		return params.OptimizedMdsMatrices{}, fmt.Errorf("poseidon377: optimized mds needs width at least 2, got %d: %w", t, params.ErrDimensionMismatch)
	}
	if rounds.Partial < 1 {
		return params.OptimizedMdsMatrices{}, fmt.Errorf("poseidon377: optimized mds needs at least one partial round, got %d: %w", rounds.Partial, params.ErrDimensionMismatch)
	}

	mHat := mds.Hat()
	v := mds.V()
	w := mds.W()
	m00 := mds.Get(0, 0)

	mInverse, err := mds.Inverse()
	if err != nil {
		return params.OptimizedMdsMatrices{}, fmt.Errorf("poseidon377: mixing matrix is not invertible: %w", params.ErrInvalidMixingMatrix)
	}
	mHatInverse, err := mHat.Inverse()
	if err != nil {
		return params.OptimizedMdsMatrices{}, fmt.Errorf("poseidon377: mixing matrix hat block is not invertible: %w", params.ErrInvalidMixingMatrix)
	}

	mPrime := blockDiagOne(mHat)
	wHat := mustMat(params.MatMul(mHatInverse.Matrix, w))
	mDoublePrime := buildDoublePrime(m00, v, wHat, t)

	// Walk the sparse factorization: before iteration j the running product
	// equals diag(1, hat^j) * M, so its first column tail is hat^j * w and
	// its hat block is hat^(j+1).
	vCollection := make([]params.Matrix, 0, rounds.Partial)
	wHatCollection := make([]params.Matrix, 0, rounds.Partial)
	mMul := mds.SquareMatrix
	var mi params.SquareMatrix
	for j := 0; j < rounds.Partial; j++ {
		hat := mMul.Minor(0, 0)

		colTail := make([]fr.Element, t-1)
		for i := 1; i < t; i++ {
			colTail[i-1] = mMul.Get(i, 0)
		}
		vCollection = append(vCollection, mustMat(params.NewMatrix(t-1, 1, colTail)))

		hatInverse, err := hat.Inverse()
		if err != nil {
			return params.OptimizedMdsMatrices{}, fmt.Errorf("poseidon377: sparse factor %d: hat block is not invertible: %w", j, params.ErrInvalidMixingMatrix)
		}
		rowTail := make([]fr.Element, t-1)
		for i := 1; i < t; i++ {
			rowTail[i-1] = mMul.Get(0, i)
		}
		wHatRow := mustMat(params.MatMul(mustMat(params.NewMatrix(1, t-1, rowTail)), hatInverse.Matrix))
		wHatCollection = append(wHatCollection, wHatRow)

		mi = blockDiagOne(hat)
		next, err := mi.Mul(mds.SquareMatrix)
		if err != nil {
			return params.OptimizedMdsMatrices{}, err
		}
		mMul = next
	}

	return params.OptimizedMdsMatrices{
		MHat:           mHat,
		V:              v,
		W:              w,
		MPrime:         mPrime,
		MDoublePrime:   mDoublePrime,
		MInverse:       mInverse,
		MHatInverse:    mHatInverse,
		M00:            m00,
		MI:             mi,
		VCollection:    vCollection,
		WHatCollection: wHatCollection,
	}, nil
}

// blockDiagOne embeds an (t-1) x (t-1) block into the lower right of a t x t
// matrix whose first row and column are those of the identity.
func blockDiagOne(block params.SquareMatrix) params.SquareMatrix {
	t := block.Size() + 1
	m := params.Identity(t)
	for i := 0; i < t-1; i++ {
		for j := 0; j < t-1; j++ {
			m.Set(i+1, j+1, block.Get(i, j))
		}
	}
	return m
}

// buildDoublePrime assembles M'': M00 in the corner, v along the first row,
// w_hat down the first column, identity elsewhere.
func buildDoublePrime(m00 fr.Element, v, wHat params.Matrix, t int) params.SquareMatrix {
	m := params.Identity(t)
	m.Set(0, 0, m00)
	for j := 1; j < t; j++ {
		m.Set(0, j, v.Get(0, j-1))
	}
	for i := 1; i < t; i++ {
		m.Set(i, 0, wHat.Get(i-1, 0))
	}
	return m
}

// mustMat unwraps matrix constructions whose shapes are computed in this
// package and cannot mismatch.
func mustMat(m params.Matrix, err error) params.Matrix {
	if err != nil {
		panic(err)
	}
	return m
}
