package params

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// SquareMatrix is a Matrix constrained to square shape, which is what the
// determinant, cofactor and inverse operations require.
type SquareMatrix struct {
	Matrix
}

// NewSquareMatrix builds an n x n matrix from row-major elements, inferring
// n from the length. Fails when the length is not a perfect square.
func NewSquareMatrix(elements []fr.Element) (SquareMatrix, error) {
	n := intSqrt(len(elements))
	if n < 1 || n*n != len(elements) {
		return SquareMatrix{}, fmt.Errorf("poseidon377: new square matrix: %d elements is not a square count: %w", len(elements), ErrDimensionMismatch)
	}
	m, err := NewMatrix(n, n, elements)
	if err != nil {
		return SquareMatrix{}, err
	}
	return SquareMatrix{Matrix: m}, nil
}

func intSqrt(n int) int {
	r := 0
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// Identity returns the n x n identity matrix.
func Identity(n int) SquareMatrix {
	arena := make([]fr.Element, n*n)
	for i := 0; i < n; i++ {
		arena[i*n+i].SetOne()
	}
	return SquareMatrix{Matrix: Matrix{rows: n, cols: n, elements: arena}}
}

// Size returns the dimension n.
func (m SquareMatrix) Size() int { return m.rows }

// Transpose returns the transpose as a square matrix.
func (m SquareMatrix) Transpose() SquareMatrix {
	return SquareMatrix{Matrix: m.Matrix.Transpose()}
}

// Clone returns a deep copy.
func (m SquareMatrix) Clone() SquareMatrix {
	return SquareMatrix{Matrix: m.Matrix.Clone()}
}

// Mul returns the product m * n. Fails unless the dimensions agree.
func (m SquareMatrix) Mul(n SquareMatrix) (SquareMatrix, error) {
	prod, err := MatMul(m.Matrix, n.Matrix)
	if err != nil {
		return SquareMatrix{}, err
	}
	return SquareMatrix{Matrix: prod}, nil
}

// Minor returns the submatrix obtained by deleting row i and column j.
// The matrix must be at least 2x2; out-of-range indices panic.
func (m SquareMatrix) Minor(i, j int) SquareMatrix {
	m.checkIndex(i, j)
	n := m.rows
	if n < 2 {
		panic("poseidon377: minor of a 1x1 matrix")
	}
	arena := make([]fr.Element, 0, (n-1)*(n-1))
	for r := 0; r < n; r++ {
		if r == i {
			continue
		}
		rowOffset := r * n
		for c := 0; c < n; c++ {
			if c == j {
				continue
			}
			arena = append(arena, m.elements[rowOffset+c])
		}
	}
	return SquareMatrix{Matrix: Matrix{rows: n - 1, cols: n - 1, elements: arena}}
}

// Determinant computes the determinant by cofactor expansion along the first
// row. Exponential in the dimension, which is fine for the handful of small
// matrices parameter generation works with.
func (m SquareMatrix) Determinant() fr.Element {
	switch m.rows {
	case 1:
		return m.elements[0]
	case 2:
		var ad, bc, det fr.Element
		ad.Mul(&m.elements[0], &m.elements[3])
		bc.Mul(&m.elements[1], &m.elements[2])
		det.Sub(&ad, &bc)
		return det
	default:
		var det fr.Element
		for j := 0; j < m.cols; j++ {
			minorDet := m.Minor(0, j).Determinant()
			var term fr.Element
			term.Mul(&m.elements[j], &minorDet)
			if j%2 == 1 {
				term.Neg(&term)
			}
			det.Add(&det, &term)
		}
		return det
	}
}

// Cofactors returns the matrix of signed minors, entry (i, j) carrying the
// sign (-1)^(i+j). For a 1x1 matrix the single cofactor is 1.
func (m SquareMatrix) Cofactors() SquareMatrix {
	n := m.rows
	if n == 1 {
		one := fr.One()
		return SquareMatrix{Matrix: Matrix{rows: 1, cols: 1, elements: []fr.Element{one}}}
	}
	arena := make([]fr.Element, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := m.Minor(i, j).Determinant()
			if (i+j)%2 == 1 {
				c.Neg(&c)
			}
			arena = append(arena, c)
		}
	}
	return SquareMatrix{Matrix: Matrix{rows: n, cols: n, elements: arena}}
}

// Inverse computes the inverse as the transposed cofactor matrix scaled by
// the inverse determinant. Fails when the determinant is zero.
func (m SquareMatrix) Inverse() (SquareMatrix, error) {
	det := m.Determinant()
	if det.IsZero() {
		return SquareMatrix{}, fmt.Errorf("poseidon377: inverse of %dx%d matrix: %w", m.rows, m.cols, ErrSingularMatrix)
	}
	var detInv fr.Element
	detInv.Inverse(&det)
	adjugate := m.Cofactors().Transpose()
	return SquareMatrix{Matrix: adjugate.ScalarMul(detInv)}, nil
}
