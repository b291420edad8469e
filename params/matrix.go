package params

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Matrix is a dense matrix over the bls12-377 scalar field. Elements live in
// a single row-major slice; the struct header carries the shape. Operations
// allocate fresh storage for their results and never mutate their operands.
type Matrix struct {
	rows, cols int
	elements   []fr.Element
}

// NewMatrix builds a rows x cols matrix from row-major elements. The slice
// is copied. Fails when the element count does not match the shape.
func NewMatrix(rows, cols int, elements []fr.Element) (Matrix, error) {
	if rows < 1 || cols < 1 {
		return Matrix{}, fmt.Errorf("poseidon377: new matrix: shape %dx%d: %w", rows, cols, ErrDimensionMismatch)
	}
	if len(elements) != rows*cols {
		return Matrix{}, fmt.Errorf("poseidon377: new matrix: %d elements for shape %dx%d: %w", len(elements), rows, cols, ErrDimensionMismatch)
	}
	arena := make([]fr.Element, len(elements))
	copy(arena, elements)
	return Matrix{rows: rows, cols: cols, elements: arena}, nil
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.cols }

// Get returns element (i, j). Out-of-range access is a programmer error and
// panics.
func (m Matrix) Get(i, j int) fr.Element {
	m.checkIndex(i, j)
	return m.elements[i*m.cols+j]
}

// Set writes element (i, j). Out-of-range access is a programmer error and
// panics.
func (m *Matrix) Set(i, j int, v fr.Element) {
	m.checkIndex(i, j)
	m.elements[i*m.cols+j] = v
}

func (m Matrix) checkIndex(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("poseidon377: matrix index (%d,%d) out of range for shape %dx%d", i, j, m.rows, m.cols))
	}
}

// Elements returns the row-major backing slice. It is shared with the
// matrix; callers must treat it as read-only.
func (m Matrix) Elements() []fr.Element {
	return m.elements
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	arena := make([]fr.Element, len(m.elements))
	copy(arena, m.elements)
	return Matrix{rows: m.rows, cols: m.cols, elements: arena}
}

// Transpose returns the transpose, swapping the shape.
func (m Matrix) Transpose() Matrix {
	arena := make([]fr.Element, len(m.elements))
	for i := 0; i < m.rows; i++ {
		rowOffset := i * m.cols
		for j := 0; j < m.cols; j++ {
			arena[j*m.rows+i] = m.elements[rowOffset+j]
		}
	}
	return Matrix{rows: m.cols, cols: m.rows, elements: arena}
}

// Add returns m + n. Fails unless the shapes agree.
func (m Matrix) Add(n Matrix) (Matrix, error) {
	if m.rows != n.rows || m.cols != n.cols {
		return Matrix{}, fmt.Errorf("poseidon377: add %dx%d and %dx%d: %w", m.rows, m.cols, n.rows, n.cols, ErrDimensionMismatch)
	}
	arena := make([]fr.Element, len(m.elements))
	for i := range arena {
		arena[i].Add(&m.elements[i], &n.elements[i])
	}
	return Matrix{rows: m.rows, cols: m.cols, elements: arena}, nil
}

// Hadamard returns the element-wise product. Fails unless the shapes agree.
func (m Matrix) Hadamard(n Matrix) (Matrix, error) {
	if m.rows != n.rows || m.cols != n.cols {
		return Matrix{}, fmt.Errorf("poseidon377: hadamard %dx%d and %dx%d: %w", m.rows, m.cols, n.rows, n.cols, ErrDimensionMismatch)
	}
	arena := make([]fr.Element, len(m.elements))
	for i := range arena {
		arena[i].Mul(&m.elements[i], &n.elements[i])
	}
	return Matrix{rows: m.rows, cols: m.cols, elements: arena}, nil
}

// ScalarMul returns s * m.
func (m Matrix) ScalarMul(s fr.Element) Matrix {
	arena := make([]fr.Element, len(m.elements))
	for i := range arena {
		arena[i].Mul(&s, &m.elements[i])
	}
	return Matrix{rows: m.rows, cols: m.cols, elements: arena}
}

// Equal reports whether both matrices have the same shape and elements.
func (m Matrix) Equal(n Matrix) bool {
	if m.rows != n.rows || m.cols != n.cols {
		return false
	}
	for i := range m.elements {
		if !m.elements[i].Equal(&n.elements[i]) {
			return false
		}
	}
	return true
}

// MatMul returns the product lhs * rhs. Fails unless the inner dimensions
// agree (lhs is a x b, rhs is b x c, result is a x c).
func MatMul(lhs, rhs Matrix) (Matrix, error) {
	if lhs.cols != rhs.rows {
		return Matrix{}, fmt.Errorf("poseidon377: mat mul %dx%d by %dx%d: %w", lhs.rows, lhs.cols, rhs.rows, rhs.cols, ErrDimensionMismatch)
	}
	rhsT := rhs.Transpose()
	arena := make([]fr.Element, 0, lhs.rows*rhs.cols)
	for i := 0; i < lhs.rows; i++ {
		row := lhs.elements[i*lhs.cols : (i+1)*lhs.cols]
		for j := 0; j < rhs.cols; j++ {
			col := rhsT.elements[j*rhsT.cols : (j+1)*rhsT.cols]
			arena = append(arena, dotProduct(row, col))
		}
	}
	return Matrix{rows: lhs.rows, cols: rhs.cols, elements: arena}, nil
}

// dotProduct computes the inner product of two equal-length vectors.
// Mismatched lengths are a programmer error and panic.
func dotProduct(a, b []fr.Element) fr.Element {
	if len(a) != len(b) {
		panic(fmt.Sprintf("poseidon377: dot product of vectors with lengths %d and %d", len(a), len(b)))
	}
	var sum fr.Element
	for i := range a {
		var prod fr.Element
		prod.Mul(&a[i], &b[i])
		sum.Add(&sum, &prod)
	}
	return sum
}
