package linalg

import (
	"errors"
	"strings"

	"nash/field"
)

var ErrSingular = errors.New("linalg: matrix is singular")

// Matrix is a dense row-major matrix over a field.
type Matrix[T any] struct {
	f    field.Field[T]
	rows int
	cols int
	data []T
}

// NewMatrix returns a rows×cols zero matrix.
func NewMatrix[T any](f field.Field[T], rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 {
		panic("linalg: negative matrix dimensions")
	}
	data := make([]T, rows*cols)
	for i := range data {
		data[i] = f.Zero()
	}
	return &Matrix[T]{f: f, rows: rows, cols: cols, data: data}
}

// Identity returns the n×n identity matrix.
func Identity[T any](f field.Field[T], n int) *Matrix[T] {
	m := NewMatrix(f, n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = f.One()
	}
	return m
}

func (m *Matrix[T]) Field() field.Field[T] { return m.f }

func (m *Matrix[T]) Rows() int { return m.rows }

func (m *Matrix[T]) Cols() int { return m.cols }

func (m *Matrix[T]) At(i, j int) T {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

func (m *Matrix[T]) Set(i, j int, v T) {
	m.check(i, j)
	m.data[i*m.cols+j] = v
}

// Accumulate adds v to the entry at (i, j).
func (m *Matrix[T]) Accumulate(i, j int, v T) {
	m.check(i, j)
	m.data[i*m.cols+j] = m.f.Add(m.data[i*m.cols+j], v)
}

// Row returns a copy of row i.
func (m *Matrix[T]) Row(i int) Vector[T] {
	m.check(i, 0)
	return Vector[T](m.data[i*m.cols : (i+1)*m.cols]).Clone()
}

// Column returns a copy of column j.
func (m *Matrix[T]) Column(j int) Vector[T] {
	m.check(0, j)
	c := make(Vector[T], m.rows)
	for i := 0; i < m.rows; i++ {
		c[i] = m.data[i*m.cols+j]
	}
	return c
}

func (m *Matrix[T]) Clone() *Matrix[T] {
	data := make([]T, len(m.data))
	copy(data, m.data)
	return &Matrix[T]{f: m.f, rows: m.rows, cols: m.cols, data: data}
}

// ScaleRow multiplies row r by k.
func (m *Matrix[T]) ScaleRow(r int, k T) {
	m.check(r, 0)
	row := m.data[r*m.cols : (r+1)*m.cols]
	for j := range row {
		row[j] = m.snap(m.f.Mul(row[j], k))
	}
}

// AddRowMultiple performs row dst += k * row src.
func (m *Matrix[T]) AddRowMultiple(dst, src int, k T) {
	m.check(dst, 0)
	m.check(src, 0)
	if m.f.Sign(k) == 0 {
		return
	}
	to := m.data[dst*m.cols : (dst+1)*m.cols]
	from := m.data[src*m.cols : (src+1)*m.cols]
	for j := range to {
		to[j] = m.snap(m.f.Add(to[j], m.f.Mul(k, from[j])))
	}
}

func (m *Matrix[T]) SwapRows(a, b int) {
	m.check(a, 0)
	m.check(b, 0)
	if a == b {
		return
	}
	for j := 0; j < m.cols; j++ {
		m.data[a*m.cols+j], m.data[b*m.cols+j] = m.data[b*m.cols+j], m.data[a*m.cols+j]
	}
}

// MulVec returns m·v.
func (m *Matrix[T]) MulVec(v Vector[T]) Vector[T] {
	if len(v) != m.cols {
		panic("linalg: matrix-vector dimension mismatch")
	}
	out := make(Vector[T], m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = Dot(m.f, m.data[i*m.cols:(i+1)*m.cols], v)
	}
	return out
}

// Inverse computes the inverse of a square matrix by Gauss-Jordan
// elimination, choosing the largest remaining entry of each column as pivot.
func (m *Matrix[T]) Inverse() (*Matrix[T], error) {
	if m.rows != m.cols {
		panic("linalg: inverse of a non-square matrix")
	}
	n := m.rows
	work := m.Clone()
	inv := Identity(m.f, n)
	for c := 0; c < n; c++ {
		pivot := -1
		for r := c; r < n; r++ {
			if m.f.Sign(work.At(r, c)) == 0 {
				continue
			}
			if pivot < 0 || m.f.Compare(m.f.Abs(work.At(r, c)), m.f.Abs(work.At(pivot, c))) > 0 {
				pivot = r
			}
		}
		if pivot < 0 {
			return nil, ErrSingular
		}
		work.SwapRows(c, pivot)
		inv.SwapRows(c, pivot)

		k := m.f.Div(m.f.One(), work.At(c, c))
		work.ScaleRow(c, k)
		inv.ScaleRow(c, k)
		for r := 0; r < n; r++ {
			if r == c {
				continue
			}
			factor := m.f.Neg(work.At(r, c))
			work.AddRowMultiple(r, c, factor)
			inv.AddRowMultiple(r, c, factor)
		}
	}
	return inv, nil
}

func (m *Matrix[T]) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.f.Format(m.data[i*m.cols+j]))
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// snap replaces values within the field's tolerance of zero by an exact zero.
func (m *Matrix[T]) snap(v T) T {
	if m.f.Sign(v) == 0 {
		return m.f.Zero()
	}
	return v
}

func (m *Matrix[T]) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || (m.cols > 0 && j >= m.cols) {
		panic("linalg: index out of range")
	}
}
