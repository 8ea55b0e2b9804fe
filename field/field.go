package field

import "math/big"

// Field is the arithmetic shared by the pivoting code. Values are treated as
// immutable: every operation returns a fresh value and never modifies its
// arguments.
type Field[T any] interface {
	Zero() T
	One() T
	FromInt(n int64) T
	FromRat(r *big.Rat) T
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Div(a, b T) T
	Neg(a T) T
	Abs(a T) T
	// Compare returns -1, 0 or +1. Floating fields report 0 for values
	// within their tolerance of each other.
	Compare(a, b T) int
	Sign(a T) int
	// Epsilon is the comparison tolerance, zero for exact fields.
	Epsilon() T
	Float64(a T) float64
	Format(a T) string
}

// Sum adds up values in order.
func Sum[T any](f Field[T], values []T) T {
	total := f.Zero()
	for _, v := range values {
		total = f.Add(total, v)
	}
	return total
}

// IsZero reports whether a compares equal to zero in f.
func IsZero[T any](f Field[T], a T) bool {
	return f.Sign(a) == 0
}

// Max returns the larger of a and b, preferring a on ties.
func Max[T any](f Field[T], a, b T) T {
	if f.Compare(b, a) > 0 {
		return b
	}
	return a
}
