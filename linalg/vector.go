package linalg

import "nash/field"

// Vector is a dense vector of field values.
type Vector[T any] []T

// NewVector returns a zero vector of length n.
func NewVector[T any](f field.Field[T], n int) Vector[T] {
	v := make(Vector[T], n)
	for i := range v {
		v[i] = f.Zero()
	}
	return v
}

// Fill returns a vector of length n with every entry set to value.
func Fill[T any](n int, value T) Vector[T] {
	v := make(Vector[T], n)
	for i := range v {
		v[i] = value
	}
	return v
}

// Clone copies the vector. Field values are immutable so a shallow copy is enough.
func (v Vector[T]) Clone() Vector[T] {
	c := make(Vector[T], len(v))
	copy(c, v)
	return c
}

// Dot returns the inner product of a and b.
func Dot[T any](f field.Field[T], a, b Vector[T]) T {
	if len(a) != len(b) {
		panic("linalg: dot of vectors with different lengths")
	}
	sum := f.Zero()
	for i := range a {
		if f.Sign(a[i]) == 0 || f.Sign(b[i]) == 0 {
			continue
		}
		sum = f.Add(sum, f.Mul(a[i], b[i]))
	}
	return sum
}

// Negate returns -v.
func Negate[T any](f field.Field[T], v Vector[T]) Vector[T] {
	n := make(Vector[T], len(v))
	for i, x := range v {
		n[i] = f.Neg(x)
	}
	return n
}
