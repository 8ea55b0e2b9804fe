package utils

// FindIndex returns the position of the first occurrence of item, or -1.
func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Indices returns the positions of the elements for which keep is true.
func Indices[T any](slice []T, keep func(T) bool) []int {
	var idx []int
	for i, v := range slice {
		if keep(v) {
			idx = append(idx, i)
		}
	}
	return idx
}
