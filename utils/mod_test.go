package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]int{4, 7, 7}, 7))
	require.Equal(t, -1, FindIndex([]string{"a"}, "b"))
	require.Equal(t, -1, FindIndex([]int(nil), 0))
}

func TestIndices(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	require.Equal(t, []int{0, 2}, Indices([]int{4, 7, 2}, even))
	require.Nil(t, Indices([]int{1, 3}, even))
}
