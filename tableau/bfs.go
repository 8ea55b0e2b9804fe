package tableau

import (
	"sort"
	"strconv"
	"strings"

	"nash/field"
)

type Entry[T any] struct {
	Variable int
	Value    T
}

// BFS is a basic feasible solution in sparse form: the basic variables with a
// nonzero value, ordered by variable.
type BFS[T any] struct {
	f       field.Field[T]
	size    int
	entries []Entry[T]
}

func (t *Tableau[T]) BFS() BFS[T] {
	entries := make([]Entry[T], 0, len(t.basis))
	for r, v := range t.basis {
		if t.f.Sign(t.values[r]) != 0 {
			entries = append(entries, Entry[T]{Variable: v, Value: t.values[r]})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Variable < entries[j].Variable })
	return BFS[T]{f: t.f, size: len(t.basis), entries: entries}
}

func (b BFS[T]) Entries() []Entry[T] { return append([]Entry[T](nil), b.entries...) }

func (b BFS[T]) Len() int { return len(b.entries) }

// Value of variable v, zero when absent.
func (b BFS[T]) Value(v int) T {
	i := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].Variable >= v })
	if i < len(b.entries) && b.entries[i].Variable == v {
		return b.entries[i].Value
	}
	return b.f.Zero()
}

// Primal is the value of x_i.
func (b BFS[T]) Primal(i int) T { return b.Value(b.size + i) }

// Equal compares supports exactly and values within the field's tolerance.
func (b BFS[T]) Equal(other BFS[T]) bool {
	if len(b.entries) != len(other.entries) {
		return false
	}
	for i, e := range b.entries {
		o := other.entries[i]
		if e.Variable != o.Variable || b.f.Compare(e.Value, o.Value) != 0 {
			return false
		}
	}
	return true
}

func (b BFS[T]) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range b.entries {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(variableName(e.Variable, b.size))
		sb.WriteString("=")
		sb.WriteString(b.f.Format(e.Value))
	}
	sb.WriteString("}")
	return sb.String()
}

func variableName(v, n int) string {
	switch {
	case v < n:
		return "w" + strconv.Itoa(v)
	case v < 2*n:
		return "x" + strconv.Itoa(v-n)
	default:
		return "z0"
	}
}
