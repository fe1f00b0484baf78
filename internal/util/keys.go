package util

import "sort"

// OrderedKeys returns the keys of a string-keyed map in sorted order. Used
// wherever map iteration order would otherwise make output (error messages,
// String() methods, test assertions) nondeterministic.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Alphabetized returns the elements of an ISet[string] in sorted order.
func Alphabetized[T ~string](s ISet[T]) []T {
	elems := make([]T, 0, s.Len())
	switch set := any(s).(type) {
	case StringSet:
		for _, e := range set.Elements() {
			elems = append(elems, T(e))
		}
	default:
		s.Any(func(v T) bool {
			elems = append(elems, v)
			return false
		})
	}
	sort.Slice(elems, func(i, j int) bool { return elems[i] < elems[j] })
	return elems
}
