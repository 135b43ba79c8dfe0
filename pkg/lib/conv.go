package lib

import (
	"cmp"
	"slices"
)

// Map: applies f to every element of the slice
func Map[V any, R any](vs []V, f func(V) R) []R {
	result := make([]R, len(vs))

	for index, v := range vs {
		result[index] = f(v)
	}

	return result
}

// Filter: the elements of the slice f returns true for, in order
func Filter[V any](vs []V, f func(V) bool) []V {
	result := make([]V, 0)

	for _, v := range vs {
		if f(v) {
			result = append(result, v)
		}
	}

	return result
}

// SortedKeys: the keys of the map in ascending order
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)
	return keys
}

// SortedValues: the values of the map ordered by their key
func SortedValues[K cmp.Ordered, V any](m map[K]V) []V {
	return Map(SortedKeys(m), func(k K) V {
		return m[k]
	})
}
