package entities

// Flatten turns a two-level mapping into one record per leaf value.
func Flatten[K1, K2 comparable, V, R any](nested map[K1]map[K2]V, fn func(K1, K2, V) R) []R {
	size := 0
	for _, inner := range nested {
		size += len(inner)
	}

	out := make([]R, 0, size)
	for outer, inner := range nested {
		for key, value := range inner {
			out = append(out, fn(outer, key, value))
		}
	}

	return out
}

// FlattenMap turns a single-level mapping into one record per entry.
func FlattenMap[K comparable, V, R any](m map[K]V, fn func(K, V) R) []R {
	out := make([]R, 0, len(m))
	for key, value := range m {
		out = append(out, fn(key, value))
	}

	return out
}
