package utils

// Take returns at most n leading elements of items. The result shares the
// backing array, callers that append must copy first.
func Take[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// UniqueStrings keeps the first occurrence of every non-empty value.
func UniqueStrings(items ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range items {
		for _, s := range group {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
