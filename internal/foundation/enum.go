package foundation

import (
	"fmt"
	"slices"
	"strings"
)

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalizer maps loosely-written configuration strings onto enum values.
// Matching ignores case, surrounding whitespace, and treats '-' and '_' alike.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
}

// NewNormalizer creates a normalizer for the named setting.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[strings.ReplaceAll(normalizeKey(k), "-", "_")] = v
	}
	return &Normalizer[T]{name: name, validValues: normalized, defaultValue: defaultValue}
}

// Normalize returns the matching value, the default for an empty string, and
// an error for anything unrecognised.
func (n *Normalizer[T]) Normalize(raw string) (T, error) {
	cleaned := strings.ReplaceAll(normalizeKey(raw), "-", "_")
	if cleaned == "" {
		return n.defaultValue, nil
	}
	if value, exists := n.validValues[cleaned]; exists {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q (valid: %s)", n.name, raw, strings.Join(n.Keys(), ", "))
}

// Keys returns the accepted spellings, sorted.
func (n *Normalizer[T]) Keys() []string {
	keys := make([]string, 0, len(n.validValues))
	for k := range n.validValues {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
