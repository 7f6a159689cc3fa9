// Package normalization maps loosely written configuration values onto
// typed enums.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Enum resolves user input such as " Content_Hash " to a typed value.
// Aliases may share a value; lookups are case and whitespace insensitive.
type Enum[T comparable] struct {
	name     string
	values   map[string]T
	keys     []string
	fallback T
}

// NewEnum builds an Enum called name. fallback is returned by Normalize for
// unknown input.
func NewEnum[T comparable](name string, values map[string]T, fallback T) *Enum[T] {
	e := &Enum[T]{
		name:     name,
		values:   make(map[string]T, len(values)),
		keys:     make([]string, 0, len(values)),
		fallback: fallback,
	}
	for k, v := range values {
		key := clean(k)
		e.values[key] = v
		e.keys = append(e.keys, key)
	}
	slices.Sort(e.keys)
	return e
}

// Normalize returns the value for raw, or the fallback.
func (e *Enum[T]) Normalize(raw string) T {
	if v, ok := e.values[clean(raw)]; ok {
		return v
	}
	return e.fallback
}

// Parse is Normalize without the fallback.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if v, ok := e.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", e.name, raw, strings.Join(e.keys, ", "))
}

// Keys lists every accepted spelling, sorted.
func (e *Enum[T]) Keys() []string {
	return slices.Clone(e.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
