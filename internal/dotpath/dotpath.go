// Package dotpath reads nested values out of decoded YAML/JSON trees using
// "a.b.0.c" style keys.
//
// Lookups never panic and never allocate intermediate values: a missing key,
// an out-of-range index or a traversal through a scalar all yield the
// caller's default.
package dotpath

import (
	"strconv"
	"strings"
)

// MaxDepth bounds the number of segments a key may have.
const MaxDepth = 32

// Lookup resolves key against root. A key without dots is a plain map lookup,
// so keys that themselves contain no separator behave exactly like m[key].
func Lookup(root any, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	segments := strings.Split(key, ".")
	if len(segments) > MaxDepth {
		return nil, false
	}
	cur := root
	for _, seg := range segments {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func step(cur any, seg string) (any, bool) {
	switch node := cur.(type) {
	case map[string]any:
		v, ok := node[seg]
		return v, ok
	case map[any]any:
		v, ok := node[seg]
		return v, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(node) {
			return nil, false
		}
		return node[i], true
	case []map[string]any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(node) {
			return nil, false
		}
		return node[i], true
	default:
		return nil, false
	}
}

// Get returns the value at key or def.
func Get(root any, key string, def any) any {
	if v, ok := Lookup(root, key); ok {
		return v
	}
	return def
}

// String returns the value at key when it is a string, def otherwise.
func String(root any, key, def string) string {
	if s, ok := Get(root, key, nil).(string); ok {
		return s
	}
	return def
}

// Bool returns the value at key when it is a bool, def otherwise.
func Bool(root any, key string, def bool) bool {
	if b, ok := Get(root, key, nil).(bool); ok {
		return b
	}
	return def
}

// Int returns the value at key as an int. YAML yields int, JSON yields float64;
// both are accepted.
func Int(root any, key string, def int) int {
	switch v := Get(root, key, nil).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Map returns the value at key when it is a string-keyed map.
func Map(root any, key string) (map[string]any, bool) {
	m, ok := Get(root, key, nil).(map[string]any)
	return m, ok
}
