package dotpath

// Clone deep-copies the map and slice containers of a decoded YAML/JSON tree.
// Scalars are shared. Depth is bounded by MaxDepth; deeper containers are
// shared rather than copied.
func Clone(v any) any {
	return cloneDepth(v, 0)
}

// CloneMap is Clone for a string-keyed map; nil yields an empty map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return cloneDepth(m, 0).(map[string]any)
}

func cloneDepth(v any, depth int) any {
	if depth > MaxDepth {
		return v
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneDepth(e, depth+1)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = cloneDepth(e, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneDepth(e, depth+1)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneDepth(e, depth+1).(map[string]any)
		}
		return out
	default:
		return v
	}
}
