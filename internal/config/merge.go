package config

import "git.home.luguber.info/inful/pagesmith/internal/dotpath"

// mergeMaps recursively merges src into dst; nested maps merge, everything
// else in src replaces the value in dst.
func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, sv := range src {
		dm, dok := dst[k].(map[string]any)
		sm, sok := sv.(map[string]any)
		if dok && sok {
			dst[k] = mergeMaps(dm, sm)
			continue
		}
		dst[k] = sv
	}
	return dst
}

func deepCopyMap(m map[string]any) map[string]any {
	return dotpath.CloneMap(m)
}
