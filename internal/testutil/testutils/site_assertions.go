package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SiteAssertions checks files in a generated output directory.
type SiteAssertions struct {
	t    *testing.T
	root string
}

// Site returns assertions rooted at an output directory.
func Site(t *testing.T, root string) *SiteAssertions {
	return &SiteAssertions{t: t, root: root}
}

func (s *SiteAssertions) path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Exists requires rel to be a regular file.
func (s *SiteAssertions) Exists(rel string) *SiteAssertions {
	s.t.Helper()
	require.FileExists(s.t, s.path(rel))
	return s
}

// Missing requires that nothing was written at rel.
func (s *SiteAssertions) Missing(rel string) *SiteAssertions {
	s.t.Helper()
	require.NoFileExists(s.t, s.path(rel))
	require.NoDirExists(s.t, s.path(rel))
	return s
}

// Contains requires rel to exist and contain want.
func (s *SiteAssertions) Contains(rel, want string) *SiteAssertions {
	s.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(s.path(rel))
	require.NoError(s.t, err)
	require.Contains(s.t, string(data), want, "in %s", rel)
	return s
}
