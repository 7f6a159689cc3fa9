// Package manifest records the pages written by a build.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry describes one written page.
type Entry struct {
	// Filepath is the page path relative to the output root, as requested.
	Filepath string         `json:"filepath"`
	Title    string         `json:"title"`
	URL      string         `json:"url"`
	FullURL  string         `json:"full_url"`
	Sitemap  map[string]any `json:"sitemap"`
}

// Excluded reports whether the entry opts out of the sitemap.
func (e Entry) Excluded() bool {
	exclude, _ := e.Sitemap["exclude"].(bool)
	return exclude
}

// Manifest is the append-only list of entries for one build.
type Manifest struct {
	entries []Entry
}

// Reset clears the manifest at the start of a build.
func (m *Manifest) Reset() { m.entries = m.entries[:0] }

// Append records a written page.
func (m *Manifest) Append(e Entry) { m.entries = append(m.entries, e) }

// Len returns the number of entries.
func (m *Manifest) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in append order.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// BuildManifest is the persisted record of a completed build.
type BuildManifest struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Env         string    `json:"env,omitempty"`
	Revision    string    `json:"revision,omitempty"`
	Status      string    `json:"status"`
	Duration    int64     `json:"duration_ms"`
	ContentHash string    `json:"content_hash"`
	Pages       []Entry   `json:"pages"`
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash over the page list, ignoring build
// identity and timing. Two builds of an unchanged site hash equal.
func (m *BuildManifest) Hash() (string, error) {
	data, err := json.Marshal(m.Pages)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// FileName is the manifest file written into the output root.
const FileName = "manifest.json"

// ReadFile loads dir/manifest.json.
func ReadFile(dir string) (*BuildManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName)) //nolint:gosec // output dir is trusted
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// WriteFile writes m to dir/manifest.json.
func (m *BuildManifest) WriteFile(dir string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil { //nolint:gosec // public site output
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
