package assets

import (
	"strings"

	"github.com/google/uuid"
	"github.com/inful/mdfp"
)

// NamingPolicy produces the token embedded in extracted asset file names.
// One token is requested per page, covering both its script and its style.
type NamingPolicy interface {
	Token(name string, fragments ...string) string
}

// RandomToken yields a fresh random token on every call, so asset URLs change
// with every build.
type RandomToken struct{}

func (RandomToken) Token(string, ...string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ContentHash derives the token from the page name and fragment texts; an
// unchanged page keeps its asset URLs across builds.
type ContentHash struct{}

const contentHashLength = 16

func (ContentHash) Token(name string, fragments ...string) string {
	fp := mdfp.CalculateFingerprintFromParts(name, strings.Join(fragments, "\x00"))
	var b strings.Builder
	for _, r := range strings.ToLower(fp) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	token := b.String()
	if len(token) > contentHashLength {
		token = token[len(token)-contentHashLength:]
	}
	return token
}

// FixedToken always returns the same token. Builds using it are fully
// reproducible.
type FixedToken string

func (f FixedToken) Token(string, ...string) string { return string(f) }
