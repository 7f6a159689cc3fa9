// Package gitinfo reads the source revision of a project checkout.
package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when no git repository contains the path.
var ErrNotRepository = errors.New("gitinfo: not a git repository")

// Info describes the checked out revision.
type Info struct {
	Commit string
	Branch string
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// Read returns the HEAD revision of the repository containing dir.
func Read(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, ErrNotRepository
		}
		return Info{}, fmt.Errorf("failed to open repository: %w", err)
	}
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	info := Info{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}

// Revision returns the short HEAD hash of dir, or "" when it is not a
// repository or has no commits.
func Revision(dir string) string {
	info, err := Read(dir)
	if err != nil {
		return ""
	}
	return info.Short()
}
