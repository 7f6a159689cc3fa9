package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// GitRepo is a throwaway repository in a temp directory.
type GitRepo struct {
	t    *testing.T
	Dir  string
	Repo *git.Repository
	Tree *git.Worktree
}

// InitGitRepo creates an empty repository with no commits.
func InitGitRepo(t *testing.T) *GitRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &GitRepo{t: t, Dir: dir, Repo: repo, Tree: wt}
}

// Commit writes files, stages them and commits with a fixed author.
func (g *GitRepo) Commit(msg string, files map[string]string) plumbing.Hash {
	g.t.Helper()
	WriteTree(g.t, g.Dir, files)
	for rel := range files {
		_, err := g.Tree.Add(filepath.ToSlash(rel))
		require.NoError(g.t, err)
	}
	hash, err := g.Tree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "pagesmith", Email: "pagesmith@example.com", When: time.Unix(0, 0).UTC()},
	})
	require.NoError(g.t, err)
	return hash
}

// Mkdir creates a directory inside the work tree.
func (g *GitRepo) Mkdir(rel string) string {
	g.t.Helper()
	p := filepath.Join(g.Dir, filepath.FromSlash(rel))
	require.NoError(g.t, os.MkdirAll(p, 0o750))
	return p
}
