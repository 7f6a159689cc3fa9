package gitinfo

import (
	"testing"

	"github.com/stretchr/testify/require"

	helpers "git.home.luguber.info/inful/pagesmith/internal/testutil/testutils"
)

func TestReadHead(t *testing.T) {
	repo := helpers.InitGitRepo(t)

	_, err := Read(repo.Dir)
	require.NoError(t, err, "empty repository has no HEAD yet")

	hash := repo.Commit("init", map[string]string{"pagesmith.yml": "site: {}\n"})
	sub := repo.Mkdir("pages")

	info, err := Read(sub)
	require.NoError(t, err)
	require.Equal(t, hash.String(), info.Commit)
	require.Equal(t, "master", info.Branch)
	require.Equal(t, hash.String()[:8], Revision(repo.Dir))
}

func TestReadOutsideRepository(t *testing.T) {
	_, err := Read(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
	require.Empty(t, Revision(t.TempDir()))
}
