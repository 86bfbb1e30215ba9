package git

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

// testRepo bundles an in-memory repository with its worktree filesystem.
type testRepo struct {
	repo     *Repo
	worktree *gogit.Worktree
	fs       billy.Filesystem

	// clock advances per commit so committer-time ordering is deterministic.
	clock time.Time
	seq   int
}

// setupTestRepo creates an empty in-memory repository.
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	fs := memfs.New()
	raw, err := gogit.Init(memory.NewStorage(), fs)
	require.NoError(t, err, "failed to initialize test repository")

	wt, err := raw.Worktree()
	require.NoError(t, err, "failed to get worktree")

	return &testRepo{
		repo:     Wrap(raw),
		worktree: wt,
		fs:       fs,
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// commit writes a file and commits it with the given message, returning the
// commit hash.
func (tr *testRepo) commit(t *testing.T, message string) string {
	t.Helper()

	tr.seq++
	tr.clock = tr.clock.Add(time.Minute)

	name := fmt.Sprintf("file%d.txt", tr.seq)
	require.NoError(t, util.WriteFile(tr.fs, name, []byte(message), 0o644))

	_, err := tr.worktree.Add(name)
	require.NoError(t, err, "failed to add file")

	hash, err := tr.worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "test@ontora.ai",
			When:  tr.clock,
		},
	})
	require.NoError(t, err, "failed to commit")
	return hash.String()
}

// tag creates an annotated tag at HEAD.
func (tr *testRepo) tag(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, tr.repo.CreateTag(context.Background(), name, "HEAD", "release "+name))
}
