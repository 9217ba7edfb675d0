package filehistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teratoma-labs/polyglotscan/pkg/gitlog"
)

// buildRenameChainCommits builds a rename-chain scenario with synthetic
// gitlog.Commit records (no real repository needed):
//
//	C1: add a
//	C2: rename a->b, delete z
//	C4: rename b->c
//	C5: rename b->d (sibling branch)
//	C6: merge, rename c->afinal
//	C7: create new z
func buildRenameChainCommits() []gitlog.Commit {
	return []gitlog.Commit{
		{
			ID: "C1", ParentIDs: nil, CommitTime: 1,
			Changes: []gitlog.FileChange{{Path: "a", Kind: gitlog.Add}},
		},
		{
			ID: "C2", ParentIDs: []string{"C1"}, CommitTime: 2,
			Changes: []gitlog.FileChange{
				{Path: "b", OldPath: "a", Kind: gitlog.Rename},
				{Path: "z", Kind: gitlog.Delete},
			},
		},
		{
			ID: "C4", ParentIDs: []string{"C2"}, CommitTime: 4,
			Changes: []gitlog.FileChange{{Path: "c", OldPath: "b", Kind: gitlog.Rename}},
		},
		{
			ID: "C5", ParentIDs: []string{"C2"}, CommitTime: 5,
			Changes: []gitlog.FileChange{{Path: "d", OldPath: "b", Kind: gitlog.Rename}},
		},
		{
			ID: "C6", ParentIDs: []string{"C4", "C5"}, CommitTime: 6,
			Changes: []gitlog.FileChange{{Path: "afinal", OldPath: "c", Kind: gitlog.Rename}},
		},
		{
			ID: "C7", ParentIDs: []string{"C6"}, CommitTime: 7,
			Changes: []gitlog.FileChange{{Path: "z", Kind: gitlog.Add}},
		},
	}
}

func commitIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.CommitID
	}

	return ids
}

func TestHistoryForFollowsRenameChainToFinalPath(t *testing.T) {
	t.Parallel()

	h, err := Build("/repo", buildRenameChainCommits())
	require.NoError(t, err)

	entries, ok := h.HistoryFor("afinal")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"C1", "C2", "C4", "C6"}, commitIDs(entries))
}

func TestHistoryForRecreatedPathOnlyHasNewEvents(t *testing.T) {
	t.Parallel()

	h, err := Build("/repo", buildRenameChainCommits())
	require.NoError(t, err)

	entries, ok := h.HistoryFor("z")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"C7"}, commitIDs(entries))
}

func TestHistoryIntermediatePathsDoNotAppearAsKeys(t *testing.T) {
	t.Parallel()

	h, err := Build("/repo", buildRenameChainCommits())
	require.NoError(t, err)

	for _, stale := range []string{"a", "b", "c"} {
		_, ok := h.HistoryFor(stale)
		assert.Falsef(t, ok, "expected no history key for stale path %q", stale)
	}
}

func TestHistoryLastCommitIsMaxCommitTime(t *testing.T) {
	t.Parallel()

	h, err := Build("/repo", buildRenameChainCommits())
	require.NoError(t, err)

	assert.Equal(t, int64(7), h.LastCommit())
}
