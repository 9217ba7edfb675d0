package walker

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingCalculator struct {
	visited []string
}

func (r *recordingCalculator) Visit(node *tree.Node, absPath string) error {
	r.visited = append(r.visited, node.Name)

	return nil
}

func (r *recordingCalculator) Metadata() map[string]any { return nil }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkVisitsInSortedOrderAndBuildsTree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "c")

	rec := &recordingCalculator{}

	root, metadata, err := Walk(dir, Config{}, []Calculator{rec}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, metadata)

	require.Len(t, root.GetChildren(), 3)
	assert.Equal(t, "a.txt", root.GetChildren()[0].Name)
	assert.Equal(t, "b.txt", root.GetChildren()[1].Name)
	assert.Equal(t, "sub", root.GetChildren()[2].Name)
	assert.True(t, root.GetChildren()[2].GetChildren()[0].IsFile)

	assert.Equal(t, []string{tree.RootName, "a.txt", "b.txt", "sub", "c.txt"}, rec.visited)
}

func TestWalkHonorsGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "ignored.txt\n")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "x")
	writeFile(t, filepath.Join(dir, "kept.txt"), "y")

	root, _, err := Walk(dir, Config{}, nil, discardLogger())
	require.NoError(t, err)

	names := make([]string, 0)
	for _, c := range root.GetChildren() {
		names = append(names, c.Name)
	}

	assert.Contains(t, names, "kept.txt")
	assert.NotContains(t, names, "ignored.txt")
}

func TestWalkHonorsCustomIgnoreFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultCustomIgnoreFileName), "skip_me.txt\n")
	writeFile(t, filepath.Join(dir, "skip_me.txt"), "x")
	writeFile(t, filepath.Join(dir, "keep_me.txt"), "y")

	root, _, err := Walk(dir, Config{}, nil, discardLogger())
	require.NoError(t, err)

	names := make([]string, 0)
	for _, c := range root.GetChildren() {
		names = append(names, c.Name)
	}

	assert.Contains(t, names, "keep_me.txt")
	assert.NotContains(t, names, "skip_me.txt")
}

func TestWalkSkipsGitDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(dir, "file.txt"), "x")

	root, _, err := Walk(dir, Config{}, nil, discardLogger())
	require.NoError(t, err)

	for _, c := range root.GetChildren() {
		assert.NotEqual(t, ".git", c.Name)
	}
}
