package walker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

func TestLOCCalculatorSkipsDirectories(t *testing.T) {
	t.Parallel()

	calc := NewLOCCalculator(discardLogger())
	node := tree.New("sub", false)

	require.NoError(t, calc.Visit(node, t.TempDir()))
	assert.Nil(t, node.Indicators.LOC)
}

func TestLOCCalculatorComputesFileData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main\n\nfunc main() {}\n")

	calc := NewLOCCalculator(discardLogger())
	node := tree.New("main.go", true)

	require.NoError(t, calc.Visit(node, path))
	require.NotNil(t, node.Indicators.LOC)
	assert.Positive(t, node.Indicators.LOC.Code)
}

func TestLOCCalculatorToleratesUnreadableFile(t *testing.T) {
	t.Parallel()

	calc := NewLOCCalculator(discardLogger())
	node := tree.New("missing.go", true)

	require.NoError(t, calc.Visit(node, filepath.Join(t.TempDir(), "missing.go")))
	assert.Nil(t, node.Indicators.LOC)
}

func TestIndentationCalculatorComputesFileData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main\n\nfunc main() {\n\tif true {\n\t\treturn\n\t}\n}\n")

	calc := NewIndentationCalculator(discardLogger())
	node := tree.New("main.go", true)

	require.NoError(t, calc.Visit(node, path))
	assert.NotNil(t, node.Indicators.Indentation)
}

func TestFileStatsCalculatorComputesFileData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main\n")

	calc := NewFileStatsCalculator(discardLogger())
	node := tree.New("main.go", true)

	require.NoError(t, calc.Visit(node, path))
	require.NotNil(t, node.Indicators.FileStats)
}

func TestGitCalculatorDisabledWhenNoRepositoryFound(t *testing.T) {
	t.Parallel()

	calc, err := NewGitCalculator(t.TempDir(), GitConfig{}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, calc.CommitCount())

	node := tree.New("main.go", true)
	require.NoError(t, calc.Visit(node, filepath.Join(t.TempDir(), "main.go")))
	assert.Nil(t, node.Indicators.Git)

	calc.Close()
}
