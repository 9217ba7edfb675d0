package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teratoma-labs/polyglotscan/pkg/coupling"
	"github.com/teratoma-labs/polyglotscan/pkg/locind"
	"github.com/teratoma-labs/polyglotscan/pkg/report"
	"github.com/teratoma-labs/polyglotscan/pkg/serialize"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

func buildSampleTree() *tree.Node {
	root := tree.NewRoot()

	src := tree.New("src", false)

	mainGo := tree.New("main.go", true)
	mainGo.Indicators.LOC = &locind.Data{Language: "Go", Code: 40, Comments: 5, Blanks: 3, Lines: 48}
	mainGo.Indicators.Coupling = coupling.Data{
		{
			BucketStart:    0,
			BucketEnd:      86400,
			ActivityBursts: 3,
			CoupledFiles:   []coupling.CoupledFile{{Path: "src/util.go", Count: 3}},
		},
	}

	utilGo := tree.New("util.go", true)
	utilGo.Indicators.LOC = &locind.Data{Language: "Go", Code: 20, Comments: 1, Blanks: 2, Lines: 23}

	src.AppendChild(mainGo)
	src.AppendChild(utilGo)
	root.AppendChild(src)

	return root
}

func TestRenderIncludesSummaryAndLanguageTable(t *testing.T) {
	t.Parallel()

	doc := serialize.Build("example", "id", buildSampleTree(), serialize.Features{LOC: true}, nil)

	var buf strings.Builder

	require.NoError(t, report.Render(doc, &buf, true))

	out := buf.String()
	assert.Contains(t, out, "Scan summary")
	assert.Contains(t, out, "example")
	assert.Contains(t, out, "files:      2")
	assert.Contains(t, out, "Lines of code by language")
	assert.Contains(t, out, "Go")
	assert.Contains(t, out, "Most coupled files")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "src/util.go")
}

func TestRenderOmitsCouplingSectionWhenAbsent(t *testing.T) {
	t.Parallel()

	root := tree.NewRoot()
	file := tree.New("a.go", true)
	file.Indicators.LOC = &locind.Data{Language: "Go", Code: 1}
	root.AppendChild(file)

	doc := serialize.Build("example", "id", root, serialize.Features{}, nil)

	var buf strings.Builder
	require.NoError(t, report.Render(doc, &buf, true))

	assert.NotContains(t, buf.String(), "Most coupled files")
}
