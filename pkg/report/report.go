// Package report renders a scanned [serialize.Document] as a human-readable
// terminal summary: aggregate counts, a per-language LOC breakdown, and the
// most-coupled file pairs, using a table-plus-color idiom (go-pretty
// tables, fatih/color section headers, humanized counts).
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/teratoma-labs/polyglotscan/pkg/serialize"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

const topCoupledPairs = 10

// languageStats accumulates LOC across every file sharing a language.
type languageStats struct {
	Files    int
	Code     int
	Comments int
	Blanks   int
}

// coupledPair is one (source, coupled) edge for the summary table, kept at
// its strongest observed count across all of the source file's buckets.
type coupledPair struct {
	source  string
	coupled string
	count   int
}

// Render writes a text summary of doc to w. noColor disables section-header
// colorization (e.g. for non-tty output or NO_COLOR).
func Render(doc *serialize.Document, w io.Writer, noColor bool) error {
	header := color.New(color.FgCyan, color.Bold)
	if noColor {
		header.DisableColor()
	}

	files, dirs, byLanguage, pairs := walk(doc.Tree)

	fmt.Fprintln(w, header.Sprint("Scan summary"))
	fmt.Fprintf(w, "  name:       %s\n", doc.Name)
	fmt.Fprintf(w, "  files:      %s\n", humanize.Comma(int64(files)))
	fmt.Fprintf(w, "  directories: %s\n", humanize.Comma(int64(dirs)))

	if git, ok := doc.Metadata["git"].(map[string]any); ok {
		if slice, ok := git["users"].([]any); ok {
			fmt.Fprintf(w, "  contributors: %s\n", humanize.Comma(int64(len(slice))))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, header.Sprint("Lines of code by language"))
	renderLanguageTable(w, byLanguage)

	if len(pairs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, header.Sprint("Most coupled files"))
		renderCouplingTable(w, pairs)
	}

	return nil
}

func renderLanguageTable(w io.Writer, byLanguage map[string]*languageStats) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Language", "Files", "Code", "Comments", "Blanks"})

	languages := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		languages = append(languages, lang)
	}

	sort.Slice(languages, func(i, j int) bool {
		return byLanguage[languages[i]].Code > byLanguage[languages[j]].Code
	})

	for _, lang := range languages {
		stats := byLanguage[lang]
		tbl.AppendRow(table.Row{lang, stats.Files, stats.Code, stats.Comments, stats.Blanks})
	}

	tbl.Render()
}

func renderCouplingTable(w io.Writer, pairs []coupledPair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].count > pairs[j].count })

	if len(pairs) > topCoupledPairs {
		pairs = pairs[:topCoupledPairs]
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Coupled with", "Count"})

	for _, p := range pairs {
		tbl.AppendRow(table.Row{p.source, p.coupled, p.count})
	}

	tbl.Render()
}

// walk aggregates file/directory counts, per-language LOC, and coupling
// edges from the indicator tree.
func walk(root *tree.Node) (files, dirs int, byLanguage map[string]*languageStats, pairs []coupledPair) {
	byLanguage = make(map[string]*languageStats)

	var visit func(n *tree.Node, path string)

	visit = func(n *tree.Node, path string) {
		if path != "" && n.Name != "" {
			path += "/"
		}

		path += n.Name

		if n.IsFile {
			files++

			if loc := n.Indicators.LOC; loc != nil {
				stats, ok := byLanguage[loc.Language]
				if !ok {
					stats = &languageStats{}
					byLanguage[loc.Language] = stats
				}

				stats.Files++
				stats.Code += loc.Code
				stats.Comments += loc.Comments
				stats.Blanks += loc.Blanks
			}

			for _, bucket := range n.Indicators.Coupling {
				for _, coupled := range bucket.CoupledFiles {
					pairs = append(pairs, coupledPair{source: path, coupled: coupled.Path, count: coupled.Count})
				}
			}

			return
		}

		dirs++

		for _, child := range n.GetChildren() {
			visit(child, path)
		}
	}

	visit(root, "")

	// The root itself is not a "directory" in user-facing counts.
	if dirs > 0 {
		dirs--
	}

	return files, dirs, byLanguage, pairs
}
