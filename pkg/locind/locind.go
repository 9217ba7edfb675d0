// Package locind computes the lines-of-code indicator: per-file language
// detection plus a blanks/code/comments breakdown. Language detection uses
// a fast extension lookup with an enry content-analysis fallback, the same
// two-tier strategy the rest of the corpus uses for language detection.
package locind

import (
	"bytes"
	"path"
	"strings"

	"github.com/src-d/enry/v2"
)

// Data is the loc indicator for one file.
type Data struct {
	Language string `json:"language"`
	Blanks   int    `json:"blanks"`
	Code     int    `json:"code"`
	Comments int    `json:"comments"`
	Lines    int    `json:"lines"`
}

// Compute detects content's language and counts blanks/code/comments.
// Returns nil if no language could be determined.
func Compute(name string, content []byte) *Data {
	lang := languageByExtension(name)
	if lang == "" {
		lang = enry.GetLanguage(path.Base(name), content)
	}

	if lang == "" {
		return nil
	}

	blanks, comments, code := countLines(lang, content)

	return &Data{
		Language: lang,
		Blanks:   blanks,
		Code:     code,
		Comments: comments,
		Lines:    blanks + code + comments,
	}
}

func countLines(lang string, content []byte) (blanks, comments, code int) {
	prefix := lineCommentPrefix[lang]

	for _, rawLine := range bytes.Split(content, []byte("\n")) {
		line := bytes.TrimSpace(rawLine)

		switch {
		case len(line) == 0:
			blanks++
		case prefix != "" && bytes.HasPrefix(line, []byte(prefix)):
			comments++
		default:
			code++
		}
	}

	return blanks, comments, code
}

// lineCommentPrefix maps a language name to its single-line-comment token,
// used for a best-effort comment/code split. Languages absent from this map
// count every non-blank line as code.
//
//nolint:gochecknoglobals // lookup table.
var lineCommentPrefix = map[string]string{
	"Go":             "//",
	"JavaScript":     "//",
	"TypeScript":     "//",
	"TSX":            "//",
	"Java":           "//",
	"Kotlin":         "//",
	"Scala":          "//",
	"C":              "//",
	"C++":            "//",
	"C#":             "//",
	"Rust":           "//",
	"Swift":          "//",
	"Dart":           "//",
	"Groovy":         "//",
	"Zig":            "//",
	"Python":         "#",
	"Ruby":           "#",
	"Shell":          "#",
	"PowerShell":     "#",
	"Perl":           "#",
	"R":              "#",
	"YAML":           "#",
	"TOML":           "#",
	"INI":            "#",
	"Dotenv":         "#",
	"Makefile":       "#",
	"CMake":          "#",
	"HCL":            "#",
	"Nim":            "#",
	"Julia":          "#",
	"Crystal":        "#",
	"Clojure":        ";",
	"ClojureScript":  ";",
	"Lua":            "--",
	"Haskell":        "--",
	"SQL":            "--",
	"Lisp":           ";",
	"Erlang":         "%",
	"Elixir":         "#",
	"F#":             "//",
	"OCaml":          "(*",
}

// extensionToLanguage maps common unambiguous extensions to languages,
// avoiding a content-analysis pass for the common case.
//
//nolint:gochecknoglobals // lookup table.
var extensionToLanguage = map[string]string{
	".go": "Go", ".py": "Python", ".pyw": "Python", ".pyi": "Python",
	".js": "JavaScript", ".mjs": "JavaScript", ".cjs": "JavaScript", ".jsx": "JavaScript",
	".ts": "TypeScript", ".mts": "TypeScript", ".cts": "TypeScript", ".tsx": "TSX",
	".rs": "Rust", ".java": "Java", ".kt": "Kotlin", ".kts": "Kotlin",
	".scala": "Scala", ".sc": "Scala", ".c": "C", ".h": "C",
	".cpp": "C++", ".hpp": "C++", ".cc": "C++", ".cxx": "C++", ".hh": "C++",
	".cs": "C#", ".csx": "C#",
	".rb": "Ruby", ".rake": "Ruby", ".gemspec": "Ruby",
	".php": "PHP", ".phtml": "PHP",
	".sh": "Shell", ".bash": "Shell", ".zsh": "Shell", ".fish": "Shell",
	".ps1": "PowerShell", ".psm1": "PowerShell",
	".pl": "Perl", ".pm": "Perl",
	".lua": "Lua", ".r": "R", ".rmd": "RMarkdown",
	".swift": "Swift", ".m": "Objective-C", ".mm": "Objective-C++",
	".dart": "Dart",
	".ex": "Elixir", ".exs": "Elixir",
	".erl": "Erlang", ".hrl": "Erlang",
	".hs": "Haskell", ".lhs": "Haskell",
	".clj": "Clojure", ".cljs": "ClojureScript", ".cljc": "Clojure", ".edn": "Clojure",
	".fs": "F#", ".fsi": "F#", ".fsx": "F#",
	".ml": "OCaml", ".mli": "OCaml",
	".json": "JSON", ".yaml": "YAML", ".yml": "YAML", ".toml": "TOML",
	".xml": "XML", ".csv": "CSV", ".tsv": "TSV",
	".ini": "INI", ".cfg": "INI", ".conf": "INI", ".env": "Dotenv",
	".html": "HTML", ".htm": "HTML", ".css": "CSS", ".scss": "SCSS", ".sass": "Sass", ".less": "Less",
	".md": "Markdown", ".markdown": "Markdown", ".rst": "reStructuredText",
	".tex": "TeX", ".adoc": "AsciiDoc",
	".sql": "SQL", ".graphql": "GraphQL", ".gql": "GraphQL",
	".proto": "Protocol Buffer", ".thrift": "Thrift",
	".asm": "Assembly", ".s": "Assembly",
	".zig": "Zig", ".nim": "Nim", ".jl": "Julia", ".v": "V", ".cr": "Crystal",
	".groovy": "Groovy", ".gradle": "Groovy",
	".mk": "Makefile", ".mak": "Makefile", ".cmake": "CMake",
	".tf": "HCL", ".tfvars": "HCL", ".hcl": "HCL",
}

func languageByExtension(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return ""
	}

	return extensionToLanguage[ext]
}
