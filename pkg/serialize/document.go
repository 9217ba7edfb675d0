// Package serialize assembles the final scan document: the stable JSON
// envelope described by spec.md §6 wrapping the indicator tree, grounded
// on original_source/src/polyglot_data.rs's PolyglotData{version, name,
// id, tree, metadata} shape, adapted to Go's encoding/json instead of
// serde and to a caller-supplied walker metadata map instead of a single
// HashMap<String, Value>.
package serialize

import (
	"strings"

	"github.com/google/uuid"

	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

// Version is the document format's semantic version (spec.md §6).
const Version = "1.0.0"

// Features echoes which indicators were enabled for this scan, letting a
// consumer tell an absent indicator (disabled) apart from a file that
// simply had nothing to report.
type Features struct {
	Git         bool `json:"git"`
	DetailedGit bool `json:"detailed_git"`
	Coupling    bool `json:"coupling"`
	FileStats   bool `json:"file_stats"`
	LOC         bool `json:"loc"`
	Indentation bool `json:"indentation"`
}

// Document is the top-level scan output.
type Document struct {
	Version  string         `json:"version"`
	Name     string         `json:"name"`
	ID       string         `json:"id"`
	Features Features       `json:"features"`
	Metadata map[string]any `json:"metadata"`
	Tree     *tree.Node     `json:"tree"`
}

// Build assembles the document. id, when empty, is replaced with a freshly
// generated UUID. flatMetadata is the walker's aggregated
// calculator-contributed metadata, keyed by dotted paths
// ("git.users", "coupling.config", ...); Build nests it into the
// indicator-namespaced objects spec.md §6 describes (metadata.git.*,
// metadata.coupling.*).
func Build(name, id string, root *tree.Node, features Features, flatMetadata map[string]any) *Document {
	if id == "" {
		id = uuid.NewString()
	}

	return &Document{
		Version:  Version,
		Name:     name,
		ID:       id,
		Features: features,
		Metadata: nest(flatMetadata),
		Tree:     root,
	}
}

// nest turns {"git.users": x, "coupling.config": y} into
// {"git": {"users": x}, "coupling": {"config": y}}, splitting each key on
// its first '.'. Keys with no '.' are kept at the top level as-is.
func nest(flat map[string]any) map[string]any {
	out := make(map[string]any, len(flat))

	for key, value := range flat {
		namespace, field, hasDot := strings.Cut(key, ".")
		if !hasDot {
			out[key] = value

			continue
		}

		group, ok := out[namespace].(map[string]any)
		if !ok {
			group = make(map[string]any)
			out[namespace] = group
		}

		group[field] = value
	}

	return out
}
