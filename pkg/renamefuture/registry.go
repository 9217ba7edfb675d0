// Package renamefuture answers, for a (commit, path) pair, what that path's
// final name is on the main-line descendant of the commit, or whether the
// path has been deleted before reaching it.
package renamefuture

// ChangeKind discriminates the two file-name-affecting events a commit can
// introduce for a path: a rename (to NewPath) or a deletion.
type ChangeKind int

const (
	// Renamed means the path was renamed to FileNameChange.NewPath at this commit.
	Renamed ChangeKind = iota
	// Deleted means the path was removed at this commit.
	Deleted
)

// FileNameChange is the name-affecting event introduced at one commit for
// one path.
type FileNameChange struct {
	Kind    ChangeKind
	NewPath string
}

type revChange struct {
	files    map[string]FileNameChange
	children []string
}

// Registry stores, per commit id, the rename/delete events it introduces
// and the ids of its children (commits whose parent list includes it).
type Registry struct {
	revs map[string]*revChange
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{revs: make(map[string]*revChange)}
}

func (r *Registry) ensure(id string) *revChange {
	rc, ok := r.revs[id]
	if !ok {
		rc = &revChange{}
		r.revs[id] = rc
	}

	return rc
}

// Register records the rename/delete events introduced at commit id and
// links id as a child of each of its parents. parents must be supplied in
// the order reported by the underlying commit log, so that following only
// the first child later reaches the main-line descendant.
func (r *Registry) Register(id string, parents []string, changes map[string]FileNameChange) {
	rc := r.ensure(id)
	rc.files = changes

	for _, parent := range parents {
		pc := r.ensure(parent)
		pc.children = append(pc.children, id)
	}
}

// FinalName returns the name path has at the youngest main-line descendant
// of commit id, following only first children and never traversing merges.
// It returns false if the path is deleted before a childless commit is
// reached.
func (r *Registry) FinalName(id, path string) (string, bool) {
	current := path
	curID := id

	for {
		rc, ok := r.revs[curID]
		if ok {
			if fc, exists := rc.files[current]; exists {
				switch fc.Kind {
				case Deleted:
					return "", false
				case Renamed:
					current = fc.NewPath
				}
			}
		}

		if !ok || len(rc.children) == 0 {
			return current, true
		}

		curID = rc.children[0]
	}
}
