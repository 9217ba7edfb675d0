// Package filehistory builds, per git workdir, a two-pass history of every
// file keyed by its final canonical path (see pkg/renamefuture), so that a
// rename chain is attributed to a single file entry regardless of how many
// names the file has carried.
package filehistory

import (
	"fmt"
	"path/filepath"

	"github.com/teratoma-labs/polyglotscan/pkg/gitlog"
	"github.com/teratoma-labs/polyglotscan/pkg/identity"
	"github.com/teratoma-labs/polyglotscan/pkg/renamefuture"
)

// Entry is one commit's record projected onto a single file change.
type Entry struct {
	CommitID     string
	CommitTime   int64
	AuthorTime   int64
	Committer    identity.User
	Author       identity.User
	CoAuthors    []identity.User
	Kind         gitlog.ChangeKind
	LinesAdded   int
	LinesDeleted int
}

// History is the per-file history for one git workdir.
type History struct {
	workdir    string
	byPath     map[string][]Entry
	lastCommit int64
}

// Build constructs a History from commits read from the repository rooted
// at workdir. commits must be the full log, each commit present once. Their
// order matters: children are linked to a parent in the order commits are
// registered, and the rename lookup follows a commit's first-linked child.
func Build(workdir string, commits []gitlog.Commit) (*History, error) {
	absWorkdir, err := filepath.Abs(workdir)
	if err != nil {
		return nil, fmt.Errorf("canonicalize workdir: %w", err)
	}

	reg := renamefuture.NewRegistry()

	for _, c := range commits {
		changes := make(map[string]renamefuture.FileNameChange, len(c.Changes))

		for _, fc := range c.Changes {
			switch fc.Kind {
			case gitlog.Rename:
				changes[fc.OldPath] = renamefuture.FileNameChange{Kind: renamefuture.Renamed, NewPath: fc.Path}
			case gitlog.Delete:
				changes[fc.Path] = renamefuture.FileNameChange{Kind: renamefuture.Deleted}
			case gitlog.Add, gitlog.Modify, gitlog.Copy:
			}
		}

		reg.Register(c.ID, c.ParentIDs, changes)
	}

	h := &History{workdir: absWorkdir, byPath: make(map[string][]Entry)}

	for _, c := range commits {
		if c.CommitTime > h.lastCommit {
			h.lastCommit = c.CommitTime
		}

		for _, fc := range c.Changes {
			final, ok := reg.FinalName(c.ID, fc.Path)
			if !ok {
				continue
			}

			h.byPath[final] = append(h.byPath[final], Entry{
				CommitID:     c.ID,
				CommitTime:   c.CommitTime,
				AuthorTime:   c.AuthorTime,
				Committer:    c.Committer,
				Author:       c.Author,
				CoAuthors:    c.CoAuthors,
				Kind:         fc.Kind,
				LinesAdded:   fc.LinesAdded,
				LinesDeleted: fc.LinesDeleted,
			})
		}
	}

	return h, nil
}

// IsRepoFor reports whether path is inside (or equal to) the workdir this
// history was built for.
func (h *History) IsRepoFor(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(h.workdir, abs)
	if err != nil {
		return false
	}

	return rel == "." || (len(rel) > 0 && rel[0] != '.' && !filepath.IsAbs(rel))
}

// HistoryFor returns the history entries for path, interpreted relative to
// the workdir, or false if no entries are recorded.
func (h *History) HistoryFor(path string) ([]Entry, bool) {
	rel, err := h.relativize(path)
	if err != nil {
		return nil, false
	}

	entries, ok := h.byPath[rel]

	return entries, ok
}

func (h *History) relativize(path string) (string, error) {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(h.workdir, path)
		if err != nil {
			return "", fmt.Errorf("relativize: %w", err)
		}

		return filepath.ToSlash(rel), nil
	}

	return filepath.ToSlash(path), nil
}

// LastCommit returns the maximum commit time observed across the whole log.
func (h *History) LastCommit() int64 {
	return h.lastCommit
}

// Workdir returns the canonicalized workdir this history was built for.
func (h *History) Workdir() string {
	return h.workdir
}
