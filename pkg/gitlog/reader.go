// Package gitlog reads a repository's commit log into an ordered sequence
// of commit records, with rename/copy-aware per-file changes and
// Co-authored-by trailer parsing.
package gitlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/teratoma-labs/polyglotscan/pkg/gitlib"
	"github.com/teratoma-labs/polyglotscan/pkg/identity"
)

// ChangeKind is the kind of change a commit introduced for one file.
type ChangeKind int

const (
	// Add means the file did not exist in the parent tree.
	Add ChangeKind = iota
	// Modify means the file's content changed.
	Modify
	// Delete means the file existed in the parent tree but not in this one.
	Delete
	// Rename means the file existed under a different path in the parent tree.
	Rename
	// Copy means the file was copied from another path in the parent tree.
	Copy
)

// FileChange is one file's change within a commit.
type FileChange struct {
	Path         string
	OldPath      string
	Kind         ChangeKind
	LinesAdded   int
	LinesDeleted int
}

// Commit is one commit record as read from the log.
type Commit struct {
	ID         string
	Summary    string
	ParentIDs  []string
	Committer  identity.User
	CommitTime int64
	Author     identity.User
	AuthorTime int64
	CoAuthors  []identity.User
	Changes    []FileChange
}

// Config configures a log read.
type Config struct {
	// Since, if set, stops iteration at the first commit whose commit time
	// (committer time) precedes it.
	Since *time.Time
	// IncludeMerges, if false, emits merge commits with an empty change list.
	// If true, emits the concatenation of the diffs against every parent.
	IncludeMerges bool
}

// Reader reads commit records from a repository.
type Reader struct {
	repo *gitlib.Repository
	log  *slog.Logger
}

// NewReader creates a Reader over repo. logger receives a warning for each
// commit that is skipped due to a parse error; iteration continues.
func NewReader(repo *gitlib.Repository, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Reader{repo: repo, log: logger}
}

// Read returns commit records in topological order, newest first, per cfg.
func (r *Reader) Read(cfg Config) ([]Commit, error) {
	iter, err := r.repo.Log(&gitlib.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer iter.Close()

	var out []Commit

	for {
		c, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			return nil, fmt.Errorf("read commit: %w", nextErr)
		}

		committerTime := c.Committer().When
		if cfg.Since != nil && committerTime.Before(*cfg.Since) {
			c.Free()

			break
		}

		rec, buildErr := r.buildRecord(c, cfg.IncludeMerges)
		if buildErr != nil {
			r.log.Warn("skipping commit with unreadable history",
				"commit", c.Hash().String(), "error", buildErr)
			c.Free()

			continue
		}

		out = append(out, rec)
		c.Free()
	}

	return out, nil
}

func (r *Reader) buildRecord(c *gitlib.Commit, includeMerges bool) (Commit, error) {
	numParents := c.NumParents()

	changes, err := r.changesFor(c, numParents, includeMerges)
	if err != nil {
		return Commit{}, err
	}

	parentIDs := make([]string, numParents)
	for i := range numParents {
		parentIDs[i] = c.ParentHash(i).String()
	}

	author := c.Author()
	committer := c.Committer()

	return Commit{
		ID:         c.Hash().String(),
		Summary:    summaryLine(c.Message()),
		ParentIDs:  parentIDs,
		Committer:  identity.User{Name: committer.Name, Email: committer.Email},
		CommitTime: committer.When.Unix(),
		Author:     identity.User{Name: author.Name, Email: author.Email},
		AuthorTime: author.When.Unix(),
		CoAuthors:  parseCoAuthors(c.Message()),
		Changes:    changes,
	}, nil
}

func (r *Reader) changesFor(c *gitlib.Commit, numParents int, includeMerges bool) ([]FileChange, error) {
	switch {
	case numParents == 0:
		tree, err := c.Tree()
		if err != nil {
			return nil, fmt.Errorf("root commit tree: %w", err)
		}
		defer tree.Free()

		return r.diffAgainst(nil, tree)

	case numParents == 1:
		return r.diffAgainstParent(c, 0)

	case !includeMerges:
		return nil, nil

	default:
		var all []FileChange

		for i := range numParents {
			changes, err := r.diffAgainstParent(c, i)
			if err != nil {
				return nil, err
			}

			all = append(all, changes...)
		}

		return all, nil
	}
}

func (r *Reader) diffAgainstParent(c *gitlib.Commit, parentIdx int) ([]FileChange, error) {
	parent, err := c.Parent(parentIdx)
	if err != nil {
		return nil, fmt.Errorf("get parent %d: %w", parentIdx, err)
	}
	defer parent.Free()

	parentTree, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("parent tree: %w", err)
	}
	defer parentTree.Free()

	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("commit tree: %w", err)
	}
	defer tree.Free()

	return r.diffAgainst(parentTree, tree)
}

func (r *Reader) diffAgainst(oldTree, newTree *gitlib.Tree) ([]FileChange, error) {
	diff, err := r.repo.DiffTreeToTree(oldTree, newTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	defer diff.Free()

	if err := diff.FindSimilar(); err != nil {
		return nil, fmt.Errorf("find renames: %w", err)
	}

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("num deltas: %w", err)
	}

	changes := make([]FileChange, 0, numDeltas)

	err = diff.ForEach(func(delta gitlib.DiffDelta, _ float64) (git2go.DiffForEachHunkCallback, error) {
		kind, ok := classify(delta.Status)
		if !ok {
			return nil, nil //nolint:nilnil // skip this delta entirely.
		}

		fc := FileChange{Path: delta.NewFile.Path, Kind: kind}

		switch kind {
		case Rename, Copy:
			fc.OldPath = delta.OldFile.Path
		case Delete:
			fc.Path = delta.OldFile.Path
		case Add, Modify:
		}

		changes = append(changes, fc)
		idx := len(changes) - 1

		return func(_ git2go.DiffHunk) (git2go.DiffForEachLineCallback, error) {
			return func(line git2go.DiffLine) error {
				switch line.Origin {
				case git2go.DiffLineAddition:
					changes[idx].LinesAdded++
				case git2go.DiffLineDeletion:
					changes[idx].LinesDeleted++
				}

				return nil
			}, nil
		}, nil
	}, git2go.DiffDetailLines)
	if err != nil {
		return nil, fmt.Errorf("walk diff: %w", err)
	}

	return changes, nil
}

func classify(status git2go.Delta) (ChangeKind, bool) {
	switch status {
	case git2go.DeltaAdded:
		return Add, true
	case git2go.DeltaDeleted:
		return Delete, true
	case git2go.DeltaModified:
		return Modify, true
	case git2go.DeltaRenamed:
		return Rename, true
	case git2go.DeltaCopied:
		return Copy, true
	case git2go.DeltaUnmodified, git2go.DeltaIgnored, git2go.DeltaUntracked,
		git2go.DeltaTypeChange, git2go.DeltaUnreadable, git2go.DeltaConflicted:
		return 0, false
	default:
		return 0, false
	}
}

func summaryLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}

	return strings.TrimSpace(message)
}

var (
	coAuthorLineRe = regexp.MustCompile(`(?i)^\s*co-authored-by:(.*)$`)
	nameEmailRe    = regexp.MustCompile(`^(.*)<([^>]+)>$`)
)

// parseCoAuthors scans message line-by-line for Co-authored-by: trailers.
func parseCoAuthors(message string) []identity.User {
	var out []identity.User

	for _, line := range strings.Split(message, "\n") {
		m := coAuthorLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		text := strings.TrimSpace(m[1])
		if text == "" {
			continue
		}

		if sub := nameEmailRe.FindStringSubmatch(text); sub != nil {
			out = append(out, identity.User{
				Name:  strings.TrimSpace(sub[1]),
				Email: strings.TrimSpace(sub[2]),
			})

			continue
		}

		if strings.Contains(text, "@") {
			out = append(out, identity.User{Email: text})
		} else {
			out = append(out, identity.User{Name: text})
		}
	}

	return out
}
