// Package walker implements C8: a deterministic, sorted-by-name filesystem
// traversal that builds the indicator tree (C7) and drives a registered
// sequence of calculators over it, honoring a .gitignore-style ignore-file
// chain.
package walker

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

// DefaultCustomIgnoreFileName is the project-local ignore file consulted in
// addition to .gitignore, per spec.md §6.
const DefaultCustomIgnoreFileName = ".polyglot_code_scanner_ignore"

// Config configures the walk.
type Config struct {
	// FollowSymlinks, when true, descends into symlinked directories and
	// reads through symlinked files instead of skipping them.
	FollowSymlinks bool
	// CustomIgnoreFileName overrides DefaultCustomIgnoreFileName.
	CustomIgnoreFileName string
}

func (c Config) customIgnoreFileName() string {
	if c.CustomIgnoreFileName != "" {
		return c.CustomIgnoreFileName
	}

	return DefaultCustomIgnoreFileName
}

type ignoreLevel struct {
	dir string
	gi  *ignore.GitIgnore
}

// Walk builds the indicator tree rooted at root, applying every calculator
// to every discovered node in registration order, then collects each
// calculator's root-level metadata contribution.
func Walk(root string, cfg Config, calculators []Calculator, logger *slog.Logger) (*tree.Node, map[string]any, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root: %w", err)
	}

	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root %s is not a directory", absRoot)
	}

	rootNode := tree.NewRoot()

	if err := visitDir(rootNode, absRoot, nil, cfg, calculators, logger); err != nil {
		return nil, nil, err
	}

	metadata := make(map[string]any)

	for _, c := range calculators {
		for k, v := range c.Metadata() {
			metadata[k] = v
		}
	}

	return rootNode, metadata, nil
}

func visitDir(node *tree.Node, absPath string, levels []ignoreLevel, cfg Config, calculators []Calculator, logger *slog.Logger) error {
	visitNode(node, absPath, calculators, logger)

	levels = pushIgnoreLevel(levels, absPath, cfg.customIgnoreFileName())

	entries, err := os.ReadDir(absPath)
	if err != nil {
		logger.Warn("walker: read dir failed", "path", absPath, "error", err)

		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" {
			continue
		}

		childAbs := filepath.Join(absPath, name)

		info, err := entry.Info()
		if err != nil {
			logger.Warn("walker: stat entry failed", "path", childAbs, "error", err)

			continue
		}

		isDir := entry.IsDir()

		if info.Mode()&os.ModeSymlink != 0 {
			if !cfg.FollowSymlinks {
				continue
			}

			resolved, target, err := resolveSymlink(childAbs)
			if err != nil {
				logger.Warn("walker: symlink resolve failed", "path", childAbs, "error", err)

				continue
			}

			childAbs = resolved
			isDir = target.IsDir()
		}

		if matchesIgnore(levels, childAbs) {
			continue
		}

		child := tree.New(name, !isDir)
		node.AppendChild(child)

		if isDir {
			if err := visitDir(child, childAbs, levels, cfg, calculators, logger); err != nil {
				return err
			}

			continue
		}

		visitNode(child, childAbs, calculators, logger)
	}

	return nil
}

func visitNode(node *tree.Node, absPath string, calculators []Calculator, logger *slog.Logger) {
	for _, c := range calculators {
		if err := c.Visit(node, absPath); err != nil {
			logger.Warn("walker: calculator visit failed", "path", absPath, "error", err)
		}
	}
}

func resolveSymlink(path string) (string, os.FileInfo, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", nil, fmt.Errorf("resolve symlink: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("stat resolved symlink: %w", err)
	}

	return resolved, info, nil
}

func pushIgnoreLevel(levels []ignoreLevel, dir, customName string) []ignoreLevel {
	next := make([]ignoreLevel, len(levels), len(levels)+2)
	copy(next, levels)

	for _, name := range []string{".gitignore", customName} {
		path := filepath.Join(dir, name)
		if gi, err := ignore.CompileIgnoreFile(path); err == nil {
			next = append(next, ignoreLevel{dir: dir, gi: gi})
		}
	}

	return next
}

func matchesIgnore(levels []ignoreLevel, absPath string) bool {
	for _, lvl := range levels {
		rel, err := filepath.Rel(lvl.dir, absPath)
		if err != nil {
			continue
		}

		if lvl.gi.MatchesPath(filepath.ToSlash(rel)) {
			return true
		}
	}

	return false
}
