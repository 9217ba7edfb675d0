package walker

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/teratoma-labs/polyglotscan/internal/checkpoint"
	"github.com/teratoma-labs/polyglotscan/pkg/filehistory"
	"github.com/teratoma-labs/polyglotscan/pkg/gitindicator"
	"github.com/teratoma-labs/polyglotscan/pkg/gitlib"
	"github.com/teratoma-labs/polyglotscan/pkg/gitlog"
	"github.com/teratoma-labs/polyglotscan/pkg/identity"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

// GitConfig configures the git calculator.
type GitConfig struct {
	// Since restricts the read log to commits no older than this time, when set.
	Since *time.Time
	// Detailed controls whether per-day/per-commit breakdowns (Details,
	// Activity) are attached; when false only the summary fields are kept.
	Detailed bool
	// CacheDir, when non-empty, enables the HEAD-oid-keyed commit log
	// cache: a repeat scan of an unchanged repository skips re-reading the
	// object database.
	CacheDir string
}

// GitCalculator attaches the git indicator (directory or file variant) to
// tree nodes, backed by a single repository discovered by ancestor search
// from the scan root.
type GitCalculator struct {
	cfg         GitConfig
	logger      *slog.Logger
	repo        *gitlib.Repository
	workdir     string
	dict        *identity.Dictionary
	history     *filehistory.History
	repoData    gitindicator.RepoGitData
	commitCount int
	disabled    bool
}

// CommitCount returns the number of commits read from the repository's log,
// or 0 if no repository was discovered.
func (c *GitCalculator) CommitCount() int {
	return c.commitCount
}

// NewGitCalculator discovers the repository containing root (searching
// ancestors for a `.git` entry), reads its commit log, and builds the
// per-file history index. Discovery failure is non-fatal: the returned
// calculator simply leaves every node's git indicator unset, matching the
// spec's "locally recovered" error taxonomy for missing git history.
func NewGitCalculator(root string, cfg GitConfig, logger *slog.Logger) (*GitCalculator, error) {
	workdir, found := discoverWorkdir(root)
	if !found {
		logger.Warn("git: no repository found", "root", root)

		return &GitCalculator{cfg: cfg, logger: logger, disabled: true}, nil
	}

	repo, err := gitlib.OpenRepository(workdir)
	if err != nil {
		logger.Warn("git: open failed", "workdir", workdir, "error", err)

		return &GitCalculator{cfg: cfg, logger: logger, disabled: true}, nil
	}

	commits, err := readCommits(repo, workdir, cfg, logger)
	if err != nil {
		logger.Warn("git: log read failed", "workdir", workdir, "error", err)

		return &GitCalculator{cfg: cfg, logger: logger, disabled: true}, nil
	}

	history, err := filehistory.Build(workdir, commits)
	if err != nil {
		logger.Warn("git: history build failed", "workdir", workdir, "error", err)

		return &GitCalculator{cfg: cfg, logger: logger, disabled: true}, nil
	}

	return &GitCalculator{
		cfg:         cfg,
		logger:      logger,
		repo:        repo,
		workdir:     workdir,
		dict:        identity.NewDictionary(),
		history:     history,
		repoData:    gitindicator.ComputeRepo(repo),
		commitCount: len(commits),
	}, nil
}

// readCommits returns workdir's commit log, consulting the checkpoint
// cache first when cfg.CacheDir is set and saving a freshly-read log back
// to it so the next scan of an unchanged HEAD is a cache hit.
func readCommits(repo *gitlib.Repository, workdir string, cfg GitConfig, logger *slog.Logger) ([]gitlog.Commit, error) {
	if cfg.CacheDir == "" {
		return gitlog.NewReader(repo, logger).Read(gitlog.Config{Since: cfg.Since, IncludeMerges: true})
	}

	head, headErr := repo.Head()

	cache := checkpoint.NewCache(cfg.CacheDir)

	if headErr == nil {
		if commits, err := cache.Load(workdir, head.String(), cfg.Since); err == nil {
			return commits, nil
		}
	}

	commits, err := gitlog.NewReader(repo, logger).Read(gitlog.Config{Since: cfg.Since, IncludeMerges: true})
	if err != nil {
		return nil, err
	}

	if headErr == nil {
		if err := cache.Save(workdir, head.String(), cfg.Since, commits); err != nil {
			logger.Warn("git: checkpoint save failed", "workdir", workdir, "error", err)
		}
	}

	return commits, nil
}

func (c *GitCalculator) Visit(node *tree.Node, absPath string) error {
	if c.disabled {
		return nil
	}

	if !node.IsFile {
		if sameDir(absPath, c.workdir) {
			repoData := c.repoData
			node.Indicators.Git = &tree.GitIndicator{Repo: &repoData}
		}

		return nil
	}

	if !c.history.IsRepoFor(absPath) {
		return nil
	}

	entries, ok := c.history.HistoryFor(absPath)
	if !ok {
		return nil
	}

	data := gitindicator.ComputeFile(c.dict, entries, c.history.LastCommit())
	if data == nil {
		return nil
	}

	if !c.cfg.Detailed {
		data.Details = nil
		data.Activity = nil
	}

	node.Indicators.Git = &tree.GitIndicator{File: data}

	return nil
}

func (c *GitCalculator) Metadata() map[string]any {
	if c.disabled || c.dict == nil {
		return nil
	}

	users := c.dict.Users()
	names := make([]string, len(users))

	for i, u := range users {
		names[i] = u.Name
	}

	return map[string]any{"git.users": users, "git.user_names": names}
}

// Close releases the underlying repository handle, if one was opened.
func (c *GitCalculator) Close() {
	if c.repo != nil {
		c.repo.Free()
	}
}

func sameDir(absPath, workdir string) bool {
	a, err1 := filepath.Abs(absPath)
	b, err2 := filepath.Abs(workdir)

	return err1 == nil && err2 == nil && a == b
}

// discoverWorkdir walks up from root looking for a directory containing a
// `.git` entry (a directory for a normal repo, a file for a worktree or
// submodule), per spec.md's "discoverable from the root via ancestor search".
func discoverWorkdir(root string) (string, bool) {
	dir, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}
