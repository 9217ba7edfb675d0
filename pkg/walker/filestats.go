package walker

import (
	"log/slog"

	"github.com/teratoma-labs/polyglotscan/pkg/filestats"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

// FileStatsCalculator attaches the creation/modification timestamp
// indicator to file nodes.
type FileStatsCalculator struct {
	logger *slog.Logger
}

// NewFileStatsCalculator builds a FileStatsCalculator.
func NewFileStatsCalculator(logger *slog.Logger) *FileStatsCalculator {
	return &FileStatsCalculator{logger: logger}
}

func (c *FileStatsCalculator) Visit(node *tree.Node, absPath string) error {
	if !node.IsFile {
		return nil
	}

	data, err := filestats.Compute(absPath)
	if err != nil {
		c.logger.Warn("file_stats: stat failed", "path", absPath, "error", err)

		return nil
	}

	node.Indicators.FileStats = data

	return nil
}

func (c *FileStatsCalculator) Metadata() map[string]any { return nil }
