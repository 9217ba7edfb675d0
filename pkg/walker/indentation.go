package walker

import (
	"log/slog"
	"os"

	"github.com/teratoma-labs/polyglotscan/pkg/indentind"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

// IndentationCalculator attaches the indentation-depth distribution
// indicator to file nodes.
type IndentationCalculator struct {
	logger *slog.Logger
}

// NewIndentationCalculator builds an IndentationCalculator.
func NewIndentationCalculator(logger *slog.Logger) *IndentationCalculator {
	return &IndentationCalculator{logger: logger}
}

func (c *IndentationCalculator) Visit(node *tree.Node, absPath string) error {
	if !node.IsFile {
		return nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		c.logger.Warn("indentation: read failed", "path", absPath, "error", err)

		return nil
	}

	node.Indicators.Indentation = indentind.Compute(content)

	return nil
}

func (c *IndentationCalculator) Metadata() map[string]any { return nil }
