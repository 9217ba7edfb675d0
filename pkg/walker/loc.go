package walker

import (
	"log/slog"
	"os"

	"github.com/teratoma-labs/polyglotscan/pkg/locind"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

// LOCCalculator attaches the lines-of-code indicator to file nodes.
type LOCCalculator struct {
	logger *slog.Logger
}

// NewLOCCalculator builds a LOCCalculator that logs I/O failures at warn.
func NewLOCCalculator(logger *slog.Logger) *LOCCalculator {
	return &LOCCalculator{logger: logger}
}

func (c *LOCCalculator) Visit(node *tree.Node, absPath string) error {
	if !node.IsFile {
		return nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		c.logger.Warn("loc: read failed", "path", absPath, "error", err)

		return nil
	}

	node.Indicators.LOC = locind.Compute(node.Name, content)

	return nil
}

func (c *LOCCalculator) Metadata() map[string]any { return nil }
