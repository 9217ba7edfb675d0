package walker

import (
	"github.com/teratoma-labs/polyglotscan/pkg/coupling"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
)

// CouplingCalculator implements C6: it observes the tree as the other
// calculators populate it, then, once the walk is complete, runs the
// five-pass coupling algorithm and writes the result back onto the file
// nodes it observed. It must be registered after the LOC and git
// calculators so that by the time it visits a node, that node's loc/git
// indicators are already attached.
type CouplingCalculator struct {
	cfg      coupling.Config
	nodes    map[string]*tree.Node
	inputs   []coupling.FileInput
	result   map[string]coupling.Data
	meta     *coupling.RootMetadata
	computed bool
}

// NewCouplingCalculator builds a CouplingCalculator with the given config.
func NewCouplingCalculator(cfg coupling.Config) *CouplingCalculator {
	return &CouplingCalculator{
		cfg:   cfg,
		nodes: make(map[string]*tree.Node),
	}
}

func (c *CouplingCalculator) Visit(node *tree.Node, absPath string) error {
	if !node.IsFile {
		return nil
	}

	if node.Indicators.LOC == nil || node.Indicators.LOC.Code <= 0 {
		return nil
	}

	git := node.Indicators.Git
	if git == nil || git.File == nil {
		return nil
	}

	var timestamps []int64

	for _, a := range git.File.Activity {
		if a.LinesAdded > 0 || a.LinesDeleted > 0 {
			timestamps = append(timestamps, a.CommitTime)
		}
	}

	if len(timestamps) == 0 {
		return nil
	}

	c.nodes[absPath] = node
	c.inputs = append(c.inputs, coupling.FileInput{Path: absPath, Timestamps: timestamps})

	return nil
}

// Result returns the surviving coupling records and run metadata, computed
// during the preceding Metadata call. Exposed for callers (e.g. the
// `--coupling-plot` renderer) that need the raw data, not just root
// metadata.
func (c *CouplingCalculator) Result() (map[string]coupling.Data, *coupling.RootMetadata) {
	if c.computed {
		return c.result, c.meta
	}

	result, meta, _ := coupling.Compute(c.inputs, c.cfg)
	c.result, c.meta, c.computed = result, meta, true

	for path, data := range result {
		if node, ok := c.nodes[path]; ok {
			node.Indicators.Coupling = data
		}
	}

	return result, meta
}

func (c *CouplingCalculator) Metadata() map[string]any {
	_, meta := c.Result()
	if meta == nil {
		return nil
	}

	return map[string]any{
		"coupling.buckets": map[string]any{
			"bucket_size":        meta.BucketSize,
			"bucket_count":       meta.BucketCount,
			"first_bucket_start": meta.FirstBucketStart,
		},
		"coupling.config": meta.Config,
	}
}
