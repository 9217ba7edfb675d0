package walker

import "github.com/teratoma-labs/polyglotscan/pkg/tree"

// Calculator is the closed capability every registered calculator exposes:
// visit one node as the walk discovers it, and optionally contribute
// root-level metadata once the whole tree has been built. The walker
// invokes a calculator's Visit for every node it creates, in registration
// order, then calls Metadata once per calculator after the walk completes.
type Calculator interface {
	// Visit is called once per discovered node, directory or file, with the
	// node's absolute filesystem path. Errors are not fatal to the walk:
	// the caller logs and continues (spec's locally-recovered I/O taxonomy).
	Visit(node *tree.Node, absPath string) error

	// Metadata returns this calculator's contribution to the document
	// root's metadata object, or nil if it contributes none. Called once,
	// after every node has been visited by every calculator.
	Metadata() map[string]any
}
