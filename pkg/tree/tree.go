// Package tree implements the hierarchical indicator-tree node model shared
// by every calculator: one node per filesystem entry, carrying a typed set
// of optional indicator slots, traversed once during the walk and read-only
// thereafter.
package tree

import (
	"encoding/json"
	"fmt"

	"github.com/teratoma-labs/polyglotscan/pkg/coupling"
	"github.com/teratoma-labs/polyglotscan/pkg/filestats"
	"github.com/teratoma-labs/polyglotscan/pkg/gitindicator"
	"github.com/teratoma-labs/polyglotscan/pkg/indentind"
	"github.com/teratoma-labs/polyglotscan/pkg/locind"
)

// RootName is the sentinel name carried by the tree root.
const RootName = ""

// GitIndicator is the git node-data sum type: exactly one of Repo (the
// directory variant, attached only at the directory hosting .git) or File
// (the file variant) is populated.
type GitIndicator struct {
	Repo *gitindicator.RepoGitData `json:"repo,omitempty"`
	File *gitindicator.FileGitData `json:"file,omitempty"`
}

// Indicators is the closed set of per-node indicator slots. Unset slots are
// nil/empty and are omitted from serialization.
type Indicators struct {
	LOC         *locind.Data      `json:"loc,omitempty"`
	Indentation *indentind.Data   `json:"indentation,omitempty"`
	Git         *GitIndicator     `json:"git,omitempty"`
	Coupling    coupling.Data     `json:"coupling,omitempty"`
	FileStats   *filestats.Data   `json:"file_stats,omitempty"`
}

// IsEmpty reports whether no indicator slot has been populated.
func (ind Indicators) IsEmpty() bool {
	return ind.LOC == nil && ind.Indentation == nil && ind.Git == nil &&
		len(ind.Coupling) == 0 && ind.FileStats == nil
}

// Node is one entry in the indicator tree: a directory or a file.
type Node struct {
	Name       string
	IsFile     bool
	Children   []*Node
	Indicators Indicators
}

// MarshalJSON renders n as {"name", "data"?, "children"?}: data is present
// only when at least one indicator slot is populated, and children is
// present only for directories (file nodes omit it entirely, per
// spec.md §6).
func (n *Node) MarshalJSON() ([]byte, error) {
	var data *Indicators
	if !n.Indicators.IsEmpty() {
		data = &n.Indicators
	}

	var encoded []byte

	var err error

	if n.IsFile {
		encoded, err = json.Marshal(struct {
			Name string      `json:"name"`
			Data *Indicators `json:"data,omitempty"`
		}{Name: n.Name, Data: data})
	} else {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}

		encoded, err = json.Marshal(struct {
			Name     string      `json:"name"`
			Data     *Indicators `json:"data,omitempty"`
			Children []*Node     `json:"children"`
		}{Name: n.Name, Data: data, Children: children})
	}

	if err != nil {
		return nil, fmt.Errorf("marshal tree node %q: %w", n.Name, err)
	}

	return encoded, nil
}

// New creates a node. Only directories (isFile == false) may later receive
// children via AppendChild.
func New(name string, isFile bool) *Node {
	return &Node{Name: name, IsFile: isFile}
}

// NewRoot creates the tree root: a directory node with the sentinel name.
func NewRoot() *Node {
	return New(RootName, false)
}

// AppendChild appends child to n's children. Panics if n is a file node:
// appending a child to a file is a programmer error (spec invariant).
func (n *Node) AppendChild(child *Node) {
	if n.IsFile {
		panic(fmt.Sprintf("tree: cannot append child %q to file node %q", child.Name, n.Name))
	}

	n.Children = append(n.Children, child)
}

// GetChildren returns n's children (empty for files).
func (n *Node) GetChildren() []*Node {
	return n.Children
}

// GetIn walks components by name, starting from n, returning the node at
// that path or nil if any component is missing.
func (n *Node) GetIn(components []string) *Node {
	cur := n

	for _, c := range components {
		cur = cur.childNamed(c)
		if cur == nil {
			return nil
		}
	}

	return cur
}

// GetInMut is the mutable counterpart of GetIn; Node methods already return
// pointers, so this is an alias kept for symmetry with the contract naming.
func (n *Node) GetInMut(components []string) *Node {
	return n.GetIn(components)
}

func (n *Node) childNamed(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}
