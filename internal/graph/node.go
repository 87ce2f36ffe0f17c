package graph

import "github.com/Seradorr/migrations/internal/layout"

// NodeID addresses a node inside its Graph.
type NodeID int

// NoNode marks an absent edge.
const NoNode NodeID = -1

// Node is one discovered artifact. Values returned by Graph.Node are
// snapshots; mutate through the Graph methods.
type Node struct {
	ID NodeID
	// Identity is a graph-unique token stable for the node's lifetime.
	Identity string

	Kind       layout.Kind
	SourcePath string
	BaseName   string
	// Index is the 1-based disambiguation index, 0 until resolved.
	Index int

	IsSurrogate  bool
	HasSurrogate bool
	// Pair is the other side of a surrogate pair: the actual node for a
	// surrogate, the surrogate for an actual.
	Pair NodeID

	IsCarried               bool
	Carrier                 NodeID
	CarrierRelativeLocation string

	WaitFor   []NodeID
	Affectors []NodeID

	Included  bool
	WasCopied bool
	IsLost    bool
}

// Settled reports whether the node no longer blocks nodes waiting for it.
func (n *Node) Settled() bool {
	return n.WasCopied || n.IsLost || !n.Included
}

// Actual returns the node a surrogate stands in for.
func (n *Node) Actual() (NodeID, bool) {
	if !n.IsSurrogate {
		return NoNode, false
	}
	return n.Pair, true
}
