// Package graph holds the relocation graph: one node per artifact referenced
// by a project descriptor, and the edges that decide where each artifact
// lands in the target tree and in which order artifacts may be materialized.
//
// # Storage
//
// The graph is an insert-only arena. Nodes are addressed by NodeID, an index
// into the arena, and every edge (carrier, surrogate pair, waitFor, affector)
// is stored as a NodeID. Nothing is removed during a run; the graph is
// rebuilt from scratch for every relocation.
//
// # Edges
//
//   - Carrier: a carried node's destination is dictated by its carrier's
//     resolved location plus a relative location, e.g. an IP embedded in a
//     block design folder. Carrier chains are acyclic; LinkCarried rejects
//     a link that would close a cycle.
//   - Surrogate: a surrogate stands in for an actual node whose bytes do not
//     exist yet, typically an archive awaiting extraction.
//   - WaitFor: dependencies that must be settled before a node's own copy
//     step counts as complete. Schedule orders nodes accordingly.
//   - Affectors: nodes that reference this node. Informational only.
//
// # Derived attributes
//
// Effective names, copy sources, target paths and tool-relative references
// are never stored. They are recomputed from the current graph state on
// every call. The only memoized value is the disambiguation index, which is
// assigned for a whole (kind, location, name) group on first request, in
// creation order.
//
// # Thread-Safety
//
// A Graph is owned by the single worker running a relocation and is not
// safe for concurrent use.
package graph
