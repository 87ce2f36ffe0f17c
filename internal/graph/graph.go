package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/pathalg"
)

var (
	// ErrCarrierCycle is returned when a carrier link would close a cycle.
	ErrCarrierCycle = errors.New("carrier link would create a cycle")
	// ErrNameResolved is returned when a change would move a node whose
	// disambiguation index was already handed out.
	ErrNameResolved = errors.New("node name already resolved")
	// ErrAlreadyPaired is returned when a node is already part of a surrogate pair.
	ErrAlreadyPaired = errors.New("node already in a surrogate pair")
	// ErrSelfDependency is returned when a node would wait for itself.
	ErrSelfDependency = errors.New("node cannot wait for itself")
	// ErrWaitCycle is returned by Schedule when waitFor edges form a cycle.
	ErrWaitCycle = errors.New("waitFor edges form a cycle")
)

// Graph is the relocation graph of one run.
type Graph struct {
	layout layout.Layout
	nodes  []*Node

	byIdentity map[string]NodeID
	bySource   map[string]NodeID

	// groupCounters holds the last index handed out per name group.
	groupCounters map[groupKey]int
	// taken holds the entry names already handed out per target directory.
	taken map[slotKey]bool
}

// New creates an empty graph whose derived paths are rooted at l.
func New(l layout.Layout) *Graph {
	return &Graph{
		layout:        l,
		byIdentity:    make(map[string]NodeID),
		bySource:      make(map[string]NodeID),
		groupCounters: make(map[groupKey]int),
		taken:         make(map[slotKey]bool),
	}
}

// Layout returns the layout the graph resolves paths against.
func (g *Graph) Layout() layout.Layout {
	return g.layout
}

// CreateNode adds a node for the artifact at sourcePath.
func (g *Graph) CreateNode(kind layout.Kind, sourcePath string) NodeID {
	id := NodeID(len(g.nodes))
	n := &Node{
		ID:         id,
		Identity:   uuid.NewString(),
		Kind:       kind,
		SourcePath: sourcePath,
		BaseName:   pathalg.FileName(sourcePath),
		Pair:       NoNode,
		Carrier:    NoNode,
		Included:   true,
	}
	g.nodes = append(g.nodes, n)
	g.byIdentity[n.Identity] = id
	if _, ok := g.bySource[pathalg.Normalize(sourcePath)]; !ok {
		g.bySource[pathalg.Normalize(sourcePath)] = id
	}
	log.Debug(log.CatGraph, "Node created", "id", id, "kind", kind, "source", sourcePath)
	return id
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a snapshot of the node with the given id.
// It panics on an id not produced by this graph.
func (g *Graph) Node(id NodeID) Node {
	return *g.get(id)
}

// Nodes returns all node ids in creation order.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, len(g.nodes))
	for i := range g.nodes {
		ids[i] = NodeID(i)
	}
	return ids
}

// Lookup finds a node by its identity token.
func (g *Graph) Lookup(identity string) (NodeID, bool) {
	id, ok := g.byIdentity[identity]
	return id, ok
}

// FindBySource returns the first node created for sourcePath, comparing
// paths case- and separator-insensitively.
func (g *Graph) FindBySource(sourcePath string) (NodeID, bool) {
	id, ok := g.bySource[pathalg.Normalize(sourcePath)]
	return id, ok
}

func (g *Graph) get(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		panic(fmt.Sprintf("graph: node %d out of range", id))
	}
	return g.nodes[id]
}

// LinkCarried makes carrier dictate child's destination: child lands at
// relativeLocation below the carrier's target directory.
func (g *Graph) LinkCarried(child, carrier NodeID, relativeLocation string) error {
	c := g.get(child)
	g.get(carrier)

	for cur := carrier; cur != NoNode; cur = g.nodes[cur].Carrier {
		if cur == child {
			return fmt.Errorf("%w: %d carried by %d", ErrCarrierCycle, child, carrier)
		}
	}
	if c.Index != 0 {
		return fmt.Errorf("%w: %d", ErrNameResolved, child)
	}

	c.IsCarried = true
	c.Carrier = carrier
	c.CarrierRelativeLocation = relativeLocation
	log.Debug(log.CatGraph, "Carrier linked", "child", child, "carrier", carrier, "rel", relativeLocation)
	return nil
}

// LinkSurrogate pairs a surrogate with the actual node it stands in for.
func (g *Graph) LinkSurrogate(surrogate, actual NodeID) error {
	s, a := g.get(surrogate), g.get(actual)
	if surrogate == actual {
		return fmt.Errorf("%w: %d paired with itself", ErrAlreadyPaired, surrogate)
	}
	if s.Pair != NoNode || a.Pair != NoNode {
		return fmt.Errorf("%w: %d, %d", ErrAlreadyPaired, surrogate, actual)
	}

	s.IsSurrogate = true
	s.Pair = actual
	a.HasSurrogate = true
	a.Pair = surrogate
	log.Debug(log.CatGraph, "Surrogate linked", "surrogate", surrogate, "actual", actual)
	return nil
}

// AddWaitFor records that node's copy step completes only after dependency
// settles. Duplicates are ignored; insertion order is preserved.
func (g *Graph) AddWaitFor(node, dependency NodeID) error {
	n := g.get(node)
	g.get(dependency)
	if node == dependency {
		return fmt.Errorf("%w: %d", ErrSelfDependency, node)
	}
	n.WaitFor = appendUnique(n.WaitFor, dependency)
	return nil
}

// AddAffector records that affector references node.
func (g *Graph) AddAffector(node, affector NodeID) {
	n := g.get(node)
	g.get(affector)
	n.Affectors = appendUnique(n.Affectors, affector)
}

func appendUnique(ids []NodeID, id NodeID) []NodeID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// Exclude drops node from this relocation, e.g. synthesis caches.
func (g *Graph) Exclude(id NodeID) error {
	n := g.get(id)
	if n.Index != 0 {
		return fmt.Errorf("%w: %d", ErrNameResolved, id)
	}
	n.Included = false
	return nil
}

// MarkCopied flags the node's bytes as materialized at its target.
func (g *Graph) MarkCopied(id NodeID) {
	g.get(id).WasCopied = true
}

// MarkLost flags the node's source bytes as missing.
func (g *Graph) MarkLost(id NodeID) {
	g.get(id).IsLost = true
}

// Ready reports whether every dependency of id has settled.
func (g *Graph) Ready(id NodeID) bool {
	for _, dep := range g.get(id).WaitFor {
		if !g.nodes[dep].Settled() {
			return false
		}
	}
	return true
}

// Schedule returns every node ordered after its waitFor dependencies.
// Among nodes that are free at the same time, creation order wins.
func (g *Graph) Schedule() ([]NodeID, error) {
	pending := make([]int, len(g.nodes))
	dependents := make([][]NodeID, len(g.nodes))
	for i, n := range g.nodes {
		pending[i] = len(n.WaitFor)
		for _, dep := range n.WaitFor {
			dependents[dep] = append(dependents[dep], NodeID(i))
		}
	}

	order := make([]NodeID, 0, len(g.nodes))
	emitted := make([]bool, len(g.nodes))
	for len(order) < len(g.nodes) {
		progressed := false
		for i := range g.nodes {
			if emitted[i] || pending[i] > 0 {
				continue
			}
			emitted[i] = true
			progressed = true
			order = append(order, NodeID(i))
			for _, d := range dependents[i] {
				pending[d]--
			}
		}
		if !progressed {
			return nil, ErrWaitCycle
		}
	}
	return order, nil
}
