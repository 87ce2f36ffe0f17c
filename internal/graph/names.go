package graph

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/pathalg"
)

// groupKey identifies the set of nodes that compete for the same target name.
type groupKey struct {
	kind     layout.Kind
	location string
	unit     string
}

// slotKey is one entry name inside one target directory.
type slotKey struct {
	dir  string
	name string
}

func (g *Graph) groupOf(n *Node) groupKey {
	location := ""
	if n.IsCarried {
		location = strconv.Itoa(int(n.Carrier)) + ":" + pathalg.Normalize(n.CarrierRelativeLocation)
	}
	return groupKey{
		kind:     n.Kind,
		location: location,
		unit:     pathalg.Normalize(unitName(n)),
	}
}

// dirOf names the directory a node's entry lands in without resolving any
// name: the carrier plus relative location for carried nodes, the layout
// segment otherwise. Kinds sharing a segment share the directory.
func (g *Graph) dirOf(n *Node) string {
	if n.IsCarried {
		return strconv.Itoa(int(n.Carrier)) + ":" + pathalg.Normalize(n.CarrierRelativeLocation)
	}
	return "layout:" + pathalg.Normalize(layout.Segment(n.Kind))
}

// unitName is the folder name for container nodes and the file name otherwise.
func unitName(n *Node) string {
	if n.Kind.RepresentsFolder() {
		return pathalg.FileName(filepath.Dir(n.SourcePath))
	}
	return n.BaseName
}

// entryName is the name the node occupies in its directory at index idx.
func entryName(n *Node, idx int) string {
	if n.Kind.RepresentsFolder() {
		if idx == 1 {
			return unitName(n)
		}
		return unitName(n) + "_" + strconv.Itoa(idx)
	}
	if idx == 1 {
		return n.BaseName
	}
	return suffixed(n.BaseName, idx)
}

// ResolveName returns the node's effective name, assigning disambiguation
// indices to its whole target directory the first time any member is asked.
func (g *Graph) ResolveName(id NodeID) string {
	g.index(id)
	return g.EffectiveName(id)
}

// index returns the node's disambiguation index, resolving every pending
// node of its target directory on first use. Excluded nodes always get 1
// and never take a name.
func (g *Graph) index(id NodeID) int {
	n := g.get(id)
	if n.Index != 0 {
		return n.Index
	}
	if !n.Included {
		n.Index = 1
		return n.Index
	}

	dir := g.dirOf(n)
	var pending []*Node
	for _, m := range g.nodes {
		if m.Index == 0 && m.Included && g.dirOf(m) == dir {
			pending = append(pending, m)
		}
	}

	// Plain names are claimed before any suffixed name is handed out.
	var rest []*Node
	opened := make(map[groupKey]bool)
	for _, m := range pending {
		key := g.groupOf(m)
		if g.groupCounters[key] == 0 && !opened[key] {
			opened[key] = true
			g.assign(m, dir)
			continue
		}
		rest = append(rest, m)
	}
	for _, m := range rest {
		g.assign(m, dir)
	}
	log.Debug(log.CatGraph, "Names resolved", "dir", dir, "nodes", len(pending))
	return n.Index
}

// assign gives m the next index of its group whose entry name is still free
// in dir. Indices grow in creation order; they skip only taken names.
func (g *Graph) assign(m *Node, dir string) {
	key := g.groupOf(m)
	idx := g.groupCounters[key] + 1
	for g.taken[slotKey{dir, pathalg.Normalize(entryName(m, idx))}] {
		idx++
	}
	m.Index = idx
	g.groupCounters[key] = idx
	g.taken[slotKey{dir, pathalg.Normalize(entryName(m, idx))}] = true
}

// EffectiveName is the node's base name with the disambiguation suffix
// spliced in. Container nodes keep their file name; their folder carries
// the suffix instead.
func (g *Graph) EffectiveName(id NodeID) string {
	n := g.get(id)
	idx := g.index(id)
	if idx == 1 || n.Kind.RepresentsFolder() {
		return n.BaseName
	}
	return suffixed(n.BaseName, idx)
}

// suffixed inserts _N before the extension. A leading dot is part of the
// stem, so ".gitignore" becomes ".gitignore_2".
func suffixed(name string, idx int) string {
	suffix := "_" + strconv.Itoa(idx)
	dot := strings.LastIndex(name, ".")
	if dot > 0 {
		return name[:dot] + suffix + name[dot:]
	}
	return name + suffix
}

// TargetRelativeName is the name of the node's entry below its layout
// directory: the suffixed folder name for containers, the effective name
// otherwise.
func (g *Graph) TargetRelativeName(id NodeID) string {
	n := g.get(id)
	return entryName(n, g.index(id))
}
