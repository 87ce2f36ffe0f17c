package graph

import (
	"path/filepath"

	"github.com/Seradorr/migrations/internal/pathalg"
)

// CopySourcePath is what gets copied for the node: the enclosing folder for
// container nodes, the file itself otherwise.
func (g *Graph) CopySourcePath(id NodeID) string {
	n := g.get(id)
	if n.Kind.RepresentsFolder() {
		return filepath.Dir(n.SourcePath)
	}
	return n.SourcePath
}

// TargetDirectory is where the node lands in the target tree. Carried nodes
// follow their carrier; others live below their kind's layout directory.
func (g *Graph) TargetDirectory(id NodeID) string {
	n := g.get(id)
	if n.IsCarried {
		dir := g.TargetDirectory(n.Carrier)
		if rel := filepath.FromSlash(n.CarrierRelativeLocation); rel != "" && rel != "." {
			dir = filepath.Join(dir, rel)
		}
		return dir
	}
	return filepath.Join(g.layout.AbsoluteDir(n.Kind), g.TargetRelativeName(id))
}

// TargetPath is the node's file in the target tree.
//
// For plain non-carried nodes TargetDirectory already ends with the file
// name, so TargetPath returns it unchanged. Container and carried nodes get
// the effective name appended.
func (g *Graph) TargetPath(id NodeID) string {
	n := g.get(id)
	dir := g.TargetDirectory(id)
	if n.IsCarried || n.Kind.RepresentsFolder() {
		return filepath.Join(dir, g.EffectiveName(id))
	}
	return dir
}

// ToolRelativeReference is the directory reference the EDA tool sees,
// expressed against the layout anchor.
func (g *Graph) ToolRelativeReference(id NodeID) string {
	n := g.get(id)
	switch {
	case n.IsCarried:
		return pathalg.JoinSlash(g.ToolRelativeReference(n.Carrier), n.CarrierRelativeLocation)
	case n.Kind.RepresentsFolder():
		return pathalg.JoinSlash(g.layout.ToolRelative(n.Kind), g.TargetRelativeName(id))
	default:
		return g.layout.ToolRelative(n.Kind)
	}
}

// ToolRelativeFile is the reference written into the descriptor.
func (g *Graph) ToolRelativeFile(id NodeID) string {
	return pathalg.JoinSlash(g.ToolRelativeReference(id), g.EffectiveName(id))
}
