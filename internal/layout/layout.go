// Package layout defines the normalized directory structure a relocated
// project is written into, and the artifact kinds that select a directory.
package layout

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultAnchor is Vivado's "relative to the descriptor directory" variable.
const DefaultAnchor = "$PPRDIR"

// WorkDirName holds the relocated descriptor.
const WorkDirName = "work"

// ErrUnknownKind is returned for kind values outside the known set.
var ErrUnknownKind = errors.New("unknown artifact kind")

// Layout is the target tree of a single relocation. It is a plain value so
// that independent relocations (and tests) never share a root directory.
type Layout struct {
	// Root is the absolute target root directory.
	Root string
	// Anchor is the tool variable rewritten references start with.
	Anchor string
}

// New returns a Layout rooted at root using the default anchor token.
func New(root string) Layout {
	return Layout{Root: root, Anchor: DefaultAnchor}
}

// Segment returns the slash-separated directory of kind below the root.
func Segment(kind Kind) string {
	switch kind {
	case KindRTL:
		return "hdl"
	case KindSimulation:
		return "sim"
	case KindIP, KindIPArchive, KindIPManifest:
		return "ip"
	case KindBlockDesign, KindBlockDesignManifest:
		return "bd"
	case KindConstraint:
		return "const"
	case KindCoefficient:
		return "other/coe"
	case KindOutput:
		return "out"
	case KindElf:
		return "elf"
	case KindHardwareExport:
		return "hw_export"
	case KindSecondaryProject:
		return "vitis"
	default:
		return "other"
	}
}

// WorkDir returns the directory the relocated descriptor is written to.
func (l Layout) WorkDir() string {
	return filepath.Join(l.Root, WorkDirName)
}

// AbsoluteDir returns the absolute directory for kind.
func (l Layout) AbsoluteDir(kind Kind) string {
	return filepath.Join(l.Root, filepath.FromSlash(Segment(kind)))
}

// ToolRelative returns the directory for kind expressed relative to the
// descriptor, e.g. "$PPRDIR/../hdl".
func (l Layout) ToolRelative(kind Kind) string {
	return l.anchor() + "/../" + Segment(kind)
}

func (l Layout) anchor() string {
	if l.Anchor == "" {
		return DefaultAnchor
	}
	return strings.TrimRight(l.Anchor, "/")
}

// AllDirectories lists every directory of the target tree: the root, the
// work directory, then each layout directory once, parents before children.
func (l Layout) AllDirectories() []string {
	dirs := []string{l.Root, l.WorkDir()}
	seen := map[string]bool{l.Root: true, l.WorkDir(): true}
	for _, kind := range stagedKinds {
		dir := l.AbsoluteDir(kind)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// stagedKinds orders directory creation; "other" precedes "other/coe".
var stagedKinds = []Kind{
	KindBlockDesign,
	KindConstraint,
	KindOther,
	KindCoefficient,
	KindIP,
	KindRTL,
	KindSimulation,
	KindOutput,
	KindElf,
	KindHardwareExport,
	KindSecondaryProject,
}

// CheckKind reports ErrUnknownKind for values outside the enumeration.
func CheckKind(kind Kind) error {
	if kind < KindProject || kind > KindOther {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return nil
}
