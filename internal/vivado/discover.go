package vivado

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Seradorr/migrations/internal/extract"
	"github.com/Seradorr/migrations/internal/graph"
	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/migration"
	"github.com/Seradorr/migrations/internal/pathalg"
	"github.com/Seradorr/migrations/internal/tracing"
)

// DefaultCopyExclude skips design checkpoints when copying container folders;
// Vivado regenerates them.
const DefaultCopyExclude = `\.dcp$`

// Options tune discovery and relocation.
type Options struct {
	// CopyExclude matches file names left out of container folder copies.
	// Nil copies everything.
	CopyExclude *regexp.Regexp
	// Extract selects what is unpacked from IP container archives.
	Extract extract.Policy
	// SkipStatCache stats every source path on each lookup.
	SkipStatCache bool
}

// DefaultOptions returns the options used by the vivado command.
func DefaultOptions() Options {
	return Options{
		CopyExclude: regexp.MustCompile(DefaultCopyExclude),
		Extract:     extract.DefaultPolicy(),
	}
}

// Project is a parsed descriptor together with the relocation graph of
// every artifact it references.
type Project struct {
	DescriptorPath string
	// Name is the descriptor file name without extension.
	Name string
	// Dir is the directory holding the descriptor.
	Dir string

	Descriptor *Descriptor
	Raw        []byte
	Graph      *graph.Graph
	// Root is the node of the descriptor itself.
	Root graph.NodeID

	// refs maps each decoded <File Path> value to the node whose reference
	// replaces it.
	refs map[string]graph.NodeID
	// Warnings collected while building the graph.
	Warnings []string

	opts  Options
	stats *statCache
}

// Discover parses the descriptor at descriptorPath and builds its relocation
// graph against l. Nothing is written.
func Discover(ctx context.Context, descriptorPath string, l layout.Layout, opts Options) (p *Project, err error) {
	_, span := otel.Tracer(tracing.DefaultServiceName).Start(ctx, tracing.SpanDiscover)
	defer func() { tracing.EndSpan(span, err) }()

	raw, err := os.ReadFile(descriptorPath) //nolint:gosec // G304: descriptor path is user input by design
	if err != nil {
		return nil, migration.Errorf(migration.DescriptorNotFound, "reading descriptor: %w", err)
	}
	desc, err := ParseDescriptor(raw)
	if err != nil {
		return nil, migration.Errorf(migration.InvalidDescriptor, "%s: %w", descriptorPath, err)
	}
	p = &Project{
		DescriptorPath: descriptorPath,
		Name:           pathalg.FileNameNoExt(descriptorPath),
		Dir:            filepath.Dir(descriptorPath),
		Descriptor:     desc,
		Raw:            raw,
		Graph:          graph.New(l),
		refs:           make(map[string]graph.NodeID),
		opts:           opts,
		stats:          newStatCache(opts.SkipStatCache),
	}

	p.Root = p.Graph.CreateNode(layout.KindProject, descriptorPath)
	// The descriptor is rewritten into the work directory, never copied.
	if err := p.Graph.Exclude(p.Root); err != nil {
		return nil, err
	}

	for _, fs := range desc.FileSets {
		for _, ref := range fs.Files {
			if err := p.addReference(fs, ref); err != nil {
				return nil, err
			}
		}
	}
	if err := p.linkCarriers(); err != nil {
		return nil, err
	}
	p.resolveNames()

	span.SetAttributes(attribute.Int(tracing.AttrNodeCount, p.Graph.Len()))
	log.Info(log.CatVivado, "Descriptor discovered", "path", descriptorPath, "filesets", len(desc.FileSets), "nodes", p.Graph.Len())
	return p, nil
}

func (p *Project) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.Warnings = append(p.Warnings, msg)
	log.Warn(log.CatVivado, msg)
}

// variables maps descriptor path variables to directories.
func (p *Project) variables() [][2]string {
	return [][2]string{
		{"$PPRDIR", p.Dir},
		{"$PSRCDIR", filepath.Join(p.Dir, p.Name+".srcs")},
		{"$PGENDIR", filepath.Join(p.Dir, p.Name+".gen")},
		{"$PIPUSERFILESDIR", filepath.Join(p.Dir, p.Name+".ip_user_files")},
	}
}

var driveLetter = regexp.MustCompile(`^[A-Za-z]:/`)

// Resolve turns a descriptor reference into an absolute source path.
// Relative references without a variable are taken relative to the
// descriptor directory.
func (p *Project) Resolve(ref string) (string, bool) {
	rel := strings.ReplaceAll(ref, `\`, "/")
	base := p.Dir
	for _, v := range p.variables() {
		if rel == v[0] || strings.HasPrefix(rel, v[0]+"/") {
			return pathalg.Traverse(v[1], strings.TrimPrefix(rel, v[0]))
		}
	}
	if strings.HasPrefix(rel, "/") || driveLetter.MatchString(rel) {
		return filepath.Clean(filepath.FromSlash(rel)), true
	}
	return pathalg.Traverse(base, rel)
}

// generated reports whether path lies in a directory Vivado regenerates.
func (p *Project) generated(path string) bool {
	for _, seg := range pathalg.Split(path) {
		if strings.EqualFold(seg, p.Name+".runs") ||
			strings.EqualFold(seg, p.Name+".cache") ||
			strings.EqualFold(seg, ".Xil") {
			return true
		}
	}
	return false
}

func (p *Project) addReference(fs FileSet, ref string) error {
	g := p.Graph
	if _, seen := p.refs[ref]; seen {
		return nil
	}

	source, ok := p.Resolve(ref)
	if !ok {
		p.warn("Cannot resolve reference %s in file set %s", ref, fs.Name)
		return nil
	}
	kind, err := Classify(fs.Type, source)
	if err != nil {
		return migration.Errorf(migration.UnknownArtifactKind, "file set %s: %w", fs.Name, err)
	}

	id, exists := g.FindBySource(source)
	if !exists {
		id = g.CreateNode(kind, source)
		g.AddAffector(id, p.Root)
		if p.generated(source) {
			if err := g.Exclude(id); err != nil {
				return err
			}
			log.Debug(log.CatVivado, "Generated artifact excluded", "path", source)
		}
	}
	p.refs[ref] = id

	if kind != layout.KindIPArchive {
		return nil
	}
	n := g.Node(id)
	if n.IsSurrogate {
		p.refs[ref] = n.Pair
		return nil
	}
	if !n.Included {
		return nil
	}
	actual, err := p.linkArchive(id, source)
	if err != nil {
		return err
	}
	p.refs[ref] = actual
	return nil
}

// linkArchive pairs the archive at source with the IP it unpacks to,
// <dir>/<name>/<name>.xci, creating that node when needed.
func (p *Project) linkArchive(archive graph.NodeID, source string) (graph.NodeID, error) {
	g := p.Graph
	name := pathalg.FileNameNoExt(source)
	xci := filepath.Join(filepath.Dir(source), name, name+".xci")

	actual, ok := g.FindBySource(xci)
	if !ok {
		actual = g.CreateNode(layout.KindIP, xci)
		g.AddAffector(actual, p.Root)
	}
	if g.Node(actual).Pair != graph.NoNode {
		return actual, nil
	}
	if err := g.LinkSurrogate(archive, actual); err != nil {
		return graph.NoNode, err
	}
	if err := g.AddWaitFor(actual, archive); err != nil {
		return graph.NoNode, err
	}
	return actual, nil
}

// linkCarriers attaches every node lying inside a container folder to the
// deepest such container.
func (p *Project) linkCarriers() error {
	g := p.Graph
	var containers []graph.NodeID
	for _, id := range g.Nodes() {
		n := g.Node(id)
		if id != p.Root && n.Included && n.Kind.RepresentsFolder() {
			containers = append(containers, id)
		}
	}

	for _, id := range g.Nodes() {
		n := g.Node(id)
		if id == p.Root || !n.Included {
			continue
		}
		dir := filepath.Dir(n.SourcePath)

		carrier, depth, rel := graph.NoNode, -1, ""
		for _, c := range containers {
			folder := g.CopySourcePath(c)
			if c == id {
				continue
			}
			below, ok := pathalg.Below(dir, folder)
			if !ok {
				continue
			}
			// A container sharing its folder with n cannot carry it.
			if n.Kind.RepresentsFolder() && pathalg.Equal(dir, folder) {
				continue
			}
			if d := len(pathalg.Split(folder)); d > depth {
				carrier, depth, rel = c, d, below
			}
		}
		if carrier == graph.NoNode {
			continue
		}

		if err := g.LinkCarried(id, carrier, rel); err != nil {
			if errors.Is(err, graph.ErrCarrierCycle) {
				p.warn("Ignoring nested container %s", n.SourcePath)
				continue
			}
			return err
		}
		if err := g.AddWaitFor(id, carrier); err != nil {
			return err
		}
		g.AddAffector(id, carrier)
	}
	return nil
}

// resolveNames assigns every disambiguation index and reports renames.
func (p *Project) resolveNames() {
	g := p.Graph
	for _, id := range g.Nodes() {
		g.ResolveName(id)
	}
	for _, id := range g.Nodes() {
		n := g.Node(id)
		if n.Included && n.Index > 1 {
			p.warn("Renamed %s to %s to avoid a name conflict", n.SourcePath, g.TargetRelativeName(id))
		}
	}
}

// Reference returns the node a <File Path> value was mapped to.
func (p *Project) Reference(ref string) (graph.NodeID, bool) {
	id, ok := p.refs[ref]
	return id, ok
}

// DescriptorTarget is where the rewritten descriptor is written.
func (p *Project) DescriptorTarget() string {
	return filepath.Join(p.Graph.Layout().WorkDir(), filepath.Base(p.DescriptorPath))
}
