package vivado

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Seradorr/migrations/internal/graph"
	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/migration"
)

// ManifestName is the relocation record written next to the descriptor.
const ManifestName = "relocation.yaml"

// gitignore lists what Vivado regenerates below a relocated project.
const gitignore = `# Vivado generated files
*.jou
*.log
*.str
*.pb
*.backup.*
.Xil/
work/*.cache/
work/*.gen/
work/*.hw/
work/*.ip_user_files/
work/*.runs/
work/*.sim/
work/*.srcs/
`

// WriteGitignore writes the project's .gitignore at the layout root.
func WriteGitignore(l layout.Layout) (string, error) {
	path := filepath.Join(l.Root, ".gitignore")
	if err := os.WriteFile(path, []byte(gitignore), 0644); err != nil { //nolint:gosec // G306: checked into version control
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}
	return path, nil
}

// Status values recorded in the manifest.
const (
	StatusCopied   = "copied"
	StatusLost     = "lost"
	StatusExcluded = "excluded"
	StatusPending  = "pending"
)

// Manifest records where every artifact of a relocation went.
type Manifest struct {
	Descriptor string          `yaml:"descriptor"`
	Rewritten  string          `yaml:"rewritten"`
	Anchor     string          `yaml:"anchor"`
	Artifacts  []ManifestEntry `yaml:"artifacts"`
}

// ManifestEntry describes one node.
type ManifestEntry struct {
	Identity  string      `yaml:"identity"`
	Kind      layout.Kind `yaml:"kind"`
	Source    string      `yaml:"source"`
	Target    string      `yaml:"target,omitempty"`
	Reference string      `yaml:"reference,omitempty"`
	Status    string      `yaml:"status"`
	Carrier   string      `yaml:"carrier,omitempty"`
	Surrogate string      `yaml:"surrogate,omitempty"`
}

// NodeStatus summarizes the relocation flags of n.
func NodeStatus(n graph.Node) string {
	switch {
	case !n.Included:
		return StatusExcluded
	case n.IsLost:
		return StatusLost
	case n.WasCopied:
		return StatusCopied
	default:
		return StatusPending
	}
}

// Manifest builds the manifest of the project's current graph state.
func (p *Project) Manifest() Manifest {
	g := p.Graph
	m := Manifest{
		Descriptor: p.DescriptorPath,
		Rewritten:  p.DescriptorTarget(),
		Anchor:     g.Layout().Anchor,
	}
	for _, id := range g.Nodes() {
		n := g.Node(id)
		e := ManifestEntry{
			Identity: n.Identity,
			Kind:     n.Kind,
			Source:   n.SourcePath,
			Status:   NodeStatus(n),
		}
		if n.Included {
			e.Target = g.TargetPath(id)
			e.Reference = g.ToolRelativeFile(id)
		}
		if n.IsCarried {
			e.Carrier = g.Node(n.Carrier).Identity
		}
		if n.HasSurrogate {
			e.Surrogate = g.Node(n.Pair).Identity
		}
		m.Artifacts = append(m.Artifacts, e)
	}
	return m
}

// WriteManifest writes the manifest into the work directory.
func (p *Project) WriteManifest() (string, error) {
	data, err := yaml.Marshal(p.Manifest())
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(p.Graph.Layout().WorkDir(), ManifestName)
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // G306: project files are shared
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest. An artifact of
// an unknown kind fails with UnknownArtifactKind.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is user input
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		if errors.Is(err, layout.ErrUnknownKind) {
			return m, migration.Errorf(migration.UnknownArtifactKind, "manifest %s: %w", path, err)
		}
		return m, fmt.Errorf("decoding manifest: %w", err)
	}
	return m, nil
}

// PreviousManifest reads the manifest an earlier relocation left in l's
// work directory. ok is false when there is none.
func PreviousManifest(l layout.Layout) (m Manifest, ok bool, err error) {
	path := filepath.Join(l.WorkDir(), ManifestName)
	m, err = ReadManifest(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Manifest{}, false, nil
	case err != nil:
		return Manifest{}, false, err
	}
	return m, true, nil
}
