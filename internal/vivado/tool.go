// Package vivado relocates Vivado projects. It parses the .xpr descriptor,
// builds the relocation graph of every referenced artifact, copies or
// unpacks the artifacts into the target layout and writes a descriptor
// whose references point at the new locations.
package vivado

import (
	"context"

	"github.com/Seradorr/migrations/internal/migration"
)

// FixtureKey selects this tool's entry in a fixture file.
const FixtureKey = "vivado"

// Tool is the migration.Tool for Vivado projects.
type Tool struct {
	opts    Options
	project *Project
}

var _ migration.Tool = (*Tool)(nil)

// NewTool returns a Tool using opts.
func NewTool(opts Options) *Tool {
	return &Tool{opts: opts}
}

// Project returns the project of the last run, nil before the populate step.
func (t *Tool) Project() *Project {
	return t.project
}

// PopulateAndRelocate discovers, relocates and rewrites the descriptor.
func (t *Tool) PopulateAndRelocate(ctx context.Context, s *migration.Session) error {
	p, err := Discover(ctx, s.Input.DescriptorPath, s.Layout, t.opts)
	if err != nil {
		return err
	}
	t.project = p
	s.Logf("Found %d artifacts in %s", p.Graph.Len()-1, p.DescriptorPath)
	for _, w := range p.Warnings {
		s.Warn(w)
	}

	if err := p.Relocate(ctx, s); err != nil {
		return err
	}

	path, err := p.WriteDescriptor(ctx)
	if err != nil {
		return err
	}
	s.Log("Project file written to " + path)
	return nil
}

// GenerateAuxiliaryMetadata writes the .gitignore and the relocation manifest.
func (t *Tool) GenerateAuxiliaryMetadata(_ context.Context, s *migration.Session) error {
	path, err := WriteGitignore(s.Layout)
	if err != nil {
		return err
	}
	s.Log("Created " + path)

	if t.project == nil {
		return nil
	}
	path, err = t.project.WriteManifest()
	if err != nil {
		return err
	}
	s.Log("Created " + path)
	return nil
}
