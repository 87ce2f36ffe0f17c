package vivado

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Seradorr/migrations/internal/graph"
	"github.com/Seradorr/migrations/internal/pathalg"
)

// PlanRow is one artifact of a dry run.
type PlanRow struct {
	ID        graph.NodeID
	Kind      string
	Source    string
	Target    string
	Reference string
	Status    string
	Carried   bool
	Surrogate bool
}

// PlanReport is what a relocation would do, computed without writing.
type PlanReport struct {
	Descriptor string
	Rewritten  string
	Rows       []PlanRow
	Warnings   []string
	Original   string
	Updated    string

	// Previous is set when an earlier relocation left a manifest in the
	// target; Changes then lists what moved since.
	Previous bool
	Changes  []ArtifactChange
}

// Plan reports the destination of every artifact and the rewritten
// descriptor.
func (p *Project) Plan() PlanReport {
	g := p.Graph
	report := PlanReport{
		Descriptor: p.DescriptorPath,
		Rewritten:  p.DescriptorTarget(),
		Warnings:   append([]string(nil), p.Warnings...),
		Original:   string(p.Raw),
		Updated:    string(p.Rewrite()),
	}
	for _, id := range g.Nodes() {
		if id == p.Root {
			continue
		}
		n := g.Node(id)
		row := PlanRow{
			ID:        id,
			Kind:      n.Kind.String(),
			Source:    n.SourcePath,
			Status:    NodeStatus(n),
			Carried:   n.IsCarried,
			Surrogate: n.IsSurrogate,
		}
		if n.Included {
			row.Target = g.TargetPath(id)
			row.Reference = g.ToolRelativeFile(id)
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

// DiffOp is the kind of a DiffLine.
type DiffOp int

const (
	DiffContext DiffOp = iota
	DiffDelete
	DiffInsert
)

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// DescriptorDiff diffs the original and rewritten descriptor line by line.
// Unchanged lines are kept as context only when they border a change.
func (r PlanReport) DescriptorDiff() []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(r.Original, r.Updated)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []DiffLine
	for _, d := range diffs {
		op := DiffContext
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			all = append(all, DiffLine{Op: op, Text: strings.TrimSuffix(line, "\n")})
		}
	}

	var out []DiffLine
	for i, l := range all {
		if l.Op != DiffContext || changed(all, i-1) || changed(all, i+1) {
			out = append(out, l)
		}
	}
	return out
}

func changed(lines []DiffLine, i int) bool {
	return i >= 0 && i < len(lines) && lines[i].Op != DiffContext
}

// Change values of an ArtifactChange.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
	ChangeMoved   = "moved"
)

// ArtifactChange is one difference between two manifests.
type ArtifactChange struct {
	Change string
	Source string
	From   string
	To     string
}

// CompareWith records how the plan differs from the relocation recorded in
// prev. Artifacts are matched by source path; excluded ones are ignored.
func (r *PlanReport) CompareWith(prev Manifest) {
	r.Previous = true
	r.Changes = CompareManifests(prev, r.manifest())
}

func (r PlanReport) manifest() Manifest {
	m := Manifest{Descriptor: r.Descriptor, Rewritten: r.Rewritten}
	for _, row := range r.Rows {
		m.Artifacts = append(m.Artifacts, ManifestEntry{Source: row.Source, Target: row.Target, Status: row.Status})
	}
	return m
}

// CompareManifests lists the artifacts added, removed or retargeted between
// prev and cur, in cur's order followed by the removals in prev's order.
func CompareManifests(prev, cur Manifest) []ArtifactChange {
	before := make(map[string]ManifestEntry)
	for _, e := range prev.Artifacts {
		if e.Target != "" {
			before[pathalg.Normalize(e.Source)] = e
		}
	}

	var changes []ArtifactChange
	seen := make(map[string]bool)
	for _, e := range cur.Artifacts {
		if e.Target == "" {
			continue
		}
		key := pathalg.Normalize(e.Source)
		seen[key] = true
		old, ok := before[key]
		switch {
		case !ok:
			changes = append(changes, ArtifactChange{Change: ChangeAdded, Source: e.Source, To: e.Target})
		case !pathalg.Equal(old.Target, e.Target):
			changes = append(changes, ArtifactChange{Change: ChangeMoved, Source: e.Source, From: old.Target, To: e.Target})
		}
	}
	for _, e := range prev.Artifacts {
		if e.Target != "" && !seen[pathalg.Normalize(e.Source)] {
			changes = append(changes, ArtifactChange{Change: ChangeRemoved, Source: e.Source, From: e.Target})
		}
	}
	return changes
}
