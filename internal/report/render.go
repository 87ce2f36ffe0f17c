package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/pathalg"
	"github.com/Seradorr/migrations/internal/vivado"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 100

// Options control plan rendering.
type Options struct {
	// Width is the terminal width; paths are truncated to fit.
	Width int
	// Diff appends the descriptor diff.
	Diff bool
}

// Plan renders a dry-run report: one line per artifact, the warnings and
// optionally the descriptor diff. Sources are shown relative to the
// descriptor's directory.
func Plan(r vivado.PlanReport, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	// status + kind + arrow + two paths
	pathWidth := (width - 9 - 12 - 4) / 2
	if pathWidth < 10 {
		pathWidth = 10
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Plan for "+r.Descriptor) + "\n")
	b.WriteString(MutedStyle.Render("Descriptor written to "+r.Rewritten) + "\n\n")

	projectDir := filepath.Dir(r.Descriptor)
	b.WriteString(SectionStyle.Render("Artifacts") + "\n")
	for _, row := range r.Rows {
		target := row.Target
		if target == "" {
			target = "-"
		}
		kind := row.Kind
		switch {
		case row.Carried:
			kind += "*"
		case row.Surrogate:
			kind += "~"
		}
		b.WriteString(StatusStyle(row.Status).Render(row.Status) +
			KindStyle.Render(kind) +
			PathStyle.Render(TruncatePath(pathalg.Relativize(row.Source, projectDir), pathWidth)) +
			MutedStyle.Render(" -> ") +
			PathStyle.Render(TruncatePath(target, pathWidth)) + "\n")
	}
	b.WriteString(MutedStyle.Render(summary(r.Rows)) + "\n")

	if len(r.Warnings) > 0 {
		b.WriteString("\n" + SectionStyle.Render("Warnings") + "\n")
		for _, w := range r.Warnings {
			b.WriteString(WarningStyle.Render("! "+w) + "\n")
		}
	}

	if r.Previous {
		b.WriteString("\n" + SectionStyle.Render("Since last relocation") + "\n")
		b.WriteString(Changes(r.Changes, pathWidth))
	}

	if opts.Diff {
		b.WriteString("\n" + SectionStyle.Render("Descriptor changes") + "\n")
		b.WriteString(Diff(r.DescriptorDiff()))
	}
	return b.String()
}

func summary(rows []vivado.PlanRow) string {
	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Status]++
	}
	return fmt.Sprintf("%d artifacts: %d pending, %d excluded (* carried by a container, ~ unpacked from an archive)",
		len(rows), counts[vivado.StatusPending], counts[vivado.StatusExcluded])
}

// Changes renders the differences to an earlier relocation.
func Changes(changes []vivado.ArtifactChange, pathWidth int) string {
	if len(changes) == 0 {
		return MutedStyle.Render("(no changes)") + "\n"
	}
	var b strings.Builder
	for _, c := range changes {
		switch c.Change {
		case vivado.ChangeAdded:
			b.WriteString(DiffInsertStyle.Render("+ "+TruncatePath(c.To, pathWidth)) + "\n")
		case vivado.ChangeRemoved:
			b.WriteString(DiffDeleteStyle.Render("- "+TruncatePath(c.From, pathWidth)) + "\n")
		default:
			b.WriteString(WarningStyle.Render("~ "+TruncatePath(c.From, pathWidth)) +
				MutedStyle.Render(" -> ") + PathStyle.Render(TruncatePath(c.To, pathWidth)) + "\n")
		}
	}
	return b.String()
}

// Diff renders descriptor diff lines in unified style.
func Diff(lines []vivado.DiffLine) string {
	if len(lines) == 0 {
		return MutedStyle.Render("(no changes)") + "\n"
	}
	var b strings.Builder
	for _, l := range lines {
		switch l.Op {
		case vivado.DiffDelete:
			b.WriteString(DiffDeleteStyle.Render("-"+l.Text) + "\n")
		case vivado.DiffInsert:
			b.WriteString(DiffInsertStyle.Render("+"+l.Text) + "\n")
		default:
			b.WriteString(DiffContextStyle.Render(" "+l.Text) + "\n")
		}
	}
	return b.String()
}

// Layout lists the directories of a target tree and the kinds stored in
// each.
func Layout(l layout.Layout) string {
	kindsByDir := map[string][]string{}
	for k := layout.KindProject; k <= layout.KindOther; k++ {
		if k == layout.KindProject {
			continue
		}
		dir := l.AbsoluteDir(k)
		kindsByDir[dir] = append(kindsByDir[dir], k.String())
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Layout of "+l.Root) + "\n")
	for _, dir := range l.AllDirectories() {
		line := PathStyle.Render(dir)
		switch {
		case dir == l.WorkDir():
			line += MutedStyle.Render("  descriptor")
		case len(kindsByDir[dir]) > 0:
			line += MutedStyle.Render("  " + strings.Join(kindsByDir[dir], ", "))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
