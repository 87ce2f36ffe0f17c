package vivado

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Seradorr/migrations/internal/extract"
	"github.com/Seradorr/migrations/internal/fsutil"
	"github.com/Seradorr/migrations/internal/graph"
	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/tracing"
)

// Reporter receives the user-facing messages of a relocation.
type Reporter interface {
	Log(msg string)
	Warn(msg string)
}

// Relocate materializes every included node at its target path, in
// dependency order. Missing sources and over-long target paths become
// warnings; failing copies abort the relocation.
func (p *Project) Relocate(ctx context.Context, r Reporter) (err error) {
	ctx, span := otel.Tracer(tracing.DefaultServiceName).Start(ctx, tracing.SpanRelocate)
	defer func() { tracing.EndSpan(span, err) }()

	order, err := p.Graph.Schedule()
	if err != nil {
		return err
	}
	for _, id := range order {
		if err := p.relocateNode(ctx, span, r, id); err != nil {
			return err
		}
	}

	var copied, lost, excluded int
	for _, id := range p.Graph.Nodes() {
		n := p.Graph.Node(id)
		switch {
		case !n.Included:
			excluded++
		case n.IsLost:
			lost++
		case n.WasCopied:
			copied++
		}
	}
	span.SetAttributes(
		attribute.Int(tracing.AttrCopied, copied),
		attribute.Int(tracing.AttrLost, lost),
		attribute.Int(tracing.AttrExcluded, excluded),
	)
	r.Log(fmt.Sprintf("Relocated %d artifacts (%d missing, %d skipped)", copied, lost, excluded))
	return nil
}

func (p *Project) relocateNode(ctx context.Context, span trace.Span, r Reporter, id graph.NodeID) error {
	g := p.Graph
	n := g.Node(id)

	switch {
	case !n.Included:
		log.Debug(log.CatCopy, "Skipping excluded artifact", "path", n.SourcePath)
		return nil
	case n.WasCopied || n.IsLost:
		return nil
	case !g.Ready(id):
		r.Warn("Skipping " + n.SourcePath + ": an artifact it depends on was not relocated")
		g.MarkLost(id)
		return nil
	}

	target := g.TargetPath(id)
	if limit := p.opts.Extract.MaxPathLength; limit > 0 && utf8.RuneCountInString(target) >= limit {
		r.Warn("Skipping file due to MAX_PATH: " + target)
		span.AddEvent(tracing.EventPathTooLong, trace.WithAttributes(attribute.String(tracing.AttrNodeSource, n.SourcePath)))
		g.MarkLost(id)
		return nil
	}

	switch {
	case n.IsSurrogate:
		return p.unpack(ctx, span, r, id)
	case (n.IsCarried || n.HasSurrogate) && fsutil.Exists(target):
		// Placed by its carrier's folder copy or an archive extraction.
		g.MarkCopied(id)
		log.Debug(log.CatCopy, "Already in place", "path", target)
		return nil
	case fsutil.Exists(target):
		r.Warn("Skipping " + n.SourcePath + ": target already exists: " + target)
		span.AddEvent(tracing.EventTargetOccupied, trace.WithAttributes(attribute.String(tracing.AttrNodeSource, n.SourcePath)))
		g.MarkLost(id)
		return nil
	case !p.stats.isFile(ctx, n.SourcePath):
		p.lose(span, r, id)
		return nil
	case n.Kind.RepresentsFolder():
		src, dst := g.CopySourcePath(id), g.TargetDirectory(id)
		files, err := fsutil.CopyDir(src, dst, p.opts.CopyExclude)
		if err != nil {
			return err
		}
		log.Debug(log.CatCopy, "Folder copied", "from", src, "to", dst, "files", len(files))
	default:
		if err := fsutil.CopyFile(n.SourcePath, target); err != nil {
			return fmt.Errorf("copying %s: %w", n.SourcePath, err)
		}
		log.Debug(log.CatCopy, "File copied", "from", n.SourcePath, "to", target)
	}
	g.MarkCopied(id)
	return nil
}

// unpack extracts a container archive into the target folder of the IP it
// stands in for.
func (p *Project) unpack(ctx context.Context, span trace.Span, r Reporter, id graph.NodeID) error {
	g := p.Graph
	n := g.Node(id)
	if !p.stats.isFile(ctx, n.SourcePath) {
		p.lose(span, r, id)
		return nil
	}

	actual, _ := n.Actual()
	dest := g.TargetDirectory(actual)
	res, err := extract.Extract(n.SourcePath, dest, p.opts.Extract)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		r.Warn(w)
	}
	span.AddEvent(tracing.EventArchiveExtracted, trace.WithAttributes(
		attribute.String(tracing.AttrNodeSource, n.SourcePath),
		attribute.Int("archive.written", len(res.Written)),
	))
	g.MarkCopied(id)
	return nil
}

func (p *Project) lose(span trace.Span, r Reporter, id graph.NodeID) {
	n := p.Graph.Node(id)
	p.Graph.MarkLost(id)
	r.Warn("Source not found: " + n.SourcePath)
	span.AddEvent(tracing.EventNodeLost, trace.WithAttributes(
		attribute.String(tracing.AttrNodeSource, n.SourcePath),
		attribute.String(tracing.AttrNodeKind, n.Kind.String()),
	))
}
