package vivado

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"

	"go.opentelemetry.io/otel"

	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/tracing"
)

var (
	filePathAttr    = regexp.MustCompile(`(<File\s+Path=")([^"]*)(")`)
	projectPathAttr = regexp.MustCompile(`(<Project\b[^>]*?\sPath=")([^"]*)(")`)
)

// Rewrite returns the descriptor with every mapped <File Path> pointing at
// the relocated artifact and <Project Path> pointing at the new descriptor.
// Everything else is preserved byte for byte.
func (p *Project) Rewrite() []byte {
	g := p.Graph
	rewritten := 0

	out := filePathAttr.ReplaceAllFunc(p.Raw, func(m []byte) []byte {
		sub := filePathAttr.FindSubmatch(m)
		id, ok := p.refs[html.UnescapeString(string(sub[2]))]
		if !ok || !g.Node(id).Included {
			return m
		}
		rewritten++
		return splice(sub[1], g.ToolRelativeFile(id), sub[3])
	})

	out = projectPathAttr.ReplaceAllFunc(out, func(m []byte) []byte {
		sub := projectPathAttr.FindSubmatch(m)
		return splice(sub[1], filepath.ToSlash(p.DescriptorTarget()), sub[3])
	})

	log.Debug(log.CatVivado, "Descriptor rewritten", "references", rewritten)
	return out
}

func splice(prefix []byte, value string, suffix []byte) []byte {
	var buf bytes.Buffer
	buf.Write(prefix)
	_ = xml.EscapeText(&buf, []byte(value))
	buf.Write(suffix)
	return buf.Bytes()
}

// WriteDescriptor writes the rewritten descriptor into the work directory
// and returns its path.
func (p *Project) WriteDescriptor(ctx context.Context) (path string, err error) {
	_, span := otel.Tracer(tracing.DefaultServiceName).Start(ctx, tracing.SpanRewrite)
	defer func() { tracing.EndSpan(span, err) }()

	path = p.DescriptorTarget()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	if err := os.WriteFile(path, p.Rewrite(), 0644); err != nil { //nolint:gosec // G306: project files are shared
		return "", fmt.Errorf("writing descriptor: %w", err)
	}
	return path, nil
}
