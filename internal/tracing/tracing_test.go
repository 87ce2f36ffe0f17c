package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "traces.jsonl", cfg.FilePath)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, DefaultServiceName, cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "noop")
	require.NotPanics(t, func() { EndSpan(span, errors.New("ignored")) })
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNilProvider_IsUsable(t *testing.T) {
	var p *Provider
	require.False(t, p.Enabled())
	require.NotNil(t, p.Tracer())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "carrier-pigeon"})
	require.ErrorContains(t, err, "unsupported exporter type")
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.ErrorContains(t, err, "file_path required")
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "run.jsonl")
	provider, err := NewProvider(Config{Enabled: true, Exporter: "file", FilePath: path})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, root := provider.Tracer().Start(context.Background(), SpanRun)
	_, child := provider.Tracer().Start(ctx, SpanStatePrefix+"ValidateInputs")
	EndSpan(child, errors.New("Project file is not given"))
	EndSpan(root, nil)
	require.NoError(t, provider.Shutdown(context.Background()))

	records := readRecords(t, path)
	require.Len(t, records, 2)

	require.Equal(t, "migration.ValidateInputs", records[0].Name)
	require.Equal(t, "ERROR", records[0].Status)
	require.Equal(t, "Project file is not given", records[0].Attributes[AttrErrorMessage])
	require.Equal(t, records[1].SpanID, records[0].ParentID)

	require.Equal(t, SpanRun, records[1].Name)
	require.Equal(t, "OK", records[1].Status)
	require.Empty(t, records[1].ParentID)
}

func TestFileExporter_AppendsAndRecordsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"earlier"}`+"\n"), 0644))

	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stub := tracetest.SpanStub{
		Name:      SpanRelocate,
		StartTime: start,
		EndTime:   start.Add(1500 * time.Microsecond),
		Status:    sdktrace.Status{Code: codes.Ok},
		Attributes: []attribute.KeyValue{
			attribute.Int(AttrNodeCount, 3),
		},
		Events: []sdktrace.Event{{
			Name:       EventNodeLost,
			Time:       start,
			Attributes: []attribute.KeyValue{attribute.String(AttrNodeSource, "/p/top.v")},
		}},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, path)
	require.Len(t, records, 2)
	require.Equal(t, "earlier", records[0].Name)

	rec := records[1]
	require.Equal(t, SpanRelocate, rec.Name)
	require.Equal(t, "2024-01-02T03:04:05Z", rec.Start)
	require.InDelta(t, 1.5, rec.DurationMs, 0.001)
	require.Equal(t, float64(3), rec.Attributes[AttrNodeCount])
	require.Len(t, rec.Events, 1)
	require.Equal(t, "/p/top.v", rec.Events[0].Attributes[AttrNodeSource])
}

func TestFileExporter_ExportAfterShutdownFails(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}
