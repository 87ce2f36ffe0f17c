package migration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seradorr/migrations/internal/layout"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3*3600))
}

// fakeTool records its calls and runs the configured hooks.
type fakeTool struct {
	populate func(*Session) error
	aux      func(*Session) error
	calls    []string
}

func (f *fakeTool) PopulateAndRelocate(_ context.Context, s *Session) error {
	f.calls = append(f.calls, "populate")
	if f.populate != nil {
		return f.populate(s)
	}
	return nil
}

func (f *fakeTool) GenerateAuxiliaryMetadata(_ context.Context, s *Session) error {
	f.calls = append(f.calls, "aux")
	if f.aux != nil {
		return f.aux(s)
	}
	return nil
}

type sinkRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *sinkRecorder) sink(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func newDescriptor(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proj.xpr")
	require.NoError(t, os.WriteFile(path, []byte("<Project/>"), 0644))
	return path
}

func messages(m *Migrator) []string {
	var out []string
	for _, line := range m.Transcript() {
		_, msg, _ := strings.Cut(line, " ")
		out = append(out, msg)
	}
	return out
}

func TestRun_Success(t *testing.T) {
	tool := &fakeTool{populate: func(s *Session) error {
		s.Log("copying")
		s.Warn("Source not found: a.v")
		s.Warn("Skipping file due to MAX_PATH: b.coe")
		return nil
	}}
	rec := &sinkRecorder{}
	m := New(tool, Options{Sink: rec.sink, Now: fixedNow})
	target := filepath.Join(t.TempDir(), "out")

	err := m.Run(context.Background(), Input{DescriptorPath: newDescriptor(t), TargetDir: target})
	require.NoError(t, err)

	require.Equal(t, []string{"populate"}, tool.calls)
	require.Equal(t, []string{
		"copying",
		"Warning: Source not found: a.v",
		"Warning: Skipping file due to MAX_PATH: b.coe",
		"Done",
	}, messages(m))

	require.Len(t, rec.lines, 4)
	for _, line := range rec.lines {
		require.True(t, strings.HasPrefix(line, "2024-05-06T04:08:09Z "), line)
		require.True(t, strings.HasSuffix(line, "\n"))
	}

	for _, dir := range layout.New(target).AllDirectories() {
		require.DirExists(t, dir)
	}
}

func TestRun_AuxiliaryMetadataOptional(t *testing.T) {
	tool := &fakeTool{}
	m := New(tool, Options{AuxiliaryMetadata: true})
	err := m.Run(context.Background(), Input{
		DescriptorPath: newDescriptor(t),
		TargetDir:      filepath.Join(t.TempDir(), "out"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"populate", "aux"}, tool.calls)
}

func TestValidateInputs(t *testing.T) {
	existing := t.TempDir()
	descriptor := newDescriptor(t)

	tests := []struct {
		name     string
		in       Input
		code     Code
		sentinel error
		message  string
	}{
		{"missing descriptor", Input{TargetDir: "x"}, LackingInput, ErrMissingDescriptorRef, "Project file is not given"},
		{"blank target", Input{DescriptorPath: descriptor, TargetDir: "  "}, LackingInput, ErrMissingTargetRef, "Target project directory is not given or empty"},
		{"descriptor not found", Input{DescriptorPath: filepath.Join(existing, "no.xpr"), TargetDir: "x"}, DescriptorNotFound, ErrDescriptorNotFound, "ERROR - Project file is not found."},
		{"descriptor is a directory", Input{DescriptorPath: existing, TargetDir: "x"}, DescriptorNotFound, ErrDescriptorNotFound, "ERROR - Project file is not found."},
		{"target exists", Input{DescriptorPath: descriptor, TargetDir: existing}, InvalidProjectDirectory, ErrTargetExists, "ERROR - Target directory already exists."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &fakeTool{}
			m := New(tool, Options{})

			err := m.Run(context.Background(), tt.in)
			code, ok := CodeOf(err)
			require.True(t, ok)
			require.Equal(t, tt.code, code)
			require.ErrorIs(t, err, tt.sentinel)
			require.Equal(t, []string{tt.message}, messages(m))
			require.Empty(t, tool.calls)
		})
	}
}

func TestValidateInputs_ExistingTargetIsNotTouched(t *testing.T) {
	target := t.TempDir()
	before, err := os.ReadDir(target)
	require.NoError(t, err)

	m := New(&fakeTool{}, Options{})
	err = m.Run(context.Background(), Input{DescriptorPath: newDescriptor(t), TargetDir: target})
	code, _ := CodeOf(err)
	require.Equal(t, InvalidProjectDirectory, code)

	after, err := os.ReadDir(target)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestRun_StatusErrorShortCircuits(t *testing.T) {
	tool := &fakeTool{populate: func(s *Session) error {
		s.Warn("never flushed")
		return Errorf(UnknownArtifactKind, "file set type %q", "Weird")
	}}
	m := New(tool, Options{AuxiliaryMetadata: true})

	err := m.Run(context.Background(), Input{
		DescriptorPath: newDescriptor(t),
		TargetDir:      filepath.Join(t.TempDir(), "out"),
	})
	code, ok := CodeOf(err)
	require.True(t, ok)
	require.Equal(t, UnknownArtifactKind, code)
	require.Equal(t, []string{"populate"}, tool.calls)

	msgs := messages(m)
	require.Len(t, msgs, 1)
	require.True(t, strings.HasPrefix(msgs[0], "ERROR: UnknownArtifactKind"))
}

func TestRun_PlainErrorBecomesFault(t *testing.T) {
	cause := errors.New("disk on fire")
	tool := &fakeTool{aux: func(*Session) error { return cause }}
	m := New(tool, Options{AuxiliaryMetadata: true})

	err := m.Run(context.Background(), Input{
		DescriptorPath: newDescriptor(t),
		TargetDir:      filepath.Join(t.TempDir(), "out"),
	})
	var fault *FaultError
	require.ErrorAs(t, err, &fault)
	require.Equal(t, StateGenerateAuxiliaryMetadata, fault.State)
	require.ErrorIs(t, err, cause)

	_, ok := CodeOf(err)
	require.False(t, ok)
	require.Equal(t, 1, ExitCode(err))
}

func TestRun_PanicIsRecovered(t *testing.T) {
	tool := &fakeTool{populate: func(*Session) error { panic("index out of range") }}
	m := New(tool, Options{})

	var err error
	require.NotPanics(t, func() {
		err = m.Run(context.Background(), Input{
			DescriptorPath: newDescriptor(t),
			TargetDir:      filepath.Join(t.TempDir(), "out"),
		})
	})

	var fault *FaultError
	require.ErrorAs(t, err, &fault)
	require.Equal(t, "index out of range", fault.Panic)
	require.Equal(t, []string{"ERROR: index out of range"}, messages(m))
}

func TestRun_StageFailureMapsToCode(t *testing.T) {
	// A regular file in the target's parent path makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	m := New(&fakeTool{}, Options{})
	err := m.Run(context.Background(), Input{DescriptorPath: newDescriptor(t), TargetDir: filepath.Join(blocker, "out")})
	code, _ := CodeOf(err)
	require.Equal(t, InvalidProjectDirectory, code)
}

func TestRun_FixtureFillsMissingInputs(t *testing.T) {
	descriptor := newDescriptor(t)
	target := filepath.Join(t.TempDir(), "from-fixture")
	fixturePath := filepath.Join(t.TempDir(), "debug_inputs.json")
	data := `{"vivado":{"index":0,"inputs":[{"projectFileFA":` + quote(descriptor) + `,"targetDir":` + quote(target) + `}]}}`
	require.NoError(t, os.WriteFile(fixturePath, []byte(data), 0644))

	tool := &fakeTool{populate: func(s *Session) error {
		assert.Equal(t, descriptor, s.Input.DescriptorPath)
		assert.Equal(t, target, s.Layout.Root)
		return nil
	}}
	m := New(tool, Options{FixturePath: fixturePath, FixtureKey: "vivado"})

	require.NoError(t, m.Run(context.Background(), Input{}))
	require.DirExists(t, target)
}

func TestRun_FixtureIgnoredWhenInputsGiven(t *testing.T) {
	fixturePath := filepath.Join(t.TempDir(), "debug_inputs.json")
	require.NoError(t, os.WriteFile(fixturePath, []byte(`not json`), 0644))

	target := filepath.Join(t.TempDir(), "out")
	m := New(&fakeTool{}, Options{FixturePath: fixturePath, FixtureKey: "vivado"})
	require.NoError(t, m.Run(context.Background(), Input{DescriptorPath: newDescriptor(t), TargetDir: target}))
}

func TestRun_CustomAnchor(t *testing.T) {
	tool := &fakeTool{populate: func(s *Session) error {
		assert.Equal(t, "$ROOT/../hdl", s.Layout.ToolRelative(layout.KindRTL))
		return nil
	}}
	m := New(tool, Options{Anchor: "$ROOT"})
	require.NoError(t, m.Run(context.Background(), Input{
		DescriptorPath: newDescriptor(t),
		TargetDir:      filepath.Join(t.TempDir(), "out"),
	}))
}

func TestTranscript_ResetPerRun(t *testing.T) {
	m := New(&fakeTool{}, Options{})
	_ = m.Run(context.Background(), Input{})
	_ = m.Run(context.Background(), Input{})
	require.Len(t, m.Transcript(), 1)
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "InvalidWorkDirectory", InvalidWorkDirectory.String())
	require.Equal(t, "Code(0x42)", Code(0x42).String())
	require.Equal(t, 0xD3, ExitCode(&StatusError{Code: InvalidSourcesDirectory}))
	require.Equal(t, 0, ExitCode(nil))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

func TestStageTargetTree_WorkAndSourceDirectoryCodes(t *testing.T) {
	tests := []struct {
		name    string
		blocker string
		want    Code
	}{
		{"work directory", layout.WorkDirName, InvalidWorkDirectory},
		{"layout directory", "hdl", InvalidSourcesDirectory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(root, tt.blocker), nil, 0644))

			m := New(&fakeTool{}, Options{})
			s := &Session{m: m, Layout: layout.New(root)}
			code, ok := CodeOf(m.stageTargetTree(context.Background(), s))
			require.True(t, ok)
			require.Equal(t, tt.want, code)
		})
	}
}

func TestStageTargetTree_Idempotent(t *testing.T) {
	root := t.TempDir()
	m := New(&fakeTool{}, Options{})
	s := &Session{m: m, Layout: layout.New(root)}

	require.NoError(t, m.stageTargetTree(context.Background(), s))
	require.NoError(t, m.stageTargetTree(context.Background(), s))
}
