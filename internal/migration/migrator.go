// Package migration runs a relocation as a fixed sequence of states:
//
//	ValidateInputs → StageTargetTree → PopulateAndRelocate →
//	GenerateAuxiliaryMetadata (optional) → FlushDiagnostics → Done
//
// Each state is a fatal exit point. Validation happens before anything is
// written; once staging starts, nothing created is rolled back on failure.
// The tool-specific work is delegated to a Tool.
//
// Every message of a run is timestamped in UTC, handed to the configured
// Sink and kept in an in-memory transcript.
//
// Run is synchronous and a Migrator serves one run at a time. Callers that
// need a responsive UI run it on their own goroutine and marshal Sink
// callbacks onto their UI thread. The check that the target does not exist
// and the later MkdirAll are not atomic; two runs against the same target
// race.
package migration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Seradorr/migrations/internal/fixture"
	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/tracing"
)

// State is a step of a run.
type State int

const (
	StateValidateInputs State = iota
	StateStageTargetTree
	StatePopulateAndRelocate
	StateGenerateAuxiliaryMetadata
	StateFlushDiagnostics
	StateDone
)

func (s State) String() string {
	switch s {
	case StateValidateInputs:
		return "ValidateInputs"
	case StateStageTargetTree:
		return "StageTargetTree"
	case StatePopulateAndRelocate:
		return "PopulateAndRelocate"
	case StateGenerateAuxiliaryMetadata:
		return "GenerateAuxiliaryMetadata"
	case StateFlushDiagnostics:
		return "FlushDiagnostics"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Input names what to relocate and where to.
type Input struct {
	// DescriptorPath is the project descriptor file.
	DescriptorPath string
	// TargetDir is the new project root. It must not exist yet.
	TargetDir string
}

// Options tune a Migrator.
type Options struct {
	// AuxiliaryMetadata enables the GenerateAuxiliaryMetadata state.
	AuxiliaryMetadata bool
	// Anchor overrides the tool variable references are rewritten against.
	Anchor string
	// FixturePath and FixtureKey select canned inputs used when Run is
	// called with a missing descriptor or target. Empty FixturePath
	// disables the lookup.
	FixturePath string
	FixtureKey  string

	Sink   Sink
	Tracer *tracing.Provider
	// Now defaults to time.Now.
	Now func() time.Time
}

// Tool performs the tool-specific part of a run.
type Tool interface {
	// PopulateAndRelocate discovers the artifacts of the descriptor, copies
	// them into the staged tree and writes the rewritten descriptor.
	PopulateAndRelocate(ctx context.Context, s *Session) error
	// GenerateAuxiliaryMetadata writes files that are not part of the
	// project itself, such as a .gitignore.
	GenerateAuxiliaryMetadata(ctx context.Context, s *Session) error
}

// Session is the state a Tool sees during a run.
type Session struct {
	Input  Input
	Layout layout.Layout

	m        *Migrator
	warnings []string
}

// Log emits msg to the run transcript immediately.
func (s *Session) Log(msg string) {
	s.m.transcript.write(msg)
}

// Logf is Log with formatting.
func (s *Session) Logf(format string, args ...any) {
	s.Log(fmt.Sprintf(format, args...))
}

// Warn records a warning, emitted with a "Warning: " prefix once the tool
// steps have finished successfully.
func (s *Session) Warn(msg string) {
	log.Warn(log.CatMigrate, msg)
	s.warnings = append(s.warnings, msg)
}

// Warnings returns the warnings recorded so far, in order.
func (s *Session) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// Migrator drives runs for one Tool.
type Migrator struct {
	tool       Tool
	opts       Options
	transcript transcript
}

// New creates a Migrator for tool.
func New(tool Tool, opts Options) *Migrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Migrator{
		tool:       tool,
		opts:       opts,
		transcript: transcript{sink: opts.Sink, now: now},
	}
}

// Transcript returns the lines of the current or last run, without the
// trailing newline. Safe to call while a run is in progress.
func (m *Migrator) Transcript() []string {
	return m.transcript.snapshot()
}

// Run relocates in.DescriptorPath into in.TargetDir. It returns nil on
// success, a *StatusError for taxonomy failures and a *FaultError when the
// tool fails unexpectedly. The context is only used for tracing.
func (m *Migrator) Run(ctx context.Context, in Input) (err error) {
	m.transcript.reset()
	tracer := m.opts.Tracer.Tracer()

	ctx, runSpan := tracer.Start(ctx, tracing.SpanRun)
	defer func() {
		code, _ := CodeOf(err)
		runSpan.SetAttributes(attribute.Int(tracing.AttrCode, int(code)))
		tracing.EndSpan(runSpan, err)
	}()

	in = m.applyFixture(in)
	runSpan.SetAttributes(
		attribute.String(tracing.AttrDescriptor, in.DescriptorPath),
		attribute.String(tracing.AttrTarget, in.TargetDir),
	)

	s := &Session{Input: in, m: m, Layout: layout.New(in.TargetDir)}
	if m.opts.Anchor != "" {
		s.Layout.Anchor = m.opts.Anchor
	}

	steps := []struct {
		state State
		run   func(context.Context, *Session) error
	}{
		{StateValidateInputs, m.validateInputs},
		{StateStageTargetTree, m.stageTargetTree},
		{StatePopulateAndRelocate, m.populateAndRelocate},
		{StateGenerateAuxiliaryMetadata, m.generateAuxiliaryMetadata},
		{StateFlushDiagnostics, m.flushDiagnostics},
	}
	for _, step := range steps {
		if err := m.runState(ctx, tracer, step.state, s, step.run); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) runState(ctx context.Context, tracer trace.Tracer, state State, s *Session, fn func(context.Context, *Session) error) (err error) {
	ctx, span := tracer.Start(ctx, tracing.SpanStatePrefix+state.String(),
		trace.WithAttributes(attribute.String(tracing.AttrState, state.String())))
	defer func() { tracing.EndSpan(span, err) }()

	log.Debug(log.CatMigrate, "Entering state", "state", state)
	err = fn(ctx, s)
	if err != nil {
		log.ErrorErr(log.CatMigrate, "State failed", err, "state", state)
	}
	return err
}

func (m *Migrator) applyFixture(in Input) Input {
	if in.DescriptorPath != "" && in.TargetDir != "" {
		return in
	}
	if m.opts.FixturePath == "" || !fixture.Available(m.opts.FixturePath) {
		return in
	}
	fx, err := fixture.Load(m.opts.FixturePath, m.opts.FixtureKey)
	if err != nil {
		log.ErrorErr(log.CatConfig, "Fixture ignored", err, "path", m.opts.FixturePath)
		return in
	}
	in.DescriptorPath, in.TargetDir = fx.Apply(in.DescriptorPath, in.TargetDir)
	log.Info(log.CatConfig, "Inputs filled from fixture", "descriptor", in.DescriptorPath, "target", in.TargetDir)
	return in
}

// validateInputs only reads the filesystem.
func (m *Migrator) validateInputs(_ context.Context, s *Session) error {
	if strings.TrimSpace(s.Input.DescriptorPath) == "" {
		s.Log("Project file is not given")
		return &StatusError{Code: LackingInput, Err: ErrMissingDescriptorRef}
	}
	if strings.TrimSpace(s.Input.TargetDir) == "" {
		s.Log("Target project directory is not given or empty")
		return &StatusError{Code: LackingInput, Err: ErrMissingTargetRef}
	}

	info, err := os.Stat(s.Input.DescriptorPath)
	if err != nil || info.IsDir() {
		s.Log("ERROR - Project file is not found.")
		return Errorf(DescriptorNotFound, "%w: %s", ErrDescriptorNotFound, s.Input.DescriptorPath)
	}
	if _, err := os.Stat(s.Input.TargetDir); err == nil {
		s.Log("ERROR - Target directory already exists.")
		return Errorf(InvalidProjectDirectory, "%w: %s", ErrTargetExists, s.Input.TargetDir)
	}
	return nil
}

func (m *Migrator) stageTargetTree(_ context.Context, s *Session) error {
	l := s.Layout
	if err := os.MkdirAll(l.Root, 0750); err != nil {
		s.Logf("ERROR - Cannot create target directory: %v", err)
		return Errorf(InvalidProjectDirectory, "creating target root: %w", err)
	}
	for _, dir := range l.AllDirectories() {
		if err := os.MkdirAll(dir, 0750); err != nil {
			code := InvalidSourcesDirectory
			if dir == l.WorkDir() {
				code = InvalidWorkDirectory
			}
			s.Logf("ERROR - Cannot create directory %s: %v", dir, err)
			return Errorf(code, "creating %s: %w", dir, err)
		}
	}
	log.Debug(log.CatMigrate, "Target tree staged", "root", l.Root, "dirs", len(l.AllDirectories()))
	return nil
}

func (m *Migrator) populateAndRelocate(ctx context.Context, s *Session) error {
	return m.callTool(ctx, s, StatePopulateAndRelocate, m.tool.PopulateAndRelocate)
}

func (m *Migrator) generateAuxiliaryMetadata(ctx context.Context, s *Session) error {
	if !m.opts.AuxiliaryMetadata {
		return nil
	}
	return m.callTool(ctx, s, StateGenerateAuxiliaryMetadata, m.tool.GenerateAuxiliaryMetadata)
}

// callTool turns anything but a *StatusError into a *FaultError, including
// panics, and logs the failure to the transcript verbatim.
func (m *Migrator) callTool(ctx context.Context, s *Session, state State, fn func(context.Context, *Session) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Logf("ERROR: %v", r)
			err = &FaultError{State: state, Panic: r}
		}
	}()

	err = fn(ctx, s)
	if err == nil {
		return nil
	}
	s.Logf("ERROR: %v", err)
	if _, ok := CodeOf(err); ok {
		return err
	}
	return &FaultError{State: state, Err: err}
}

func (m *Migrator) flushDiagnostics(ctx context.Context, s *Session) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(tracing.AttrWarnings, len(s.warnings)))
	for _, w := range s.warnings {
		s.Log("Warning: " + w)
	}
	s.Log("Done")
	return nil
}
