package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	Info(CatGraph, "node created", "kind", "rtl", "orphan")

	line := buf.String()
	require.Contains(t, line, "[INFO] [graph] node created kind=rtl orphan=<missing>")
	require.True(t, line[len(line)-1] == '\n')
}

func TestLog_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelWarn)
	t.Cleanup(Reset)

	Debug(CatCopy, "dropped")
	Info(CatCopy, "dropped")
	Warn(CatCopy, "kept")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "[WARN] [copy] kept")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	ErrorErr(CatExtract, "open failed", errors.New("boom"), "path", "a.xcix")
	ErrorErr(CatExtract, "nil error", nil)

	require.Contains(t, buf.String(), "open failed path=a.xcix error=boom")
	require.Contains(t, buf.String(), "nil error error=<nil>")
}

func TestLog_DisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	SetEnabled(false)
	Error(CatMigrate, "hidden")
	SetEnabled(true)
	Error(CatMigrate, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	Reset()
	require.NotPanics(t, func() { Info(CatConfig, "nothing") })
}
