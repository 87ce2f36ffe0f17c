package fsutil

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proj.xpr"), "")
	writeFile(t, filepath.Join(root, "sub", "Other.XPR"), "")
	writeFile(t, filepath.Join(root, "sub", "notes.txt"), "")

	files, err := FindFilesByExtension(root, ".xpr")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "proj.xpr"),
		filepath.Join(root, "sub", "Other.XPR"),
	}, files)
}

func TestFindFilesByExtension_PanicsOnEmpty(t *testing.T) {
	require.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}

func TestCopyDir_ExcludesByName(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "core.xci"), "xci")
	writeFile(t, filepath.Join(src, "synth", "core.dcp"), "checkpoint")
	writeFile(t, filepath.Join(src, "hdl", "core.vhd"), "vhdl")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0750))

	dest := filepath.Join(t.TempDir(), "out")
	copied, err := CopyDir(src, dest, regexp.MustCompile(`\.dcp$`))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		filepath.Join(dest, "core.xci"),
		filepath.Join(dest, "hdl", "core.vhd"),
	}, copied)

	require.DirExists(t, filepath.Join(dest, "synth"))
	require.DirExists(t, filepath.Join(dest, "empty"))
	require.NoFileExists(t, filepath.Join(dest, "synth", "core.dcp"))

	data, err := os.ReadFile(filepath.Join(dest, "hdl", "core.vhd"))
	require.NoError(t, err)
	require.Equal(t, "vhdl", string(data))
}

func TestCopyDir_MissingSource(t *testing.T) {
	_, err := CopyDir(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
	require.Error(t, err)
}

func TestCopyFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.v")
	dst := filepath.Join(dir, "nested", "b.v")
	writeFile(t, src, "new")
	writeFile(t, dst, "old contents")

	require.NoError(t, CopyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
	require.True(t, Exists(dst))
	require.False(t, Exists(filepath.Join(dir, "missing")))
}
