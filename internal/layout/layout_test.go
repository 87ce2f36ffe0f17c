package layout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindRTL, "hdl"},
		{KindSimulation, "sim"},
		{KindIP, "ip"},
		{KindIPArchive, "ip"},
		{KindBlockDesign, "bd"},
		{KindConstraint, "const"},
		{KindCoefficient, "other/coe"},
		{KindOutput, "out"},
		{KindElf, "elf"},
		{KindHardwareExport, "hw_export"},
		{KindSecondaryProject, "vitis"},
		{KindProject, "other"},
		{KindOther, "other"},
		{Kind(99), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			require.Equal(t, tt.want, Segment(tt.kind))
		})
	}
}

func TestLayout_Directories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	l := New(root)

	require.Equal(t, filepath.Join(root, "work"), l.WorkDir())
	require.Equal(t, filepath.Join(root, "other", "coe"), l.AbsoluteDir(KindCoefficient))
	require.Equal(t, "$PPRDIR/../hdl", l.ToolRelative(KindRTL))
	require.Equal(t, "$PPRDIR/../other/coe", l.ToolRelative(KindCoefficient))
}

func TestLayout_ToolRelative_CustomAnchor(t *testing.T) {
	l := Layout{Root: "/x", Anchor: "$ORIGIN/"}
	require.Equal(t, "$ORIGIN/../ip", l.ToolRelative(KindIP))

	l.Anchor = ""
	require.Equal(t, "$PPRDIR/../ip", l.ToolRelative(KindIP))
}

func TestLayout_AllDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	dirs := New(root).AllDirectories()

	require.Equal(t, root, dirs[0])
	require.Equal(t, filepath.Join(root, "work"), dirs[1])
	require.Len(t, dirs, 13)

	seen := map[string]bool{}
	for _, d := range dirs {
		require.False(t, seen[d], "duplicate directory %s", d)
		seen[d] = true
	}

	// parents are created before their children
	other := indexOf(dirs, filepath.Join(root, "other"))
	coe := indexOf(dirs, filepath.Join(root, "other", "coe"))
	require.Less(t, other, coe)
}

func TestKind_RepresentsFolder(t *testing.T) {
	require.True(t, KindProject.RepresentsFolder())
	require.True(t, KindIP.RepresentsFolder())
	require.True(t, KindBlockDesign.RepresentsFolder())
	require.False(t, KindIPArchive.RepresentsFolder())
	require.False(t, KindRTL.RepresentsFolder())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" IP-Archive ")
	require.NoError(t, err)
	require.Equal(t, KindIPArchive, k)

	_, err = ParseKind("bogus")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestCheckKind(t *testing.T) {
	require.NoError(t, CheckKind(KindOther))
	require.ErrorIs(t, CheckKind(Kind(-1)), ErrUnknownKind)
	require.ErrorIs(t, CheckKind(KindOther+1), ErrUnknownKind)
}

func TestKind_TextCodec(t *testing.T) {
	for k := KindProject; k <= KindOther; k++ {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, k, back)
	}

	_, err := Kind(42).MarshalText()
	require.ErrorIs(t, err, ErrUnknownKind)

	var k Kind
	require.ErrorIs(t, k.UnmarshalText([]byte("netlist")), ErrUnknownKind)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
