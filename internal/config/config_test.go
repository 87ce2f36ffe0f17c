package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/Seradorr/migrations/internal/extract"
	"github.com/Seradorr/migrations/internal/tracing"
)

func TestDefaults_Valid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestDefaults_MatchExtractPolicy(t *testing.T) {
	require.Equal(t, extract.DefaultPolicy(), Defaults().Extract.Policy())
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var loaded Config
	require.NoError(t, v.Unmarshal(&loaded))

	want := Defaults()
	// tracing is commented out in the template
	want.Tracing = tracing.Config{}
	require.Equal(t, want, loaded)
}

func TestWriteDefaultConfig_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".migrations", "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestValidateAnchor(t *testing.T) {
	tests := []struct {
		anchor  string
		wantErr string
	}{
		{"", ""},
		{"$PPRDIR", ""},
		{"$ROOT", ""},
		{"PPRDIR", "must start with"},
		{"$PPRDIR/..", "single variable name"},
		{"$A B", "single variable name"},
	}
	for _, tt := range tests {
		t.Run(tt.anchor, func(t *testing.T) {
			err := ValidateAnchor(tt.anchor)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateExtract(t *testing.T) {
	require.NoError(t, ValidateExtract(ExtractConfig{}))
	require.ErrorContains(t, ValidateExtract(ExtractConfig{MaxPathLength: -1}), "max_path_length")
	require.ErrorContains(t, ValidateExtract(ExtractConfig{ExcludedDirs: []string{"sim", "a/b"}}), "excluded_dirs[1]")
}

func TestValidate_CopyPattern(t *testing.T) {
	cfg := Defaults()
	cfg.Copy.ExcludePattern = "(["
	require.ErrorContains(t, Validate(cfg), "copy.exclude_pattern")

	cfg.Copy.ExcludePattern = ""
	re, err := cfg.Copy.CopyExclude()
	require.NoError(t, err)
	require.Nil(t, re)
}

func TestCopyExclude_Default(t *testing.T) {
	re, err := Defaults().Copy.CopyExclude()
	require.NoError(t, err)
	require.True(t, re.MatchString("core.dcp"))
	require.False(t, re.MatchString("core.xci"))
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{"empty", tracing.Config{}, ""},
		{"defaults", tracing.DefaultConfig(), ""},
		{"bad rate", tracing.Config{SampleRate: 1.5}, "sample_rate"},
		{"bad exporter", tracing.Config{Exporter: "kafka"}, "tracing.exporter"},
		{"file without path", tracing.Config{Enabled: true, Exporter: "file"}, "file_path"},
		{"otlp without endpoint", tracing.Config{Enabled: true, Exporter: "otlp"}, "otlp_endpoint"},
		{"disabled file without path", tracing.Config{Exporter: "file"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExtractPolicy_NormalizesExtensions(t *testing.T) {
	p := ExtractConfig{AllowedExtensions: []string{"XCI", " .Coe ", ""}}.Policy()
	require.Equal(t, []string{".xci", ".coe"}, p.AllowedExtensions)
}
