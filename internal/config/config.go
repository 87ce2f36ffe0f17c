// Package config provides configuration types and defaults for migrations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Seradorr/migrations/internal/extract"
	"github.com/Seradorr/migrations/internal/fixture"
	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/tracing"
)

// DefaultConfigPath is where a default config is created when none is found.
const DefaultConfigPath = ".migrations/config.yaml"

// Config holds all configuration options for migrations.
type Config struct {
	AnchorToken string         `mapstructure:"anchor_token"`
	Gitignore   bool           `mapstructure:"gitignore"` // write .gitignore and the manifest after relocating
	Copy        CopyConfig     `mapstructure:"copy"`
	Extract     ExtractConfig  `mapstructure:"extract"`
	Fixture     FixtureConfig  `mapstructure:"fixture"`
	Log         LogConfig      `mapstructure:"log"`
	Tracing     tracing.Config `mapstructure:"tracing"`
}

// CopyConfig controls container folder copies.
type CopyConfig struct {
	// ExcludePattern is a regular expression matched against file names
	// left out when an IP or block design folder is copied.
	ExcludePattern string `mapstructure:"exclude_pattern"`
}

// ExtractConfig controls what is unpacked from container archives.
type ExtractConfig struct {
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	DeniedNames       []string `mapstructure:"denied_names"`
	ExcludedDirs      []string `mapstructure:"excluded_dirs"`
	MaxPathLength     int      `mapstructure:"max_path_length"` // 0 disables the check
}

// FixtureConfig locates canned inputs for debugging runs.
type FixtureConfig struct {
	Path string `mapstructure:"path"`
	Key  string `mapstructure:"key"`
}

// LogConfig holds debug log options.
type LogConfig struct {
	File string `mapstructure:"file"`
}

// Policy returns the extraction policy described by e.
func (e ExtractConfig) Policy() extract.Policy {
	return extract.Policy{
		AllowedExtensions: normalizeExtensions(e.AllowedExtensions),
		DeniedNames:       e.DeniedNames,
		ExcludedDirs:      e.ExcludedDirs,
		MaxPathLength:     e.MaxPathLength,
	}
}

// normalizeExtensions lower-cases and dot-prefixes each extension so "XCI"
// and ".xci" configure the same thing.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// CopyExclude compiles the copy exclusion pattern. An empty pattern
// excludes nothing and yields nil.
func (c CopyConfig) CopyExclude() (*regexp.Regexp, error) {
	if c.ExcludePattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.ExcludePattern)
	if err != nil {
		return nil, fmt.Errorf("copy.exclude_pattern: %w", err)
	}
	return re, nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	policy := extract.DefaultPolicy()
	return Config{
		AnchorToken: layout.DefaultAnchor,
		Gitignore:   false,
		Copy: CopyConfig{
			ExcludePattern: `\.dcp$`,
		},
		Extract: ExtractConfig{
			AllowedExtensions: policy.AllowedExtensions,
			DeniedNames:       policy.DeniedNames,
			ExcludedDirs:      policy.ExcludedDirs,
			MaxPathLength:     policy.MaxPathLength,
		},
		Fixture: FixtureConfig{
			Path: fixture.DefaultPath,
			Key:  "vivado",
		},
		Log: LogConfig{
			File: "debug.log",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Validate checks the whole configuration, returning the first error.
func Validate(c Config) error {
	if err := ValidateAnchor(c.AnchorToken); err != nil {
		return err
	}
	if _, err := c.Copy.CopyExclude(); err != nil {
		return err
	}
	if err := ValidateExtract(c.Extract); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateAnchor checks the token rewritten references start with.
// Returns nil for an empty token (the default is used).
func ValidateAnchor(anchor string) error {
	if anchor == "" {
		return nil
	}
	if !strings.HasPrefix(anchor, "$") {
		return fmt.Errorf("anchor_token must start with \"$\", got %q", anchor)
	}
	if strings.ContainsAny(anchor, `/\ `) {
		return fmt.Errorf("anchor_token must be a single variable name, got %q", anchor)
	}
	return nil
}

// ValidateExtract checks archive extraction configuration for errors.
func ValidateExtract(e ExtractConfig) error {
	if e.MaxPathLength < 0 {
		return fmt.Errorf("extract.max_path_length must not be negative, got %d", e.MaxPathLength)
	}
	for i, dir := range e.ExcludedDirs {
		if strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("extract.excluded_dirs[%d] must be a single directory name, got %q", i, dir)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing tracing.Config) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Migrations Configuration

# Variable rewritten references start with. Vivado resolves $PPRDIR to the
# directory holding the project file.
anchor_token: $PPRDIR

# Write .gitignore and work/relocation.yaml after relocating
gitignore: false

# Container folder copies (IP cores, block designs)
copy:
  exclude_pattern: '\.dcp$'   # file names left out of the copy

# Container archive (.xcix) extraction
extract:
  allowed_extensions: [.xci, .coe, .mem]
  denied_names: [cc.xml]
  excluded_dirs: [sim, synth, sim_netlist]
  max_path_length: 260        # target paths this long are skipped, 0 disables

# Canned inputs used when --project or --target is missing
fixture:
  path: debug_inputs.json
  key: vivado

# Debug log written with --debug or MIGRATIONS_DEBUG=1
log:
  file: debug.log

# Distributed tracing of relocation runs
# tracing:
#   enabled: false
#   exporter: file             # "none", "file", "stdout", or "otlp"
#   file_path: traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
