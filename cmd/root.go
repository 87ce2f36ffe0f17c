package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Seradorr/migrations/internal/config"
	"github.com/Seradorr/migrations/internal/log"
)

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	cfg        config.Config
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "migrations",
	Short: "Relocate EDA projects into a normalized directory layout",
	Long: `Relocate an EDA project (currently Vivado .xpr projects) into a fresh,
normalized directory tree. Every referenced source is copied or unpacked
into a per-kind directory, name conflicts are resolved with numeric
suffixes, and the project file is rewritten to point at the new locations.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .migrations/config.yaml, then ~/.config/migrations/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (see log.file)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("anchor_token", defaults.AnchorToken)
	viper.SetDefault("gitignore", defaults.Gitignore)
	viper.SetDefault("copy.exclude_pattern", defaults.Copy.ExcludePattern)
	viper.SetDefault("extract.allowed_extensions", defaults.Extract.AllowedExtensions)
	viper.SetDefault("extract.denied_names", defaults.Extract.DeniedNames)
	viper.SetDefault("extract.excluded_dirs", defaults.Extract.ExcludedDirs)
	viper.SetDefault("extract.max_path_length", defaults.Extract.MaxPathLength)
	viper.SetDefault("fixture.path", defaults.Fixture.Path)
	viper.SetDefault("fixture.key", defaults.Fixture.Key)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	viper.SetEnvPrefix("MIGRATIONS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .migrations/config.yaml (current directory)
		// 2. ~/.config/migrations/config.yaml (user config)
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			viper.SetConfigFile(config.DefaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "migrations"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file is fine; defaults apply. Run "migrations config
	// init" to create one.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setup starts the debug log and validates the loaded configuration.
func setup(_ *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("MIGRATIONS_DEBUG") != "" {
		cleanup, err := log.Init(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "Configuration loaded", "file", viper.ConfigFileUsed(), "version", version)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
