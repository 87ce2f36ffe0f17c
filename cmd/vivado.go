package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Seradorr/migrations/internal/config"
	"github.com/Seradorr/migrations/internal/migration"
	"github.com/Seradorr/migrations/internal/tracing"
	"github.com/Seradorr/migrations/internal/vivado"
)

var (
	vivadoProject string
	vivadoTarget  string
)

var vivadoCmd = &cobra.Command{
	Use:   "vivado",
	Short: "Relocate a Vivado project",
	Long: `Relocate a Vivado project into a new directory.

The target directory must not exist. Sources are copied into hdl/, sim/,
ip/, bd/, const/ and friends below the target, IP container archives are
unpacked, and the rewritten project file is written to work/.

When --project or --target is missing, the fixture file (fixture.path) is
consulted for canned inputs.

The exit code is the run's status code: 0 on success, 0xA1 for missing
inputs, 0xB1 when the project file is not found, 0xD1-0xD4 for descriptor
and directory failures, 0xE1 for unknown file set types and 1 for
unexpected failures.

Examples:
  migrations vivado --project old/proj.xpr --target new
  migrations vivado -p old/proj.xpr -t new --gitignore`,
	RunE: runVivado,
}

func init() {
	vivadoCmd.Flags().StringVarP(&vivadoProject, "project", "p", "", "Vivado project file (.xpr) or its directory")
	vivadoCmd.Flags().StringVarP(&vivadoTarget, "target", "t", "", "new project root, must not exist")
	vivadoCmd.Flags().Bool("gitignore", false, "write .gitignore and work/relocation.yaml")
	_ = viper.BindPFlag("gitignore", vivadoCmd.Flags().Lookup("gitignore"))
	rootCmd.AddCommand(vivadoCmd)
}

// vivadoOptions builds the tool options from the loaded configuration.
func vivadoOptions(c config.Config) (vivado.Options, error) {
	opts := vivado.DefaultOptions()
	re, err := c.Copy.CopyExclude()
	if err != nil {
		return opts, err
	}
	opts.CopyExclude = re
	opts.Extract = c.Extract.Policy()
	return opts, nil
}

func fixtureKey(c config.Config) string {
	if c.Fixture.Key != "" {
		return c.Fixture.Key
	}
	return vivado.FixtureKey
}

func runVivado(cmd *cobra.Command, _ []string) error {
	opts, err := vivadoOptions(cfg)
	if err != nil {
		return err
	}
	project, err := vivado.FindDescriptor(vivadoProject)
	if err != nil {
		return err
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(cmd.Context()) }()

	out := cmd.OutOrStdout()
	m := migration.New(vivado.NewTool(opts), migration.Options{
		AuxiliaryMetadata: cfg.Gitignore,
		Anchor:            cfg.AnchorToken,
		FixturePath:       cfg.Fixture.Path,
		FixtureKey:        fixtureKey(cfg),
		Sink:              func(line string) { _, _ = fmt.Fprint(out, line) },
		Tracer:            provider,
	})
	return m.Run(cmd.Context(), migration.Input{
		DescriptorPath: project,
		TargetDir:      vivadoTarget,
	})
}
