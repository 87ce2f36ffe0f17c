package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Seradorr/migrations/internal/fixture"
	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/report"
	"github.com/Seradorr/migrations/internal/vivado"
	"github.com/Seradorr/migrations/internal/watcher"
)

var (
	planProject string
	planTarget  string
	planWatch   bool
	planNoDiff  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what relocating a Vivado project would do",
	Long: `Show where every artifact of a Vivado project would be relocated to,
the warnings the relocation would raise and the changes to the project
file. Nothing is written. When the target already holds the manifest of an
earlier relocation, the artifacts that moved since are listed as well.

With --watch the plan is recomputed every time the project file is saved,
until interrupted.

Examples:
  migrations plan --project old/proj.xpr --target new
  migrations plan -p old/proj.xpr -t new --watch`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planProject, "project", "p", "", "Vivado project file (.xpr) or its directory")
	planCmd.Flags().StringVarP(&planTarget, "target", "t", "", "new project root")
	planCmd.Flags().BoolVarP(&planWatch, "watch", "w", false, "recompute the plan when the project file changes")
	planCmd.Flags().BoolVar(&planNoDiff, "no-diff", false, "omit the project file diff")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	opts, err := vivadoOptions(cfg)
	if err != nil {
		return err
	}

	project, target := planProject, planTarget
	if (project == "" || target == "") && fixture.Available(cfg.Fixture.Path) {
		if fx, err := fixture.Load(cfg.Fixture.Path, fixtureKey(cfg)); err == nil {
			project, target = fx.Apply(project, target)
		}
	}
	if project == "" || target == "" {
		return fmt.Errorf("both --project and --target are required")
	}
	project, err = vivado.FindDescriptor(project)
	if err != nil {
		return err
	}

	l := layout.New(target)
	if cfg.AnchorToken != "" {
		l.Anchor = cfg.AnchorToken
	}
	out := cmd.OutOrStdout()
	render := func(ctx context.Context) error {
		p, err := vivado.Discover(ctx, project, l, opts)
		if err != nil {
			return err
		}
		rep := p.Plan()
		prev, ok, err := vivado.PreviousManifest(l)
		if err != nil {
			return err
		}
		if ok {
			rep.CompareWith(prev)
		}
		_, err = fmt.Fprint(out, report.Plan(rep, report.Options{
			Width: terminalWidth(out),
			Diff:  !planNoDiff,
		}))
		return err
	}

	ctx := cmd.Context()
	if !planWatch {
		return render(ctx)
	}
	if err := render(ctx); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return watchPlan(ctx, cmd, project, render)
}

func watchPlan(ctx context.Context, cmd *cobra.Command, project string, render func(context.Context) error) error {
	abs, err := filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", project, err)
	}
	w, err := watcher.New(watcher.DefaultConfig(abs))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), report.MutedStyle.Render("Watching "+abs+" (Ctrl+C to stop)"))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Debug(log.CatWatch, "Recomputing plan", "path", abs)
			if err := render(ctx); err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
		}
	}
}

// terminalWidth returns the width of out when it is a terminal.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return report.DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
	if err != nil || width <= 0 {
		return report.DefaultWidth
	}
	return width
}
