package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/infra/fsproject"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/logger"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/projectfinder"
	"github.com/dhruv-ramu/FragmentFusion/internal/ui/tui"
)

// rootOpts are the persistent flags shared by every subcommand.
type rootOpts struct {
	project string
	debug   bool
	format  string
}

func (o *rootOpts) load() (*projectCtx, error) {
	return loadProject(o.project, o.debug)
}

// Execute runs the fragfusion command tree and exits 1 on error.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:          "fragfusion",
		Short:        "FragmentFusion project harness: samples, containers, cfDNA data and QC",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if opts.project == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				if _, ferr := projectfinder.NewFinder().FindRoot(wd); ferr != nil {
					// No project yet: logs stay discarded.
					return tui.Run(tui.Deps{
						Locator:     projectfinder.NewFinder(),
						Initializer: fsproject.NewInitializer(),
						Logger:      logger.L(),
						Debug:       opts.debug,
					})
				}
			}

			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()
			return tui.Run(p.dashboardDeps(opts.debug))
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.project, "project", "p", "", "Project root (optional; autodetected from fragfusion.yaml if omitted)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose logging to .fragfusion/logs/fragfusion.log")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "pretty", "Output format: pretty|json")

	cmd.AddCommand(
		initCmd(),
		samplesCmd(opts),
		validateCmd(opts),
		dockerCmd(opts),
		dataCmd(opts),
		qcCmd(opts),
		syncCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return cmd
}
