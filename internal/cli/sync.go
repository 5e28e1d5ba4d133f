package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/usecase"
)

func syncCmd(opts *rootOpts) *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "sync",
		Short: "Mirror results, metadata and the sample list to S3",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			uc, store, err := p.mirror(ctx)
			if err != nil {
				return err
			}
			report, serr := uc.Execute(ctx, p.syncPaths(), dryRun)
			if err := emit(cmd.OutOrStdout(), opts.format, report, func(w io.Writer) {
				printSync(w, report, store.URI)
			}); err != nil {
				return err
			}
			return serr
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be uploaded without uploading")
	return c
}

func printSync(w io.Writer, r usecase.SyncReport, uri func(string) string) {
	verb := "uploaded"
	if r.DryRun {
		verb = "would upload"
	}
	for _, f := range r.Uploaded {
		fmt.Fprintf(w, "%s %s -> %s\n", mark(true), f.Path, uri(f.Path))
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "%s %s: %s\n", mark(false), f.Path, f.Error)
	}
	fmt.Fprintf(w, "\n%s %d, unchanged %d, failed %d\n", verb, len(r.Uploaded), len(r.Skipped), len(r.Failed))
}
