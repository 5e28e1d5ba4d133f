package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

func validateCmd(opts *rootOpts) *cobra.Command {
	var mkdirs []string

	c := &cobra.Command{
		Use:   "validate [path...]",
		Short: "Check that workflow inputs exist, are files and are not empty",
		Long: "Without arguments every sample named in the sample list is checked as\n" +
			"<raw_dir>/<sample><suffix>. Every path is checked; the command fails when any did.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			uc := p.validator()

			dirs := make([]string, 0, len(mkdirs))
			for _, d := range mkdirs {
				dirs = append(dirs, p.abs(d))
			}
			if err := uc.EnsureDirs(dirs); err != nil {
				return err
			}

			var report domain.InputReport
			if len(args) > 0 {
				paths := make([]string, 0, len(args))
				for _, a := range args {
					paths = append(paths, p.abs(a))
				}
				report = uc.ValidateAll(paths)
			} else {
				report, err = uc.ValidateSamples(
					p.abs(p.cfg.Paths.SampleList),
					p.abs(p.cfg.Paths.RawDir),
					p.cfg.Samples.Suffix,
				)
				if err != nil {
					return err
				}
			}

			if err := emit(cmd.OutOrStdout(), opts.format, report, func(w io.Writer) {
				printInputReport(w, report)
			}); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%d of %d input(s) failed validation", len(report.Failures), report.Checked)
			}
			return nil
		},
	}

	c.Flags().StringSliceVar(&mkdirs, "mkdir", nil, "Create these directories before checking (repeatable)")
	return c
}

func printInputReport(w io.Writer, r domain.InputReport) {
	for _, f := range r.Failures {
		fmt.Fprintf(w, "%s %s: %s\n", mark(false), f.Path, f.Reason)
	}
	fmt.Fprintf(w, "%s %d checked, %d failed\n", status(r.OK()), r.Checked, len(r.Failures))
}
