package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

func qcCmd(opts *rootOpts) *cobra.Command {
	c := &cobra.Command{
		Use:   "qc",
		Short: "Evaluate QC gates over JSON reports",
	}

	var name string
	check := &cobra.Command{
		Use:   "check",
		Short: "Run the configured QC checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			if len(p.cfg.QC.Checks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styleFaint.Render("(no qc.checks configured)"))
				return nil
			}

			report, err := p.qc().Execute(cmd.Context(), name)
			if err != nil {
				return err
			}
			if err := emit(cmd.OutOrStdout(), opts.format, report, func(w io.Writer) {
				printQCReport(w, report)
			}); err != nil {
				return err
			}
			if n := report.FailedChecks(); n > 0 {
				return fmt.Errorf("%d of %d qc check(s) failed", n, len(report.Checks))
			}
			return nil
		},
	}
	check.Flags().StringVar(&name, "name", "", "Only run the check with this name")

	c.AddCommand(check)
	return c
}

func printQCReport(w io.Writer, r domain.QCReport) {
	for _, c := range r.Checks {
		fmt.Fprintf(w, "[%s] %s\n", status(!c.Failed()), styleTitle.Render(c.Name))
		if c.Error != "" {
			fmt.Fprintf(w, "  %s %s\n", mark(false), c.Error)
		}
		for _, f := range c.Files {
			fmt.Fprintf(w, "  %s\n", f.File)
			if f.Error != "" {
				fmt.Fprintf(w, "    %s %s\n", mark(false), f.Error)
			}
			for _, a := range f.Assertions {
				fmt.Fprintf(w, "    %s %s", mark(a.Passed), a.Name)
				if !a.Passed && a.Message != "" {
					fmt.Fprint(w, styleFaint.Render(" ("+a.Message+")"))
				}
				fmt.Fprintln(w)
			}
			for _, e := range f.Extracts {
				if !e.Success {
					fmt.Fprintf(w, "    %s extract %s: %s\n", mark(false), e.Name, e.Message)
					continue
				}
				fmt.Fprintf(w, "    %s %s = %s\n", styleFaint.Render("•"), e.Name, f.Extracted[e.Name])
			}
		}
	}
	fmt.Fprintf(w, "\n%d check(s), %d failed, took %s\n",
		len(r.Checks), r.FailedChecks(), r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
