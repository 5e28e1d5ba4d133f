package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

type samplesFlags struct {
	dir            string
	suffix         string
	out            string
	updateWorkflow bool
}

func (f *samplesFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&f.dir, "dir", "", "Directory scanned for samples (default: paths.raw_dir)")
	c.Flags().StringVar(&f.suffix, "suffix", "", "Sample file suffix (default: samples.suffix)")
}

func (f *samplesFlags) request(p *projectCtx) domain.SamplesRequest {
	req := p.samplesRequest()
	if f.dir != "" {
		req.Dir = p.abs(f.dir)
	}
	if f.suffix != "" {
		req.Suffix = f.suffix
	}
	if f.out != "" {
		req.Out = p.abs(f.out)
	}
	if f.updateWorkflow {
		req.WorkflowConfig = p.abs(p.cfg.Workflow.ConfigFile)
	}
	return req
}

func samplesCmd(opts *rootOpts) *cobra.Command {
	c := &cobra.Command{
		Use:   "samples",
		Short: "Discover samples and maintain the workflow sample list",
	}
	c.AddCommand(samplesListCmd(opts), samplesWriteCmd(opts), samplesWatchCmd(opts))
	return c
}

func samplesListCmd(opts *rootOpts) *cobra.Command {
	f := &samplesFlags{}
	c := &cobra.Command{
		Use:   "list",
		Short: "List samples found in the raw data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			list, err := p.samples().Scan(f.request(p))
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, list, func(w io.Writer) {
				printSamples(w, list)
			})
		},
	}
	f.bind(c)
	return c
}

func samplesWriteCmd(opts *rootOpts) *cobra.Command {
	f := &samplesFlags{}
	c := &cobra.Command{
		Use:   "write",
		Short: "Write the sample list (one name per line)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			req := f.request(p)
			list, err := p.samples().Execute(req)
			if err != nil {
				return err
			}
			p.metrics.SetSamples(len(list.Samples))
			return emit(cmd.OutOrStdout(), opts.format, list, func(w io.Writer) {
				fmt.Fprintf(w, "%s wrote %d sample(s) to %s\n", mark(true), len(list.Samples), req.Out)
				if req.WorkflowConfig != "" {
					fmt.Fprintf(w, "%s updated samples in %s\n", mark(true), req.WorkflowConfig)
				}
			})
		},
	}
	f.bind(c)
	c.Flags().StringVar(&f.out, "out", "", "Sample list file (default: paths.sample_list)")
	c.Flags().BoolVar(&f.updateWorkflow, "update-workflow", false, "Also set the samples key in the workflow config")
	return c
}

func samplesWatchCmd(opts *rootOpts) *cobra.Command {
	f := &samplesFlags{}
	c := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the sample list whenever the raw data directory changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			req := f.request(p)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "watching %s (ctrl+c to stop)\n", req.Dir)
			return p.samples().Watch(ctx, req, func(list domain.SampleList, err error) {
				if err != nil {
					fmt.Fprintf(w, "%s %v\n", mark(false), err)
					return
				}
				p.metrics.SetSamples(len(list.Samples))
				fmt.Fprintf(w, "%s %d sample(s) → %s\n", mark(true), len(list.Samples), req.Out)
			})
		},
	}
	f.bind(c)
	c.Flags().StringVar(&f.out, "out", "", "Sample list file (default: paths.sample_list)")
	c.Flags().BoolVar(&f.updateWorkflow, "update-workflow", false, "Also set the samples key in the workflow config")
	return c
}

func printSamples(w io.Writer, list domain.SampleList) {
	fmt.Fprintf(w, "%s %s (*%s)\n\n", styleTitle.Render("Samples in"), list.Dir, list.Suffix)
	if len(list.Samples) == 0 {
		fmt.Fprintln(w, styleFaint.Render("(no samples found)"))
		return
	}
	for _, s := range list.Samples {
		fmt.Fprintf(w, "- %s  %s\n", s.Name, styleFaint.Render(s.Path))
	}
	fmt.Fprintf(w, "\n%d sample(s)\n", len(list.Samples))
}
