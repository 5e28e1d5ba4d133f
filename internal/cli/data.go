package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/usecase"
)

func dataCmd(opts *rootOpts) *cobra.Command {
	c := &cobra.Command{
		Use:   "data",
		Short: "Search public archives and download cfDNA sequencing data",
	}
	c.AddCommand(dataSearchCmd(opts), dataDownloadCmd(opts), dataStatusCmd(opts), dataSummariesCmd(opts))
	return c
}

func parseSource(s string) (domain.Source, error) {
	src, ok := domain.ParseSource(s)
	if !ok {
		return "", &domain.OpError{
			Op:   "cli.source",
			Kind: domain.KindInvalidInput,
			Path: s,
			Err:  fmt.Errorf("source must be ena or ncbi: %w", domain.ErrInvalidInput),
		}
	}
	return src, nil
}

func dataSearchCmd(opts *rootOpts) *cobra.Command {
	var source string
	var keywords []string

	c := &cobra.Command{
		Use:   "search",
		Short: "Search an archive for cfDNA projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := parseSource(source)
			if err != nil {
				return err
			}
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			uc, err := p.collector(false)
			if err != nil {
				return err
			}
			if len(keywords) == 0 {
				keywords = p.cfg.DataCollection.Keywords
			}
			projects, err := uc.Search(cmd.Context(), src, keywords)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, projects, func(w io.Writer) {
				printProjects(w, src, projects)
			})
		},
	}

	c.Flags().StringVar(&source, "source", "ena", "Archive: ena|ncbi")
	c.Flags().StringSliceVar(&keywords, "keywords", nil, "Search keywords (default: data_collection.keywords)")
	return c
}

func dataDownloadCmd(opts *rootOpts) *cobra.Command {
	var source string
	var projects, keywords []string
	var search, prefetch bool
	var max int

	c := &cobra.Command{
		Use:   "download",
		Short: "Download FASTQ data for projects",
		Long: "Downloads --project accessions, or every project found by --search.\n" +
			"With neither, the datasets listed in config for the source are downloaded.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := parseSource(source)
			if err != nil {
				return err
			}
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			uc, err := p.collector(prefetch)
			if err != nil {
				return err
			}

			targets := append([]string(nil), projects...)
			switch {
			case len(targets) > 0:
			case search:
				if len(keywords) == 0 {
					keywords = p.cfg.DataCollection.Keywords
				}
				found, err := uc.Search(ctx, src, keywords)
				if err != nil {
					return err
				}
				for _, f := range found {
					targets = append(targets, f.Accession)
				}
			default:
				targets = configuredDatasets(p.cfg, src)
			}
			if len(targets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styleFaint.Render("(no projects to download)"))
				return nil
			}

			results, derr := uc.DownloadMany(ctx, src, targets, max)
			if err := emit(cmd.OutOrStdout(), opts.format, results, func(w io.Writer) {
				for _, r := range results {
					printDownload(w, r)
				}
			}); err != nil {
				return err
			}
			if derr != nil {
				return derr
			}
			for _, r := range results {
				if r.Summary.Failed() {
					return fmt.Errorf("download of %s had failures (see %s)", r.Summary.ProjectAccession, r.SummaryPath)
				}
			}
			return nil
		},
	}

	c.Flags().StringVar(&source, "source", "ena", "Archive: ena|ncbi")
	c.Flags().StringSliceVar(&projects, "project", nil, "Project accession to download (repeatable)")
	c.Flags().BoolVar(&search, "search", false, "Download every project found by a keyword search")
	c.Flags().StringSliceVar(&keywords, "keywords", nil, "Search keywords (default: data_collection.keywords)")
	c.Flags().IntVar(&max, "max", 0, "Maximum samples (ena) or runs (ncbi) per project; 0 means all")
	c.Flags().BoolVar(&prefetch, "prefetch", false, "Run prefetch before fasterq-dump (ncbi)")
	return c
}

func configuredDatasets(cfg domain.Config, src domain.Source) []string {
	ds := cfg.DataCollection.ENA.Datasets
	if src == domain.SourceNCBI {
		ds = cfg.DataCollection.NCBI.Datasets
	}
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Accession)
	}
	return out
}

func dataStatusCmd(opts *rootOpts) *cobra.Command {
	var source string

	c := &cobra.Command{
		Use:   "status",
		Short: "List files recorded in the download ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var src domain.Source
			if source != "" {
				s, err := parseSource(source)
				if err != nil {
					return err
				}
				src = s
			}
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			uc, err := p.collector(false)
			if err != nil {
				return err
			}
			entries, err := uc.Status(cmd.Context(), src)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, entries, func(w io.Writer) {
				printLedger(w, entries)
			})
		},
	}

	c.Flags().StringVar(&source, "source", "", "Only this archive: ena|ncbi")
	return c
}

func dataSummariesCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "summaries",
		Short: "Show the download summaries written so far",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			uc, err := p.collector(false)
			if err != nil {
				return err
			}
			sums, err := uc.Summaries()
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, sums, func(w io.Writer) {
				if len(sums) == 0 {
					fmt.Fprintln(w, styleFaint.Render("(no download summaries)"))
				}
				for _, s := range sums {
					printSummary(w, s)
				}
			})
		},
	}
}

func printProjects(w io.Writer, src domain.Source, projects []domain.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, styleFaint.Render("(no projects found)"))
		return
	}
	fmt.Fprintf(w, "%s %d project(s) in %s\n\n", styleTitle.Render("Found"), len(projects), src)
	for _, p := range projects {
		fmt.Fprintf(w, "- %s  %s\n", styleTitle.Render(p.Accession), p.Title)
		meta := fmt.Sprintf("    keyword=%q submitted=%s center=%s", p.Keyword, p.SubmissionDate, p.CenterName)
		if p.SampleCount > 0 {
			meta += fmt.Sprintf(" samples=%d", p.SampleCount)
		}
		fmt.Fprintln(w, styleFaint.Render(meta))
	}
}

func printDownload(w io.Writer, d usecase.ProjectDownload) {
	printSummary(w, d.Summary)
	fmt.Fprintln(w, styleFaint.Render("  metadata: "+d.MetadataPath))
	fmt.Fprintln(w, styleFaint.Render("  summary:  "+d.SummaryPath))
}

func printSummary(w io.Writer, s domain.DownloadSummary) {
	fmt.Fprintf(w, "[%s] %s (%s)\n", status(!s.Failed()), s.ProjectAccession, s.Source)
	if s.Source == domain.SourceNCBI {
		fmt.Fprintf(w, "  runs:    %d total, %d downloaded, %d failed\n", s.TotalRuns, s.DownloadedRuns, s.FailedRuns)
	} else {
		fmt.Fprintf(w, "  samples: %d total, %d downloaded, %d failed\n", s.TotalSamples, s.DownloadedSamples, s.FailedSamples)
	}
	fmt.Fprintf(w, "  files:   %d downloaded, %d failed\n", s.DownloadedFiles, s.FailedFiles)
	for _, e := range s.Errors {
		fmt.Fprintf(w, "    %s %s\n", mark(false), e)
	}
}

func printLedger(w io.Writer, entries []domain.LedgerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, styleFaint.Render("(no completed downloads)"))
		return
	}
	var total int64
	for _, e := range entries {
		total += e.Size
		fmt.Fprintf(w, "- %s  %s/%s  %s  %d bytes\n", e.Path, e.Project, e.Run, e.Source, e.Size)
	}
	fmt.Fprintf(w, "\n%d file(s), %d bytes\n", len(entries), total)
}
