package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// maxRows caps long listings in the dashboard; the CLI prints everything.
const maxRows = 200

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func renderSamples(l domain.SampleList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\nSuffix:    %s\n\n", l.Dir, l.Suffix)

	if len(l.Samples) == 0 {
		b.WriteString("(no samples found)\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d sample(s):\n", len(l.Samples))
	for i, s := range l.Samples {
		if i == maxRows {
			fmt.Fprintf(&b, "  … %d more\n", len(l.Samples)-maxRows)
			break
		}
		fmt.Fprintf(&b, "  - %-24s %s\n", clampString(s.Name, 24), s.Path)
	}
	return b.String()
}

func renderDownloads(sums []domain.DownloadSummary, entries []domain.LedgerEntry) string {
	var b strings.Builder

	b.WriteString("Summaries:\n")
	if len(sums) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, s := range sums {
		fmt.Fprintf(&b, "  - %s %s [%s]\n", s.ProjectAccession, s.Source, passFail(!s.Failed()))
		if s.Source == domain.SourceNCBI {
			fmt.Fprintf(&b, "    runs %d/%d, failed %d", s.DownloadedRuns, s.TotalRuns, s.FailedRuns)
		} else {
			fmt.Fprintf(&b, "    samples %d/%d, failed %d", s.DownloadedSamples, s.TotalSamples, s.FailedSamples)
		}
		fmt.Fprintf(&b, "; files %d ok, %d failed\n", s.DownloadedFiles, s.FailedFiles)
		for _, e := range s.Errors {
			b.WriteString("      ! ")
			b.WriteString(clampString(e, 120))
			b.WriteString("\n")
		}
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	fmt.Fprintf(&b, "\nLedger: %d file(s), %d bytes\n", len(entries), total)
	for i, e := range entries {
		if i == maxRows {
			fmt.Fprintf(&b, "  … %d more\n", len(entries)-maxRows)
			break
		}
		fmt.Fprintf(&b, "  - %s (%s/%s)\n", e.Path, e.Project, e.Run)
	}
	return b.String()
}

func renderQC(r domain.QCReport) string {
	var b strings.Builder

	if len(r.Checks) == 0 {
		b.WriteString("(no qc.checks configured)\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d check(s), %d failed\n\n", len(r.Checks), r.FailedChecks())
	for _, c := range r.Checks {
		fmt.Fprintf(&b, "%s [%s]\n", c.Name, passFail(!c.Failed()))
		if c.Error != "" {
			b.WriteString("  ! ")
			b.WriteString(c.Error)
			b.WriteString("\n")
		}
		for _, f := range c.Files {
			b.WriteString("  ")
			b.WriteString(f.File)
			b.WriteString("\n")
			if f.Error != "" {
				b.WriteString("    ! ")
				b.WriteString(f.Error)
				b.WriteString("\n")
			}
			for _, a := range f.Assertions {
				fmt.Fprintf(&b, "    - %s [%s] %s\n", a.Name, passFail(a.Passed), a.Message)
			}
			for _, e := range f.Extracts {
				if !e.Success {
					fmt.Fprintf(&b, "    - extract %s [FAIL] %s\n", e.Name, e.Message)
					continue
				}
				fmt.Fprintf(&b, "    - %s = %s\n", e.Name, f.Extracted[e.Name])
			}
		}
	}
	return b.String()
}
