package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
	ucassert "github.com/dhruv-ramu/FragmentFusion/internal/usecase/assert"
	ucextract "github.com/dhruv-ramu/FragmentFusion/internal/usecase/extract"
)

// CheckQC evaluates the configured QC gates against JSON reports.
type CheckQC struct {
	logged
	reports ports.ReportSource
	checks  []domain.QCCheck
	metrics ports.QCMetrics
	now     func() time.Time
}

func NewCheckQC(reports ports.ReportSource, checks []domain.QCCheck, metrics ports.QCMetrics) *CheckQC {
	return &CheckQC{reports: reports, checks: checks, metrics: metrics, now: time.Now}
}

var _ ports.QCRunner = (*CheckQC)(nil)

// Execute runs every check, or only the one called name. A check with no
// matching report fails.
func (uc *CheckQC) Execute(ctx context.Context, name string) (domain.QCReport, error) {
	checks := uc.checks
	if name != "" {
		checks = nil
		for _, c := range uc.checks {
			if c.Name == name {
				checks = append(checks, c)
			}
		}
		if len(checks) == 0 {
			return domain.QCReport{}, &domain.OpError{
				Op:   "qc.check",
				Kind: domain.KindNotFound,
				Path: name,
				Err:  fmt.Errorf("no qc check named %q: %w", name, domain.ErrNotFound),
			}
		}
	}

	report := domain.QCReport{
		StartedAt: uc.now(),
		Checks:    make([]domain.QCCheckResult, 0, len(checks)),
	}

	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := uc.evaluate(c)
		report.Checks = append(report.Checks, res)
		uc.logger().Info("qc.check", "name", c.Name, "files", len(res.Files), "failed", res.Failed())
	}

	report.EndedAt = uc.now()
	if uc.metrics != nil {
		uc.metrics.ObserveQC(report)
	}
	return report, nil
}

func (uc *CheckQC) evaluate(c domain.QCCheck) domain.QCCheckResult {
	res := domain.QCCheckResult{Name: c.Name, Files: []domain.QCFileResult{}}

	files, err := uc.reports.Glob(c.Files)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if len(files) == 0 {
		res.Error = fmt.Sprintf("no report matched %s", strings.Join(c.Files, ", "))
		return res
	}

	for _, f := range files {
		fr := domain.QCFileResult{
			File:       f,
			Assertions: []domain.AssertionResult{},
			Extracts:   []domain.ExtractResult{},
			Extracted:  domain.Vars{},
		}
		body, err := uc.reports.Read(f)
		if err != nil {
			fr.Error = err.Error()
			res.Files = append(res.Files, fr)
			continue
		}
		fr.Assertions = ucassert.Evaluate(c.JSONPath, body)
		fr.Extracted, fr.Extracts = ucextract.Apply(body, c.Extract)
		res.Files = append(res.Files, fr)
	}
	return res
}
