package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

func ptrF(f float64) *float64 { return &f }
func ptrS(s string) *string { return &s }

func qcFixture() (*fakeReports, []domain.QCCheck) {
	reports := &fakeReports{
		globs: map[string][]string{
			"data/metadata/*_download_summary.json": {
				"data/metadata/PRJEB1_download_summary.json",
				"data/metadata/PRJEB2_download_summary.json",
			},
		},
		files: map[string]string{
			"data/metadata/PRJEB1_download_summary.json": `{"project_accession":"PRJEB1","failed_files":0,"downloaded_files":12}`,
			"data/metadata/PRJEB2_download_summary.json": `{"project_accession":"PRJEB2","failed_files":3,"downloaded_files":9}`,
		},
	}
	checks := []domain.QCCheck{
		{
			Name:  "downloads",
			Files: []string{"data/metadata/*_download_summary.json"},
			JSONPath: map[string]domain.JSONPathAssertion{
				"$.failed_files": {Exists: true, Lt: ptrF(1)},
			},
			Extract: domain.ExtractSpec{"project": "$.project_accession"},
		},
		{
			Name:     "fragments",
			Files:    []string{"results/fragmentomics/*.json"},
			JSONPath: map[string]domain.JSONPathAssertion{"$.status": {Eq: ptrS("ok")}},
		},
	}
	return reports, checks
}

func TestCheckQC_EvaluatesEveryFile(t *testing.T) {
	reports, checks := qcFixture()
	metrics := &fakeMetrics{}
	uc := NewCheckQC(reports, checks, metrics)

	report, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Checks) != 2 || report.FailedChecks() != 2 {
		t.Fatalf("expected both checks to fail, got %+v", report)
	}

	dl := report.Checks[0]
	if len(dl.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(dl.Files))
	}
	if dl.Files[0].Failed() {
		t.Fatalf("PRJEB1 should pass: %+v", dl.Files[0])
	}
	if !dl.Files[1].Failed() {
		t.Fatalf("PRJEB2 should fail: %+v", dl.Files[1])
	}
	if dl.Files[1].Extracted["project"] != "PRJEB2" {
		t.Fatalf("unexpected extracted vars: %v", dl.Files[1].Extracted)
	}

	frag := report.Checks[1]
	if !strings.HasPrefix(frag.Error, "no report matched results/fragmentomics/*.json") {
		t.Fatalf("unexpected error: %q", frag.Error)
	}
	if len(metrics.qc) != 1 {
		t.Fatalf("QC metrics not observed")
	}
}

func TestCheckQC_ByName(t *testing.T) {
	reports, checks := qcFixture()
	uc := NewCheckQC(reports, checks, nil)

	report, err := uc.Execute(context.Background(), "downloads")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Checks) != 1 || report.Checks[0].Name != "downloads" {
		t.Fatalf("unexpected checks: %+v", report.Checks)
	}

	if _, err := uc.Execute(context.Background(), "nope"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCheckQC_UnreadableFileFails(t *testing.T) {
	reports := &fakeReports{globs: map[string][]string{"r.json": {"r.json"}}}
	checks := []domain.QCCheck{{Name: "r", Files: []string{"r.json"}}}
	uc := NewCheckQC(reports, checks, nil)

	report, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if f := report.Checks[0].Files[0]; f.Error == "" || !f.Failed() {
		t.Fatalf("read error should fail the file: %+v", f)
	}
}
