package extract

import (
	"strings"
	"testing"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

const qcReport = `{
  "sample": "S01",
  "reads": {"total": 1204332, "duplicate_rate": 0.081},
  "passed": true,
  "insert_sizes": [167],
  "flags": ["low_coverage", "gc_bias"],
  "notes": null
}`

func TestApply_NoRules(t *testing.T) {
	vals, res := Apply([]byte(qcReport), nil)
	if len(vals) != 0 || len(res) != 0 {
		t.Fatalf("expected empty output, got %v %v", vals, res)
	}
}

func TestApply_Values(t *testing.T) {
	rules := domain.ExtractSpec{
		"sample":    "$.sample",
		"total":     "$.reads.total",
		"dup":       "$.reads.duplicate_rate",
		"passed":    "$.passed",
		"mode":      "$.insert_sizes[0]",
		"flags":     "$.flags",
		"reads_obj": "$.reads",
	}
	vals, res := Apply([]byte(qcReport), rules)

	for _, r := range res {
		if !r.Success {
			t.Fatalf("expected success, got %+v", r)
		}
	}
	want := map[string]string{
		"sample": "S01",
		"total":  "1204332",
		"dup":    "0.081",
		"passed": "true",
		"mode":   "167",
		"flags":  `["low_coverage","gc_bias"]`,
	}
	for k, v := range want {
		if vals[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, vals[k])
		}
	}
	if !strings.Contains(vals["reads_obj"], `"duplicate_rate":0.081`) {
		t.Errorf("expected object JSON, got %q", vals["reads_obj"])
	}
}

func TestApply_SortedResultsWithFailures(t *testing.T) {
	rules := domain.ExtractSpec{
		"b_missing": "$.absent",
		"a_ok":      "$.sample",
		"c_null":    "$.notes",
		"d_empty":   "  ",
		"e_bad":     "$.reads[",
	}
	vals, res := Apply([]byte(qcReport), rules)

	if len(res) != 5 {
		t.Fatalf("expected 5 results, got %d", len(res))
	}
	wantOrder := []string{"a_ok", "b_missing", "c_null", "d_empty", "e_bad"}
	for i, n := range wantOrder {
		if res[i].Name != n {
			t.Fatalf("result %d: expected %s, got %s", i, n, res[i].Name)
		}
		if (i == 0) != res[i].Success {
			t.Fatalf("unexpected success state for %s: %+v", n, res[i])
		}
	}
	if len(vals) != 1 || vals["a_ok"] != "S01" {
		t.Fatalf("expected only a_ok extracted, got %v", vals)
	}
}

func TestApply_InvalidReportFailsAll(t *testing.T) {
	vals, res := Apply([]byte("<html>"), domain.ExtractSpec{"x": "$.x", "y": "$.y"})
	if len(vals) != 0 {
		t.Fatalf("expected no values, got %v", vals)
	}
	for _, r := range res {
		if r.Success || !strings.Contains(r.Message, "not valid JSON") {
			t.Fatalf("unexpected result %+v", r)
		}
	}
}
