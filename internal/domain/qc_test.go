package domain

import "testing"

func TestQCFileResultFailed(t *testing.T) {
	cases := []struct {
		name string
		in   QCFileResult
		want bool
	}{
		{"empty", QCFileResult{}, false},
		{"error", QCFileResult{Error: "unreadable"}, true},
		{"assertion fail", QCFileResult{Assertions: []AssertionResult{{Passed: true}, {Passed: false}}}, true},
		{"extract fail", QCFileResult{Extracts: []ExtractResult{{Success: false}}}, true},
		{"all pass", QCFileResult{Assertions: []AssertionResult{{Passed: true}}, Extracts: []ExtractResult{{Success: true}}}, false},
	}
	for _, c := range cases {
		if got := c.in.Failed(); got != c.want {
			t.Errorf("%s: Failed() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestQCReportFailedChecks(t *testing.T) {
	r := QCReport{Checks: []QCCheckResult{
		{Name: "ok", Files: []QCFileResult{{}}},
		{Name: "no files", Error: "no files matched"},
		{Name: "bad", Files: []QCFileResult{{Assertions: []AssertionResult{{Passed: false}}}}},
	}}
	if n := r.FailedChecks(); n != 2 {
		t.Fatalf("expected 2 failed checks, got %d", n)
	}
}
