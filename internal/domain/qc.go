package domain

import "time"

// JSONPathAssertion defines checks against the value found at a JSONPath.
type JSONPathAssertion struct {
	Exists   bool
	Eq       *string
	Contains *string
	Matches  *string
	Gt       *float64
	Lt       *float64
}

// ExtractSpec maps a display name to a JSONPath expression.
type ExtractSpec map[string]string

// QCCheck is a gate evaluated against JSON reports produced by the workflow
// or by data collection (download summaries, QC metrics).
type QCCheck struct {
	Name string
	// Files are glob patterns relative to the project root.
	Files    []string
	JSONPath map[string]JSONPathAssertion
	Extract  ExtractSpec
}

// AssertionResult is the output of a single assertion.
type AssertionResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// ExtractResult is the outcome of extracting one value.
type ExtractResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// QCFileResult is the evaluation of one check against one report file.
type QCFileResult struct {
	File       string            `json:"file"`
	Assertions []AssertionResult `json:"assertions"`
	Extracts   []ExtractResult   `json:"extracts"`
	Extracted  Vars              `json:"extracted"`
	Error      string            `json:"error,omitempty"`
}

// Failed reports whether the file could not be read or any assertion/extract failed.
func (r QCFileResult) Failed() bool {
	if r.Error != "" {
		return true
	}
	for _, a := range r.Assertions {
		if !a.Passed {
			return true
		}
	}
	for _, e := range r.Extracts {
		if !e.Success {
			return true
		}
	}
	return false
}

// QCCheckResult groups per-file results for a check.
type QCCheckResult struct {
	Name  string         `json:"name"`
	Files []QCFileResult `json:"files"`
	Error string         `json:"error,omitempty"`
}

// Failed reports whether the check has no matching files or any file failed.
func (r QCCheckResult) Failed() bool {
	if r.Error != "" {
		return true
	}
	for _, f := range r.Files {
		if f.Failed() {
			return true
		}
	}
	return false
}

// QCReport is the outcome of a `qc check` invocation.
type QCReport struct {
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
	Checks    []QCCheckResult `json:"checks"`
}

// FailedChecks counts failed checks.
func (r QCReport) FailedChecks() int {
	n := 0
	for _, c := range r.Checks {
		if c.Failed() {
			n++
		}
	}
	return n
}
