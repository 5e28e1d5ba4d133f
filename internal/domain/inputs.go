package domain

// InputFailure is one path that failed validation.
type InputFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// InputReport is the outcome of validating a set of input files.
type InputReport struct {
	Checked  int            `json:"checked"`
	Failures []InputFailure `json:"failures"`
}

// OK reports whether every checked path passed.
func (r InputReport) OK() bool { return len(r.Failures) == 0 }
