package domain

// Command is an external program invocation (docker, fasterq-dump, prefetch).
// Args are passed verbatim; no shell is involved.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string

	// Interactive attaches the caller's stdin/stdout/stderr.
	Interactive bool
	// Capture collects stdout/stderr into the result instead of streaming them.
	Capture bool
}

// CommandResult is the outcome of a command that was started.
// A non-zero ExitCode is not an error by itself; callers decide.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports a zero exit code.
func (r CommandResult) OK() bool { return r.ExitCode == 0 }
