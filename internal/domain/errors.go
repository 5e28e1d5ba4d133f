package domain

import (
	"errors"
	"strings"
)

// Sentinels wrapped by OpError.Err so callers can also match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid config")
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingVar    = errors.New("missing variable")
	ErrExecution     = errors.New("execution error")
	ErrRemote        = errors.New("remote archive error")
)

// ErrorKind classifies failures for exit handling, API status codes and the
// dashboard's messages.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindInvalidInput  ErrorKind = "invalid_input"
	KindMissingVar    ErrorKind = "missing_variable"
	KindExecution     ErrorKind = "execution"
	KindRemote        ErrorKind = "remote"
)

// OpError records which operation failed, on what, and why.
// It renders as "op: kind (path=P): cause".
type OpError struct {
	Op   string
	Kind ErrorKind
	// Path is the file, directory or accession involved, if any.
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Path != "" {
		b.WriteString(" (path=")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the kind of the outermost OpError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var oe *OpError
	if !errors.As(err, &oe) {
		return "", false
	}
	return oe.Kind, true
}

// IsKind reports whether err carries an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
