package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VarResolver resolves {{var}} placeholders in docker mounts and arguments.
// It supports built-ins: {{$timestamp}} and {{$uuid}}.
type VarResolver struct {
	now    func() time.Time
	uuidV4 func() (string, error)
}

// VarResolverOption configures VarResolver.
type VarResolverOption func(*VarResolver)

// WithNow overrides the clock (useful for tests).
func WithNow(now func() time.Time) VarResolverOption {
	return func(r *VarResolver) { r.now = now }
}

// WithUUID overrides UUID generation (useful for tests).
func WithUUID(gen func() (string, error)) VarResolverOption {
	return func(r *VarResolver) { r.uuidV4 = gen }
}

func NewVarResolver(opts ...VarResolverOption) *VarResolver {
	r := &VarResolver{
		now:    time.Now,
		uuidV4: newUUID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeResolver caches built-ins for a single resolution session (one docker
// invocation) so repeated {{$uuid}} inside multiple args stays consistent.
type RuntimeResolver struct {
	base     Vars
	builtins Vars
	inner    *VarResolver
}

func (r *VarResolver) NewRuntime(vars Vars) (*RuntimeResolver, error) {
	ts := strconv.FormatInt(r.now().Unix(), 10)

	u, err := r.uuidV4()
	if err != nil {
		return nil, &OpError{
			Op:   "vars.builtins.uuid",
			Kind: KindExecution,
			Err:  err,
		}
	}

	return &RuntimeResolver{
		base: vars.Clone(),
		builtins: Vars{
			"$timestamp": ts,
			"$uuid":      u,
		},
		inner: r,
	}, nil
}

// ResolveString resolves placeholders in a string.
func (rr *RuntimeResolver) ResolveString(s string) (string, error) {
	return rr.inner.resolveStringWith(rr.base, rr.builtins, s)
}

// ResolveArgs resolves every element and returns a new slice.
func (rr *RuntimeResolver) ResolveArgs(field string, args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i, a := range args {
		v, err := rr.ResolveString(a)
		if err != nil {
			return nil, wrapField(err, fmt.Sprintf("%s[%d]", field, i))
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *VarResolver) resolveStringWith(vars Vars, builtins Vars, s string) (string, error) {
	var b strings.Builder
	rest := s
	for {
		before, after, found := strings.Cut(rest, "{{")
		b.WriteString(before)
		if !found {
			return b.String(), nil
		}

		expr, tail, closed := strings.Cut(after, "}}")
		if !closed {
			return "", placeholderError("unclosed placeholder in %q", s)
		}
		name := strings.TrimSpace(expr)
		if name == "" {
			return "", placeholderError("empty placeholder in %q", s)
		}

		val, ok := builtins[name]
		if !ok {
			val, ok = vars[name]
		}
		if !ok {
			return "", &OpError{
				Op:   "vars.resolve",
				Kind: KindMissingVar,
				Err:  fmt.Errorf("%w: %s", ErrMissingVar, name),
			}
		}
		b.WriteString(val)
		rest = tail
	}
}

func placeholderError(format, s string) error {
	return &OpError{
		Op:   "vars.resolve",
		Kind: KindInvalidConfig,
		Err:  fmt.Errorf(format, s),
	}
}

func wrapField(err error, field string) error {
	return &OpError{
		Op:   "vars.resolve",
		Kind: kindFrom(err),
		Err:  fmt.Errorf("%s: %w", field, err),
	}
}

func kindFrom(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindExecution
}

func newUUID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
