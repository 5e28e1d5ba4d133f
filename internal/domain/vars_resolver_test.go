package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testRuntime(t *testing.T, vars Vars) *RuntimeResolver {
	t.Helper()
	vr := NewVarResolver(
		WithNow(func() time.Time { return time.Unix(1700000000, 0) }),
		WithUUID(func() (string, error) { return "00000000-0000-0000-0000-000000000000", nil }),
	)
	rt, err := vr.NewRuntime(vars)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return rt
}

func TestResolveString_NoPlaceholders(t *testing.T) {
	rt := testRuntime(t, Vars{})
	got, err := rt.ResolveString("data:/app/data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "data:/app/data" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestResolveString_VarAndBuiltins(t *testing.T) {
	rt := testRuntime(t, Vars{"project_root": "/srv/ff"})

	got, err := rt.ResolveString("{{project_root}}/data:/app/data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/srv/ff/data:/app/data" {
		t.Fatalf("unexpected %q", got)
	}

	got, err = rt.ResolveString("run-{{ $timestamp }}-{{$uuid}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "run-1700000000-00000000-0000-0000-0000-000000000000" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestResolveString_Errors(t *testing.T) {
	rt := testRuntime(t, Vars{})

	_, err := rt.ResolveString("{{missing}}")
	if !IsKind(err, KindMissingVar) {
		t.Fatalf("expected KindMissingVar, got %v", err)
	}
	if !errors.Is(err, ErrMissingVar) {
		t.Fatalf("expected ErrMissingVar in chain, got %v", err)
	}

	_, err = rt.ResolveString("{{open")
	if !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig for unclosed placeholder, got %v", err)
	}

	_, err = rt.ResolveString("{{ }}")
	if !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig for empty placeholder, got %v", err)
	}
}

func TestResolveArgs_ReportsIndex(t *testing.T) {
	rt := testRuntime(t, Vars{"a": "1"})

	out, err := rt.ResolveArgs("docker.extra_args", []string{"--x={{a}}", "plain"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "--x=1" || out[1] != "plain" {
		t.Fatalf("unexpected args %v", out)
	}

	_, err = rt.ResolveArgs("docker.extra_args", []string{"ok", "{{nope}}"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "docker.extra_args[1]") {
		t.Fatalf("expected field index in error, got %v", err)
	}
	if !IsKind(err, KindMissingVar) {
		t.Fatalf("expected kind preserved, got %v", err)
	}
}

func TestNewRuntime_UUIDFailure(t *testing.T) {
	vr := NewVarResolver(WithUUID(func() (string, error) { return "", errors.New("entropy") }))
	if _, err := vr.NewRuntime(nil); !IsKind(err, KindExecution) {
		t.Fatalf("expected KindExecution, got %v", err)
	}
}

func TestNewRuntime_DoesNotAliasInput(t *testing.T) {
	in := Vars{"k": "v"}
	rt := testRuntime(t, in)
	in["k"] = "changed"

	got, err := rt.ResolveString("{{k}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v" {
		t.Fatalf("expected snapshot value, got %q", got)
	}
}
