package workflowcfg

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

func readConfig(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, b)
	}
	return m
}

func TestSetSamples_ReplacesKeyAndKeepsOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "# pipeline config\nsamples: [old]\nreference: ref.fa # GRCh38\nthreads: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := NewWriter().SetSamples(path, []string{"s1", "s2"}); err != nil {
		t.Fatalf("SetSamples error: %v", err)
	}

	m := readConfig(t, path)
	if !reflect.DeepEqual(m["samples"], []any{"s1", "s2"}) {
		t.Fatalf("unexpected samples: %v", m["samples"])
	}
	if m["reference"] != "ref.fa" || m["threads"] != 4 {
		t.Fatalf("other keys changed: %v", m)
	}

	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "# pipeline config") || !strings.Contains(string(b), "# GRCh38") {
		t.Fatalf("comments lost:\n%s", b)
	}
}

func TestSetSamples_AppendsKeyAndCreatesFile(t *testing.T) {
	dir := t.TempDir()

	existing := filepath.Join(dir, "existing.yaml")
	if err := os.WriteFile(existing, []byte("threads: 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := NewWriter().SetSamples(existing, []string{"a"}); err != nil {
		t.Fatalf("SetSamples error: %v", err)
	}
	m := readConfig(t, existing)
	if !reflect.DeepEqual(m["samples"], []any{"a"}) || m["threads"] != 2 {
		t.Fatalf("unexpected config: %v", m)
	}

	created := filepath.Join(dir, "workflows", "config.yaml")
	if err := NewWriter().SetSamples(created, nil); err != nil {
		t.Fatalf("SetSamples error: %v", err)
	}
	m = readConfig(t, created)
	if !reflect.DeepEqual(m["samples"], []any{}) {
		t.Fatalf("expected empty samples list, got %v", m["samples"])
	}
}

func TestSetSamples_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("- a\n- b\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := NewWriter().SetSamples(path, []string{"x"}); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}
