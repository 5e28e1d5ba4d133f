// Package fsproject scaffolds a FragmentFusion project on the local disk.
package fsproject

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

//go:embed templates
var templatesFS embed.FS

const ignoreHeader = "# FragmentFusion"

// ignored are the .gitignore entries every project carries.
var ignored = []string{
	".fragfusion/",
	"data/raw/",
	"data/aligned/",
	"results/",
	"logs/",
}

// Initializer creates the directory tree, .gitignore entries and the
// embedded config templates.
type Initializer struct {
	templates fs.FS
}

func NewInitializer() *Initializer {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return &Initializer{templates: sub}
}

// Init scaffolds spec.Root. Existing template files are kept unless force.
func (i *Initializer) Init(spec domain.ProjectSpec, force bool) error {
	root := filepath.Clean(spec.Root)

	for _, d := range projectDirs() {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return &domain.OpError{Op: "fsproject.init", Kind: domain.KindExecution, Path: d, Err: err}
		}
	}
	if err := ensureGitignore(root); err != nil {
		return &domain.OpError{Op: "fsproject.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}
	return fs.WalkDir(i.templates, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if err := i.copyTemplate(root, p, force); err != nil {
			return &domain.OpError{Op: "fsproject.template", Kind: domain.KindExecution, Path: p, Err: err}
		}
		return nil
	})
}

func projectDirs() []string {
	cfg := domain.DefaultConfig()
	p := cfg.Paths
	dirs := []string{p.RawDir, p.AlignedDir, p.ResultsDir, p.LogsDir, p.ConfigsDir, p.WorkflowsDir, path.Join(".fragfusion", "logs")}
	return append(dirs, cfg.CollectionDirs()...)
}

func (i *Initializer) copyTemplate(root, name string, force bool) error {
	dst := filepath.Join(root, filepath.FromSlash(name))
	if !force {
		if _, err := os.Stat(dst); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	b, err := fs.ReadFile(i.templates, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}

func ensureGitignore(root string) error {
	p := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	out, changed := mergeIgnore(string(b), ignored)
	if !changed {
		return nil
	}
	return os.WriteFile(p, []byte(out), 0o644)
}

// mergeIgnore appends the entries missing from existing under the
// FragmentFusion header and reports whether anything was added.
func mergeIgnore(existing string, entries []string) (string, bool) {
	have := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		have[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !have[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return existing, false
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" {
		if !strings.HasSuffix(existing, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if !have[ignoreHeader] {
		b.WriteString(ignoreHeader + "\n")
	}
	for _, e := range missing {
		b.WriteString(e + "\n")
	}
	return b.String(), true
}
