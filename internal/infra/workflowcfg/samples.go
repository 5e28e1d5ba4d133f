package workflowcfg

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// SamplesKey is the Snakemake config key holding the sample names.
const SamplesKey = "samples"

// Writer edits the Snakemake YAML config in place, keeping every other key
// and its comments.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

var _ ports.WorkflowConfigWriter = (*Writer)(nil)

func (w *Writer) SetSamples(path string, names []string) error {
	doc, err := load(path)
	if err != nil {
		return err
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &domain.OpError{
			Op:   "workflowcfg.set_samples",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("top level is not a mapping: %w", domain.ErrInvalidConfig),
		}
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, n := range names {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n})
	}
	if len(names) == 0 {
		seq.Style = yaml.FlowStyle
	}

	replaced := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == SamplesKey {
			seq.LineComment = root.Content[i+1].LineComment
			root.Content[i+1] = seq
			replaced = true
			break
		}
	}
	if !replaced {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: SamplesKey},
			seq,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return &domain.OpError{Op: "workflowcfg.encode", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := enc.Close(); err != nil {
		return &domain.OpError{Op: "workflowcfg.encode", Kind: domain.KindExecution, Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "workflowcfg.write", Kind: domain.KindExecution, Path: path, Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return &domain.OpError{Op: "workflowcfg.write", Kind: domain.KindExecution, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{Op: "workflowcfg.write", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// load parses path into a document node. A missing or empty file yields an
// empty mapping.
func load(path string) (*yaml.Node, error) {
	empty := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return nil, &domain.OpError{Op: "workflowcfg.read", Kind: domain.KindExecution, Path: path, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, &domain.OpError{Op: "workflowcfg.parse", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return empty, nil
	}
	return &doc, nil
}
