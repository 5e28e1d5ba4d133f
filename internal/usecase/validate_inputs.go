package usecase

import (
	"errors"
	"path/filepath"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// ValidateInputs checks workflow inputs before a run.
type ValidateInputs struct {
	logged
	checker ports.InputChecker
	samples ports.SampleStore
}

func NewValidateInputs(checker ports.InputChecker, samples ports.SampleStore) *ValidateInputs {
	return &ValidateInputs{checker: checker, samples: samples}
}

// ValidateAll checks every path and reports each failure. It never stops early.
func (uc *ValidateInputs) ValidateAll(paths []string) domain.InputReport {
	report := domain.InputReport{Checked: len(paths), Failures: []domain.InputFailure{}}
	for _, p := range paths {
		if err := uc.checker.CheckFile(p); err != nil {
			report.Failures = append(report.Failures, domain.InputFailure{Path: p, Reason: reason(err)})
			uc.logger().Warn("inputs.invalid", "path", p, "error", err)
		}
	}
	uc.logger().Info("inputs.validated", "checked", report.Checked, "failed", len(report.Failures))
	return report
}

// ValidateSamples checks the file behind every name in the sample list. Names
// resolve through the same recursive scan of rawDir that built the list; a
// name the scan no longer finds is checked at <rawDir>/<sample><suffix>.
func (uc *ValidateInputs) ValidateSamples(listPath, rawDir, suffix string) (domain.InputReport, error) {
	names, err := uc.samples.ReadList(listPath)
	if err != nil {
		return domain.InputReport{}, err
	}

	found := map[string]string{}
	list, err := uc.samples.Scan(rawDir, suffix)
	switch {
	case err == nil:
		for _, s := range list.Samples {
			found[s.Name] = s.Path
		}
	case !domain.IsKind(err, domain.KindNotFound):
		return domain.InputReport{}, err
	}

	paths := make([]string, 0, len(names))
	for _, n := range names {
		p, ok := found[n]
		if !ok {
			p = filepath.Join(rawDir, n+suffix)
		}
		paths = append(paths, p)
	}
	return uc.ValidateAll(paths), nil
}

// EnsureDirs creates every directory, stopping at the first failure.
func (uc *ValidateInputs) EnsureDirs(dirs []string) error {
	for _, d := range dirs {
		if err := uc.checker.EnsureDir(d); err != nil {
			return err
		}
	}
	return nil
}

// reason strips the operation prefix from checker errors.
func reason(err error) string {
	var oe *domain.OpError
	if errors.As(err, &oe) && oe.Err != nil {
		return oe.Err.Error()
	}
	return err.Error()
}
