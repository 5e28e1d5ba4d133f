package tui

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

// userMessage turns an error into a short line fit for the dashboard.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timed out (see logs)"
	}
	if errors.Is(err, errUnavailable) {
		return "Not available without a project"
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case domain.KindNotFound:
			switch {
			case strings.HasPrefix(oe.Op, "projectfinder"):
				return "Project not found"
			case strings.HasPrefix(oe.Op, "samplefs"), strings.HasPrefix(oe.Op, "samples"):
				return "Sample directory not found: " + oe.Path
			case strings.HasPrefix(oe.Op, "qc"):
				return "QC check not found: " + oe.Path
			}
			return "Not found"

		case domain.KindMissingVar:
			name := strings.TrimSpace(oe.Path)
			if name == "" {
				msg := err.Error()
				name = strings.TrimSpace(msg[strings.LastIndex(msg, ":")+1:])
			}
			return "Missing variable " + name

		case domain.KindInvalidConfig:
			base := "config"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}
			if line := extractLine(err.Error()); line != "" {
				return "Invalid YAML at " + base + " line " + line
			}
			if looksLikeYAMLProblem(err.Error()) {
				return "Invalid YAML at " + base
			}
			return "Invalid config in " + base

		case domain.KindRemote:
			return "Remote service unavailable (see logs)"

		case domain.KindInvalidInput:
			if oe.Path != "" {
				return "Invalid input: " + oe.Path
			}
			return "Invalid input"
		}
		return "Unexpected error (see logs)"
	}

	if looksLikeYAMLProblem(err.Error()) {
		if line := extractLine(err.Error()); line != "" {
			return "Invalid YAML line " + line
		}
		return "Invalid YAML"
	}
	return "Unexpected error (see logs)"
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	return strings.Contains(ls, "yaml:") || strings.Contains(ls, "did not find expected") || strings.Contains(ls, "cannot unmarshal")
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}
