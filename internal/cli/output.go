package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleFail  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleTitle = lipgloss.NewStyle().Bold(true)
	styleFaint = lipgloss.NewStyle().Faint(true)
)

func mark(ok bool) string {
	if ok {
		return styleOK.Render("✓")
	}
	return styleFail.Render("✗")
}

func status(ok bool) string {
	if ok {
		return styleOK.Render("OK")
	}
	return styleFail.Render("FAIL")
}

// emit writes v as indented JSON when format is json, otherwise calls pretty.
func emit(w io.Writer, format string, v any, pretty func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "pretty", "":
		pretty(w)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}
