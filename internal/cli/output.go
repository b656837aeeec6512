package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/smarthealth/internal/labref"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatHuman = "human"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// render writes v as JSON or YAML. It reports false for the human format so
// the caller prints its own view.
func render(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case formatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(w, string(out))
		return true, err
	case formatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprint(w, string(out))
		return true, err
	case formatHuman, "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q (want human, json or yaml)", format)
	}
}

func newSpinner(w io.Writer, suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	return s
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	color.New(color.FgCyan, color.Bold).Fprintln(w, title)
	fmt.Fprintln(w, "──────────────────────────────────────────")
}

func printSuccess(w io.Writer, msg string) {
	color.New(color.FgGreen).Fprintf(w, "✓ %s\n", msg)
}

func printField(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %-18s %v\n", label+":", value)
}

func severityColor(severity string) *color.Color {
	switch severity {
	case "severe", "high", "critical":
		return color.New(color.FgRed, color.Bold)
	case "moderate", "medium":
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func statusColor(ev *labref.Evaluation) *color.Color {
	switch {
	case ev.Critical:
		return severityColor("critical")
	case ev.Status == labref.StatusNormal:
		return severityColor("")
	default:
		return severityColor("moderate")
	}
}
