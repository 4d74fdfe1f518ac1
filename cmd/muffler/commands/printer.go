package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/mattn/go-isatty"

	"github.com/openfroyo/muffler/pkg/engine"
	"github.com/openfroyo/muffler/pkg/policy"
)

// Color functions used for terminal output
var (
	colorProgress = color.Cyan.Sprintf
	colorError    = color.Red.Sprintf
	colorWarning  = color.Yellow.Sprintf
	colorInfo     = color.FgLightBlue.Sprintf
	colorSuccess  = color.Green.Sprintf
)

// isTerminal reports whether w is an interactive terminal that accepts
// colors. NO_COLOR disables colors.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// resultPrinter writes expansion results.
type resultPrinter struct {
	out      io.Writer
	colored  bool
	jsonOut  bool
	progress bool
	encoder  *json.Encoder
}

// newResultPrinter creates a printer for out. In JSON mode each result is
// one JSON object per line; otherwise each result is its command, prefixed by
// [index/total] when progress is on.
func newResultPrinter(out io.Writer, jsonOut, progress bool) *resultPrinter {
	return &resultPrinter{
		out:      out,
		colored:  isTerminal(out),
		jsonOut:  jsonOut,
		progress: progress,
		encoder:  json.NewEncoder(out),
	}
}

// Print writes one result.
func (p *resultPrinter) Print(r engine.Result) error {
	if p.jsonOut {
		return p.encoder.Encode(r)
	}

	if p.progress && r.Total > 0 {
		prefix := fmt.Sprintf("[%d/%d]", r.Index, r.Total)
		if p.colored {
			prefix = colorProgress("%s", prefix)
		}
		_, err := fmt.Fprintf(p.out, "%s %s\n", prefix, r.Command)
		return err
	}

	_, err := fmt.Fprintln(p.out, r.Command)
	return err
}

// printFindings writes policy findings, one per line, colored by severity on
// a terminal.
func printFindings(w io.Writer, findings []policy.Violation) {
	colored := isTerminal(w)
	for _, f := range findings {
		label := string(f.Severity)
		if colored {
			switch {
			case f.Severity.Blocking():
				label = colorError("%s", label)
			case f.Severity == policy.SeverityWarning:
				label = colorWarning("%s", label)
			default:
				label = colorInfo("%s", label)
			}
		}

		subject := f.Policy
		if f.Option != "" {
			subject += " (" + f.Option + ")"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", label, subject, f.Message)
	}
}

// printOK writes a success line.
func printOK(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal(w) {
		msg = colorSuccess("%s", msg)
	}
	fmt.Fprintln(w, msg)
}
