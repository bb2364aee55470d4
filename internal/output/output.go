// Package output provides consistent CLI output formatting for the
// hwsearch commands.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hwcatalog/hwsearch/internal/search"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// KeyValue prints an aligned key/value detail line.
func (w *Writer) KeyValue(key string, value any) {
	_, _ = fmt.Fprintf(w.out, "   %-22s %v\n", key+":", value)
}

// Results prints a ranked result list: position, original code, score,
// and the product name when the catalog resolved one.
func (w *Writer) Results(resp *search.Response) {
	if resp.Superseded {
		w.Warning("query superseded by a newer one")
		return
	}
	if len(resp.Results) == 0 {
		w.Statusf("🔍", "no results for %q", resp.Query)
		return
	}

	w.Statusf("🔍", "%d result(s) for %q in %s", len(resp.Results), resp.Query, resp.Elapsed.Round(time.Microsecond))
	for i, r := range resp.Results {
		name := ""
		if r.Product != nil {
			name = r.Product.Name
		}
		_, _ = fmt.Fprintf(w.out, "  %2d. %-14s %7.1f  %s\n", i+1, r.OriginalCode, r.Score, name)
		if len(r.MatchTypes) > 0 {
			_, _ = fmt.Fprintf(w.out, "      matched: %s\n", strings.Join(r.MatchTypes, ", "))
		}
	}
	if len(resp.FragmentsSearched) > 0 {
		_, _ = fmt.Fprintf(w.out, "   fragments: %s\n", strings.Join(resp.FragmentsSearched, ", "))
	}
}
