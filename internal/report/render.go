// Package report renders audit results to the console and to JSON files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/worker"
)

// Renderer writes audit output. Counts go to out, diagnostics to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	format string
}

// NewRenderer creates a renderer. The auto format resolves to a table on a
// terminal and to plain text otherwise.
func NewRenderer(out, errOut io.Writer, format string) *Renderer {
	if format == "" || format == model.FormatAuto {
		format = model.FormatText
		if isTerminal(out) {
			format = model.FormatTable
		}
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		format: format,
	}
}

// Format returns the resolved output format
func (r *Renderer) Format() string {
	return r.format
}

// Catalog announces how many packages will be audited. JSON output stays a
// single document, so the line is skipped there.
func (r *Renderer) Catalog(packages int) {
	if r.format == model.FormatJSON {
		return
	}
	_, _ = fmt.Fprintf(r.out, "%d packages to audit against\n", packages)
}

// Failure writes one diagnostic line for a failed service request
func (r *Renderer) Failure(outcome *worker.Outcome) {
	_, _ = fmt.Fprintf(r.errOut, "ERROR: %v\n", outcome.Err)
}

// Render writes the audit counts in the configured format
func (r *Renderer) Render(rep *model.AuditReport) error {
	switch r.format {
	case model.FormatJSON:
		return r.renderJSON(rep)
	case model.FormatTable:
		return r.renderTable(rep)
	case model.FormatText:
		return r.renderText(rep)
	default:
		return fmt.Errorf("unknown output format: %q", r.format)
	}
}

func (r *Renderer) renderText(rep *model.AuditReport) error {
	lines := []string{
		fmt.Sprintf("%d unique packages between both APIs", rep.Unique),
	}
	for _, svc := range rep.Services {
		lines = append(lines, fmt.Sprintf("%d packages from %s with %d fingerprint matches",
			svc.Distinct, svc.Service, svc.Matches))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

func (r *Renderer) renderTable(rep *model.AuditReport) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%d packages audited in %d batches", rep.Packages, rep.Batches))

	tw.AppendHeader(table.Row{"Service", "Packages", "Exact matches", "Failed batches"})
	for _, svc := range rep.Services {
		tw.AppendRow(table.Row{svc.Service, svc.Distinct, svc.Matches, fmt.Sprintf("%d/%d", svc.FailedBatches, svc.Batches)})
	}
	tw.AppendFooter(table.Row{"unique across services", rep.Unique, "", ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	if _, err := fmt.Fprintln(r.out, tw.Render()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (r *Renderer) renderJSON(rep *model.AuditReport) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteJSON writes the report to path as indented JSON
func WriteJSON(rep *model.AuditReport, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
