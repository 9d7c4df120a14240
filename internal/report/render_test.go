package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/worker"
)

func sampleReport() *model.AuditReport {
	return &model.AuditReport{
		RunID:     "run-1",
		BatchSize: 25,
		Batches:   1,
		Packages:  2,
		Unique:    2,
		Services: []model.ServiceReport{
			{Service: "primary", Distinct: 1, Matches: 1, Batches: 1},
			{Service: "secondary", Distinct: 1, Matches: 3, Batches: 1, FailedBatches: 0},
		},
	}
}

func TestRenderer_Text(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, model.FormatText)

	if err := r.Render(sampleReport()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := "2 unique packages between both APIs\n" +
		"1 packages from primary with 1 fingerprint matches\n" +
		"1 packages from secondary with 3 fingerprint matches\n"
	if out.String() != want {
		t.Errorf("unexpected text output:\n%s", out.String())
	}
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, model.FormatTable)

	if err := r.Render(sampleReport()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"primary", "secondary", "2 packages audited in 1 batches", "0/1"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected table to contain %q:\n%s", want, got)
		}
	}
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, model.FormatJSON)

	if err := r.Render(sampleReport()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded model.AuditReport
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Unique != 2 || len(decoded.Services) != 2 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}

func TestRenderer_Catalog(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: model.FormatText, want: "3 packages to audit against\n"},
		{format: model.FormatTable, want: "3 packages to audit against\n"},
		{format: model.FormatJSON, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			NewRenderer(&out, &bytes.Buffer{}, tt.format).Catalog(3)
			if out.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, out.String())
			}
		})
	}
}

func TestRenderer_AutoOnBuffer(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, model.FormatAuto)
	if r.Format() != model.FormatText {
		t.Errorf("expected text format for non-terminal writer, got %s", r.Format())
	}
}

func TestRenderer_UnknownFormat(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, "xml")
	if err := r.Render(sampleReport()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderer_Failure(t *testing.T) {
	var errOut bytes.Buffer
	r := NewRenderer(&bytes.Buffer{}, &errOut, model.FormatText)

	r.Failure(&worker.Outcome{
		Service: model.Secondary,
		Batch:   3,
		Err:     &worker.QueryError{Service: model.Secondary, Batch: 3, Err: errors.New("request failed: timeout")},
	})

	want := "ERROR: secondary batch 3: request failed: timeout\n"
	if errOut.String() != want {
		t.Errorf("expected %q, got %q", want, errOut.String())
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "audit.json")

	if err := WriteJSON(sampleReport(), path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `"unique_across_services": 2`) {
		t.Errorf("unexpected report file:\n%s", data)
	}
}
