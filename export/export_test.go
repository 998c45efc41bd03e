package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"

	"github.com/chhz0/tasklist/core"
	"github.com/chhz0/tasklist/types"
)

func sampleEntries() []core.Entry {
	tasks := []types.Task{
		{ID: "1", Title: "Buy milk", Description: "2%", Status: types.StatusPending},
		{ID: "2", Title: "Write report", Description: "Q3, final", Status: types.StatusInProgress},
		{ID: "3", Title: "Café run", Description: "", Status: types.StatusPending},
	}
	return core.FilterEntries(tasks, types.ByStatus(types.StatusPending))
}

func TestExportJSON(t *testing.T) {
	out, err := New().Bytes("json", sampleEntries(), types.CriterionAll)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var rows []struct {
		Position int    `json:"position"`
		ID       string `json:"id"`
		Title    string `json:"title"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(out, &rows); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(rows) != 2 || rows[0].Position != 1 || rows[1].Position != 3 || rows[1].ID != "3" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestExportCSV(t *testing.T) {
	out, err := New().Bytes("CSV", sampleEntries(), types.CriterionAll)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2", len(records))
	}
	if records[0][2] != "title" || records[1][2] != "Buy milk" || records[2][0] != "3" {
		t.Fatalf("records = %v", records)
	}
}

func TestExportUnsetStatus(t *testing.T) {
	entries := core.FilterEntries([]types.Task{{ID: "1", Title: "a", Description: "x"}}, types.CriterionAll)

	out, err := New().Bytes("csv", entries, types.CriterionAll)
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if got := records[1][4]; got != "(unset)" {
		t.Fatalf("csv status = %q, want (unset)", got)
	}

	out, err = New().Bytes("json", entries, types.CriterionAll)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	var rows []struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(out, &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rows[0].Status != "" {
		t.Fatalf("json status = %q, want raw empty value", rows[0].Status)
	}
}

func TestExportPDF(t *testing.T) {
	out, err := New().Bytes("pdf", sampleEntries(), types.ByStatus(types.StatusPending))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}

	empty, err := New().Bytes("pdf", nil, types.CriterionAll)
	if err != nil {
		t.Fatalf("export empty: %v", err)
	}
	if !bytes.HasPrefix(empty, []byte("%PDF-")) {
		t.Fatal("empty export is not a PDF")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := New().Bytes("xml", nil, types.CriterionAll); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}
