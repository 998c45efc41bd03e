package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/chhz0/tasklist/core"
	"github.com/chhz0/tasklist/types"
)

var ErrUnknownFormat = errors.New("unknown export format")

var Formats = []string{"json", "csv", "pdf"}

type Exporter struct {
	Title string
}

func New() *Exporter { return &Exporter{Title: "Task List"} }

// Export 按格式渲染过滤视图中的任务；行号是主列表中的位置（从1开始）。
// csv 和 pdf 面向人，未设置状态写作 "(unset)"；json 保留存储中的原值（空字符串）。
func (e *Exporter) Export(w io.Writer, format string, entries []core.Entry, filter types.Criterion) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return e.json(w, entries)
	case "csv":
		return e.csv(w, entries)
	case "pdf":
		return e.pdf(w, entries, filter)
	default:
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

type jsonRow struct {
	Position int `json:"position"`
	types.Task
}

func (e *Exporter) json(w io.Writer, entries []core.Entry) error {
	rows := make([]jsonRow, len(entries))
	for i, en := range entries {
		rows[i] = jsonRow{Position: en.Position + 1, Task: en.Task}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func (e *Exporter) csv(w io.Writer, entries []core.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"position", "id", "title", "description", "status"}); err != nil {
		return err
	}
	for _, en := range entries {
		t := en.Task
		if err := cw.Write([]string{strconv.Itoa(en.Position + 1), t.ID, t.Title, t.Description, t.Status.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (e *Exporter) pdf(w io.Writer, entries []core.Entry, filter types.Criterion) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// 内置字体只支持 cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(e.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(e.Title))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Filter: %s    Tasks: %d", filter, len(entries))))
	pdf.Ln(10)

	if len(entries) == 0 {
		pdf.Cell(0, 8, "No tasks available.")
		return pdf.Output(w)
	}

	widths := []float64{12, 50, 90, 28}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"#", "Title", "Description", "Status"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, en := range entries {
		cells := []string{
			strconv.Itoa(en.Position + 1),
			tr(en.Task.Title),
			tr(en.Task.Description),
			tr(en.Task.Status.String()),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, truncate(pdf, c, widths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

// truncate 截断超出单元格宽度的文本
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// Bytes 是 Export 的便捷形式
func (e *Exporter) Bytes(format string, entries []core.Entry, filter types.Criterion) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf, format, entries, filter); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
