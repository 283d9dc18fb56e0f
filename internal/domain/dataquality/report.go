package dataquality

import (
	"bytes"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ViolationReport 是某項檢查篩出的資料列子集。
type ViolationReport struct {
	Label       string
	Description string
	Dataset     *Dataset
	Rows        []int
}

func (r *ViolationReport) Len() int { return len(r.Rows) }

func (r *ViolationReport) Empty() bool { return len(r.Rows) == 0 }

// Header 回傳報告欄名，不含索引欄。
func (r *ViolationReport) Header() []string {
	return r.Dataset.Columns()
}

// Records 依違規順序回傳資料列，null 以空字串表示。
func (r *ViolationReport) Records() [][]string {
	out := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, r.Dataset.Record(row))
	}
	return out
}

// Sample 將第一筆違規資料排成兩行表格：欄名列，以及前綴原始列索引的資料列。
func (r *ViolationReport) Sample() string {
	if r.Empty() {
		return ""
	}
	row := r.Rows[0]
	cols := r.Dataset.Columns()
	vals := make([]string, len(cols))
	for c := range cols {
		vals[c] = r.Dataset.Text(row, c)
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	tw.Write([]byte("\t" + strings.Join(cols, "\t") + "\n"))
	tw.Write([]byte(strconv.Itoa(row) + "\t" + strings.Join(vals, "\t") + "\n"))
	tw.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

// Failure 產生對應的 ValidationFailure；報告為空時回傳 nil。
func (r *ViolationReport) Failure(reportPath string) *ValidationFailure {
	if r.Empty() {
		return nil
	}
	return &ValidationFailure{
		Dataset:     r.Dataset.Name(),
		Label:       r.Label,
		Description: r.Description,
		Sample:      r.Sample(),
		Count:       r.Len(),
		ReportPath:  reportPath,
	}
}
