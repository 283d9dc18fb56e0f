package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bar-quality/internal/domain/dataquality"
)

// CSVWriter 將違規報告寫成 <label>.csv（表頭 + 違規資料列，不含索引欄），覆寫既有檔案。
type CSVWriter struct {
	Dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	if dir == "" {
		dir = "."
	}
	return &CSVWriter{Dir: dir}
}

// Path 回傳報告的輸出路徑。
func (w *CSVWriter) Path(label string) string {
	return filepath.Join(w.Dir, label+".csv")
}

func (w *CSVWriter) Write(rep *dataquality.ViolationReport) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := w.Path(rep.Label)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report %s: %w", rep.Label, err)
	}
	defer f.Close()

	if err := writeReport(f, rep); err != nil {
		return "", err
	}
	return path, f.Close()
}

func writeReport(out io.Writer, rep *dataquality.ViolationReport) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(rep.Header()); err != nil {
		return fmt.Errorf("write report %s: %w", rep.Label, err)
	}
	if err := cw.WriteAll(rep.Records()); err != nil {
		return fmt.Errorf("write report %s: %w", rep.Label, err)
	}
	return nil
}
