package csvsource

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"

	"bar-quality/internal/domain/dataquality"
)

// Loader 讀取單一 CSV 檔為資料集，所有欄位保留原始文字，空白儲存格視為 null。
type Loader struct {
	Name string
	Path string
}

func NewLoader(name, path string) *Loader {
	return &Loader{Name: name, Path: path}
}

// Load 讀檔並建立資料集；檔案沒有資料列時回傳 ErrDataUnavailable。
// 欄位不足的資料列補 null，重複欄名改為 "a.1" 形式。
func (l *Loader) Load(ctx context.Context) (*dataquality.Dataset, error) {
	raw, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Name, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, dataquality.DataUnavailable(l.Name)
	}

	body, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.Name, err)
	}
	if body == nil {
		return nil, dataquality.DataUnavailable(l.Name)
	}

	empty := ""
	frame, err := imports.LoadFromCSV(ctx, bytes.NewReader(body), imports.CSVLoadOptions{
		NilValue: &empty,
	})
	if errors.Is(err, dataframe.ErrNoRows) {
		return nil, dataquality.DataUnavailable(l.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.Name, err)
	}
	return dataquality.NewDataset(l.Name, frame)
}

// normalize 將每列補齊為表頭欄數並改名重複欄位；沒有資料列時回傳 nil。
func normalize(raw []byte) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(dataquality.UniqueColumns(header)); err != nil {
		return nil, err
	}

	rows := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		if len(rec) > len(header) {
			return nil, fmt.Errorf("record on line %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
		rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, nil
	}
	return buf.Bytes(), nil
}
