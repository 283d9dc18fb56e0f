package dataquality

import (
	"fmt"
	"time"
)

// Coverage 確認資料集在指定期間內有資料。
// DateColumn 為空時只要求資料集非空。
type Coverage struct {
	DateColumn string
	From       time.Time
	To         time.Time
}

// Rows 回傳落在期間內（含頭尾）的資料列數。
func (c Coverage) Rows(ds *Dataset) (int, error) {
	if ds == nil {
		return 0, nil
	}
	if c.DateColumn == "" {
		return ds.Len(), nil
	}
	col, err := ds.ColumnIndex(c.DateColumn)
	if err != nil {
		return 0, err
	}
	n := 0
	for row := 0; row < ds.Len(); row++ {
		v, ok := ds.Value(row, col)
		if !ok {
			continue
		}
		d, ok := ParseDate(v)
		if !ok {
			continue
		}
		if !c.From.IsZero() && d.Before(c.From) {
			continue
		}
		// To 只到日，當天任何時刻都算在期間內
		if !c.To.IsZero() && !d.Before(c.To.AddDate(0, 0, 1)) {
			continue
		}
		n++
	}
	return n, nil
}

// Verify 在期間內沒有資料時回傳 ValidationFailure。
func (c Coverage) Verify(name string, ds *Dataset) (int, error) {
	n, err := c.Rows(ds)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", LabelCoverage, err)
	}
	if n > 0 {
		return n, nil
	}
	return 0, &ValidationFailure{
		Dataset: name,
		Label:   LabelCoverage,
		message: fmt.Sprintf("[%s] - No data available from %s to %s", name, formatDay(c.From), formatDay(c.To)),
	}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
