package dataquality

import (
	"fmt"

	"github.com/rocketlaunchr/dataframe-go"
)

// nullText 是 null 儲存格轉為文字時的表示法。
const nullText = "nan"

// Dataset 是一次檢查期間共享且唯讀的表格資料，所有欄位皆以文字保存。
type Dataset struct {
	name    string
	frame   *dataframe.DataFrame
	columns []string
}

// NewDataset 以 DataFrame 建立資料集；沒有資料列時回傳 ErrDataUnavailable。
func NewDataset(name string, frame *dataframe.DataFrame) (*Dataset, error) {
	if frame == nil || frame.NRows() == 0 {
		return nil, DataUnavailable(name)
	}
	return &Dataset{
		name:    name,
		frame:   frame,
		columns: frame.Names(),
	}, nil
}

// NewFrame 由欄名與逐列資料組出字串欄位的 DataFrame；值只能是 string 或 nil。
func NewFrame(columns []string, rows [][]interface{}) *dataframe.DataFrame {
	if len(columns) == 0 {
		return nil
	}
	series := make([]dataframe.Series, len(columns))
	for c, name := range UniqueColumns(columns) {
		vals := make([]interface{}, len(rows))
		for r, row := range rows {
			if c < len(row) {
				vals[r] = row[c]
			}
		}
		series[c] = dataframe.NewSeriesString(name, nil, vals...)
	}
	return dataframe.NewDataFrame(series...)
}

// UniqueColumns 以 pandas 的方式改名重複欄位：第二個 "a" 變為 "a.1"，依此類推。
func UniqueColumns(columns []string) []string {
	out := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	counts := make(map[string]int, len(columns))
	for i, name := range columns {
		cand := name
		for used[cand] {
			counts[name]++
			cand = fmt.Sprintf("%s.%d", name, counts[name])
		}
		used[cand] = true
		out[i] = cand
	}
	return out
}

// NormalizeNulls 回傳新的資料集，等於任一 token 的儲存格改為 null。
func (d *Dataset) NormalizeNulls(tokens []string) (*Dataset, error) {
	if len(tokens) == 0 {
		return d, nil
	}
	isToken := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		isToken[tok] = true
	}
	rows := make([][]interface{}, d.Len())
	for r := range rows {
		rec := make([]interface{}, len(d.columns))
		for c := range d.columns {
			if v, ok := d.Value(r, c); ok && !isToken[v] {
				rec[c] = v
			}
		}
		rows[r] = rec
	}
	return NewDataset(d.name, NewFrame(d.columns, rows))
}

func (d *Dataset) Name() string { return d.name }

// Columns 回傳欄名（依原始順序）。
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

func (d *Dataset) Len() int { return d.frame.NRows() }

// Frame 提供底層 DataFrame，呼叫端不得修改。
func (d *Dataset) Frame() *dataframe.DataFrame { return d.frame }

// ColumnIndex 查詢欄位位置。
func (d *Dataset) ColumnIndex(name string) (int, error) {
	for i, c := range d.columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s: %w %q", d.name, ErrMissingColumn, name)
}

// Value 回傳儲存格文字；ok 為 false 代表儲存格為 null。
func (d *Dataset) Value(row, col int) (string, bool) {
	switch v := d.frame.Series[col].Value(row).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	default:
		return fmt.Sprint(v), true
	}
}

// Text 回傳儲存格的文字形式，null 以 "nan" 表示。
func (d *Dataset) Text(row, col int) string {
	if v, ok := d.Value(row, col); ok {
		return v
	}
	return nullText
}

// Record 回傳整列資料，null 以空字串表示。
func (d *Dataset) Record(row int) []string {
	out := make([]string, len(d.columns))
	for c := range d.columns {
		out[c], _ = d.Value(row, c)
	}
	return out
}
