package dataquality

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnType 列舉欄位預期的資料型別。
type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnNumber  ColumnType = "number"
	ColumnInteger ColumnType = "integer"
	ColumnDate    ColumnType = "date"
)

// DateLayouts 是 date 型別欄位接受的格式。
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"20060102",
	"2006/01/02",
}

// ColumnRule 宣告單一欄位的預期型別。
type ColumnRule struct {
	Name string
	Type ColumnType
}

// Accepts 判斷非 null 的文字值是否符合欄位型別。
func (r ColumnRule) Accepts(v string) bool {
	v = strings.TrimSpace(v)
	switch r.Type {
	case ColumnNumber:
		_, err := decimal.NewFromString(v)
		return err == nil
	case ColumnInteger:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	case ColumnDate:
		_, ok := ParseDate(v)
		return ok
	default:
		return true
	}
}

// Validate 檢查規則本身是否合法。
func (r ColumnRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("column rule name is required")
	}
	switch r.Type {
	case ColumnString, ColumnNumber, ColumnInteger, ColumnDate:
		return nil
	default:
		return fmt.Errorf("column %q: unsupported type %q", r.Name, r.Type)
	}
}

// ParseDate 依 DateLayouts 解析日期。
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DefaultNullTokens 與 pandas read_csv 預設視為缺值的字串相同。
func DefaultNullTokens() []string {
	return []string{
		"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
		"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
		"n/a", "nan", "null",
	}
}

// Rules 集中所有檢查使用的欄名、門檻與判斷規則。
type Rules struct {
	NullTokens        []string
	IllegalMarkers    []string
	Columns           []ColumnRule
	HighColumn        string
	LowColumn         string
	ChangeRatioColumn string
	ChangeRatioBound  decimal.Decimal
}

// DefaultRules 回傳日 K 資料的預設規則。
func DefaultRules() Rules {
	return Rules{
		NullTokens:        DefaultNullTokens(),
		IllegalMarkers:    []string{"/"},
		HighColumn:        "high",
		LowColumn:         "low",
		ChangeRatioColumn: "change_ratio",
		ChangeRatioBound:  decimal.NewFromInt(1),
	}
}

// IsNull 判斷儲存格是否為缺值。
func (r Rules) IsNull(ds *Dataset, row, col int) bool {
	v, ok := ds.Value(row, col)
	if !ok {
		return true
	}
	for _, tok := range r.NullTokens {
		if v == tok {
			return true
		}
	}
	return false
}

// isIllegal 以文字形式比對非法標記；null 儲存格的文字為 "nan"。
func (r Rules) isIllegal(ds *Dataset, row, col int) bool {
	text := ds.Text(row, col)
	if r.IsNull(ds, row, col) {
		text = nullText
	}
	for _, marker := range r.IllegalMarkers {
		if marker != "" && strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// number 取出可解析為十進位數的儲存格；null 或格式錯誤時 ok 為 false。
func (r Rules) number(ds *Dataset, row, col int) (decimal.Decimal, bool) {
	if r.IsNull(ds, row, col) {
		return decimal.Decimal{}, false
	}
	v, _ := ds.Value(row, col)
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
