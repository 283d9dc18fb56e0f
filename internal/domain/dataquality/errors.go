package dataquality

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable 表示資料集載入後沒有任何資料列。
	ErrDataUnavailable = errors.New("no test data available")
	// ErrMissingColumn 表示檢查需要的欄位不存在於資料集。
	ErrMissingColumn = errors.New("missing column")
)

// DataUnavailable 包裝 ErrDataUnavailable 並附上資料集名稱。
func DataUnavailable(dataset string) error {
	return fmt.Errorf("%s: %w", dataset, ErrDataUnavailable)
}

// ValidationFailure 描述單一檢查找到的違規資料。
type ValidationFailure struct {
	Dataset     string
	Label       string
	Description string
	Sample      string // 第一筆違規資料的表格文字
	Count       int
	ReportPath  string

	message string
}

func (e *ValidationFailure) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("[%s] - %s : %s:\n%s\nTotal rows: %d", e.Dataset, e.Label, e.Description, e.Sample, e.Count)
}

// IsValidationFailure 檢查錯誤鏈中是否有 ValidationFailure。
func IsValidationFailure(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}

// ValidationFailures 取出錯誤鏈（含 errors.Join）中所有的 ValidationFailure。
func ValidationFailures(err error) []*ValidationFailure {
	if err == nil {
		return nil
	}
	if vf, ok := err.(*ValidationFailure); ok {
		return []*ValidationFailure{vf}
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		var out []*ValidationFailure
		for _, e := range x.Unwrap() {
			out = append(out, ValidationFailures(e)...)
		}
		return out
	case interface{ Unwrap() error }:
		return ValidationFailures(x.Unwrap())
	}
	return nil
}
