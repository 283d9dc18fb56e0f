package dataquality

import (
	"fmt"
)

const (
	LabelCoverage      = "test_alldata"
	LabelNullOrIllegal = "test_data_isnot_null_or_illegal"
	LabelHighLow       = "test_high_ishigher_low"
	LabelChangeRatio   = "test_changeratio_below_1"
)

// Check 是一個逐列篩選違規資料的檢查。
type Check interface {
	Label() string
	Description() string
	// Select 回傳違規的資料列索引，允許重複。
	Select(ds *Dataset) ([]int, error)
}

// Evaluate 執行檢查並產生違規報告。
func Evaluate(c Check, ds *Dataset) (*ViolationReport, error) {
	rows, err := c.Select(ds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Label(), err)
	}
	return &ViolationReport{
		Label:       c.Label(),
		Description: c.Description(),
		Dataset:     ds,
		Rows:        rows,
	}, nil
}

// DefaultChecks 依固定順序回傳所有逐列檢查。
func DefaultChecks(rules Rules) []Check {
	return []Check{
		NullOrIllegalCheck{Rules: rules},
		HighLowCheck{Rules: rules},
		ChangeRatioCheck{Rules: rules},
	}
}

// NullOrIllegalCheck 找出含缺值或非法值的資料列。
// 順序：先列出所有含缺值的列，再逐欄列出含非法值的列。
type NullOrIllegalCheck struct {
	Rules Rules
}

func (NullOrIllegalCheck) Label() string { return LabelNullOrIllegal }

func (NullOrIllegalCheck) Description() string { return "Data values are missing or illegal" }

func (c NullOrIllegalCheck) Select(ds *Dataset) ([]int, error) {
	ruleByCol := make(map[int][]ColumnRule)
	for _, rule := range c.Rules.Columns {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		col, err := ds.ColumnIndex(rule.Name)
		if err != nil {
			return nil, err
		}
		ruleByCol[col] = append(ruleByCol[col], rule)
	}

	var out []int
	for row := 0; row < ds.Len(); row++ {
		for col := range ds.columns {
			if c.Rules.IsNull(ds, row, col) {
				out = append(out, row)
				break
			}
		}
	}

	for col := range ds.columns {
		for row := 0; row < ds.Len(); row++ {
			if c.Rules.isIllegal(ds, row, col) {
				out = append(out, row)
			}
		}
		for _, rule := range ruleByCol[col] {
			for row := 0; row < ds.Len(); row++ {
				if c.Rules.IsNull(ds, row, col) {
					continue
				}
				if v, _ := ds.Value(row, col); !rule.Accepts(v) {
					out = append(out, row)
				}
			}
		}
	}
	return out, nil
}

// HighLowCheck 找出最高價低於最低價的資料列。
type HighLowCheck struct {
	Rules Rules
}

func (HighLowCheck) Label() string { return LabelHighLow }

func (HighLowCheck) Description() string {
	return "Stocks have daily high prices lower than low prices"
}

func (c HighLowCheck) Select(ds *Dataset) ([]int, error) {
	highCol, err := ds.ColumnIndex(c.Rules.HighColumn)
	if err != nil {
		return nil, err
	}
	lowCol, err := ds.ColumnIndex(c.Rules.LowColumn)
	if err != nil {
		return nil, err
	}

	var out []int
	for row := 0; row < ds.Len(); row++ {
		high, ok := c.Rules.number(ds, row, highCol)
		if !ok {
			continue
		}
		low, ok := c.Rules.number(ds, row, lowCol)
		if !ok {
			continue
		}
		if high.LessThan(low) {
			out = append(out, row)
		}
	}
	return out, nil
}

// ChangeRatioCheck 找出漲跌幅絕對值達到上限的資料列。
type ChangeRatioCheck struct {
	Rules Rules
}

func (ChangeRatioCheck) Label() string { return LabelChangeRatio }

func (c ChangeRatioCheck) Description() string {
	return fmt.Sprintf("Stocks have change ratios exceeding %s", c.Rules.ChangeRatioBound.String())
}

func (c ChangeRatioCheck) Select(ds *Dataset) ([]int, error) {
	col, err := ds.ColumnIndex(c.Rules.ChangeRatioColumn)
	if err != nil {
		return nil, err
	}

	var out []int
	for row := 0; row < ds.Len(); row++ {
		ratio, ok := c.Rules.number(ds, row, col)
		if !ok {
			continue
		}
		if ratio.Abs().GreaterThanOrEqual(c.Rules.ChangeRatioBound) {
			out = append(out, row)
		}
	}
	return out, nil
}
