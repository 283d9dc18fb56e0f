package csvsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bar-quality/internal/domain/dataquality"
)

func TestLoader_Load(t *testing.T) {
	ds, err := NewLoader("cn_stock_index_bar1d", filepath.Join("testdata", "bars.csv")).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cn_stock_index_bar1d", ds.Name())
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"instrument", "date", "open", "high", "low", "close", "volume", "change_ratio"}, ds.Columns())

	high, err := ds.ColumnIndex("high")
	require.NoError(t, err)
	v, ok := ds.Value(1, high)
	assert.True(t, ok)
	assert.Equal(t, "3973.62", v)

	// 數值欄位不做型別推斷，保留原始文字
	vol, err := ds.ColumnIndex("volume")
	require.NoError(t, err)
	v, _ = ds.Value(0, vol)
	assert.Equal(t, "32735826300", v)

	ratio, err := ds.ColumnIndex("change_ratio")
	require.NoError(t, err)
	assert.True(t, dataquality.DefaultRules().IsNull(ds, 2, ratio), "empty cell should be null")
}

func TestLoader_NoRows(t *testing.T) {
	for _, name := range []string{"header_only.csv", "empty.csv"} {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader("cn_stock_index_info", filepath.Join("testdata", name)).Load(context.Background())
			assert.True(t, errors.Is(err, dataquality.ErrDataUnavailable), "got %v", err)
			assert.Contains(t, err.Error(), "cn_stock_index_info")
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader("cn_stock_index_info", filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, dataquality.ErrDataUnavailable))
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoader_ShortRowPaddedWithNull(t *testing.T) {
	path := writeCSV(t, "instrument,high,low,change_ratio\nA,12,10\nB,12,10,0.1\n")

	ds, err := NewLoader("bars", path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"A", "12", "10", ""}, ds.Record(0))

	ratio, err := ds.ColumnIndex("change_ratio")
	require.NoError(t, err)
	assert.True(t, dataquality.DefaultRules().IsNull(ds, 0, ratio))

	rows, err := dataquality.NullOrIllegalCheck{Rules: dataquality.DefaultRules()}.Select(ds)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rows)
}

func TestLoader_LongRow(t *testing.T) {
	path := writeCSV(t, "instrument,high\nA,12,10\n")

	_, err := NewLoader("bars", path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 fields, saw 3")
}

func TestLoader_DuplicateHeader(t *testing.T) {
	path := writeCSV(t, "a,a,high,low,change_ratio\n1,2,3,2,0.1\n")

	ds, err := NewLoader("bars", path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a.1", "high", "low", "change_ratio"}, ds.Columns())
	assert.Equal(t, []string{"1", "2", "3", "2", "0.1"}, ds.Record(0))
}
