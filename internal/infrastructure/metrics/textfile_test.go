package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bar-quality/internal/application/quality"
)

func TestTextfileSink_Publish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barcheck.prom")
	sink := NewTextfileSink(path)

	summary := quality.Summary{
		RunID:       "run-1",
		Dataset:     "cn_stock_index_bar1d",
		DatasetRows: map[string]int{"cn_stock_index_bar1d": 120, "cn_stock_index_info": 8},
		Results: []quality.CheckResult{
			{Label: "test_high_ishigher_low", Violations: 2, Err: errors.New("failed")},
			{Label: "test_changeratio_below_1"},
		},
		FinishedAt: time.Unix(1692057600, 0),
	}
	require.NoError(t, sink.Publish(context.Background(), summary))

	assert.Equal(t, 120.0, testutil.ToFloat64(sink.rows.WithLabelValues("cn_stock_index_bar1d")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.violations.WithLabelValues("cn_stock_index_bar1d", "test_high_ishigher_low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.failed.WithLabelValues("cn_stock_index_bar1d", "test_high_ishigher_low")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.failed.WithLabelValues("cn_stock_index_bar1d", "test_changeratio_below_1")))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `barcheck_violations{check="test_high_ishigher_low",dataset="cn_stock_index_bar1d"} 2`)
	assert.Contains(t, string(body), "barcheck_last_run_timestamp_seconds 1.6920576e+09")
}

func TestTextfileSink_BadPath(t *testing.T) {
	sink := NewTextfileSink(filepath.Join(t.TempDir(), "missing", "barcheck.prom"))
	err := sink.Publish(context.Background(), quality.Summary{FinishedAt: time.Now()})
	assert.Error(t, err)
}
