package dataquality

import (
	"errors"
	"testing"
	"time"
)

func TestCoverageVerify(t *testing.T) {
	ds := mustDataset(t, [][]interface{}{
		{"000001.SH", "2023-08-03", "12", "10", "0.1"},
		{"000001.SH", "2023-08-15", "12", "10", "0.1"},
		{"000001.SH", "2023-08-16", "12", "10", "0.1"},
		{"000001.SH", nil, "12", "10", "0.1"},
	})
	from := time.Date(2023, 8, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC)

	n, err := Coverage{DateColumn: "date", From: from, To: to}.Verify(ds.Name(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows in window, got %d", n)
	}

	n, err = Coverage{}.Verify(ds.Name(), ds)
	if err != nil || n != 4 {
		t.Errorf("expected all 4 rows without date column, got %d err=%v", n, err)
	}
}

func TestCoverageVerifyLastDayTimestamps(t *testing.T) {
	ds := mustDataset(t, [][]interface{}{
		{"000001.SH", "2023-08-15 10:00:00", "12", "10", "0.1"},
		{"000300.SH", "2023-08-15T23:59:59Z", "12", "10", "0.1"},
		{"399001.SZ", "2023-08-16 00:00:00", "12", "10", "0.1"},
	})
	c := Coverage{
		DateColumn: "date",
		From:       time.Date(2023, 8, 3, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	n, err := c.Verify(ds.Name(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected both rows on the last day, got %d", n)
	}
}

func TestCoverageVerifyNoData(t *testing.T) {
	ds := mustDataset(t, [][]interface{}{
		{"000001.SH", "2023-07-31", "12", "10", "0.1"},
	})
	c := Coverage{
		DateColumn: "date",
		From:       time.Date(2023, 8, 3, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	_, err := c.Verify(ds.Name(), ds)
	if !IsValidationFailure(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	want := "[cn_stock_index_bar1d] - No data available from 2023-08-03 to 2023-08-15"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	if _, err := (Coverage{}).Verify("bars", nil); !IsValidationFailure(err) {
		t.Errorf("expected failure for nil dataset, got %v", err)
	}
	if _, err := (Coverage{DateColumn: "trade_date"}).Verify(ds.Name(), ds); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestColumnRuleAccepts(t *testing.T) {
	cases := []struct {
		rule ColumnRule
		in   string
		want bool
	}{
		{ColumnRule{"high", ColumnNumber}, "12.5", true},
		{ColumnRule{"high", ColumnNumber}, "-1e-3", true},
		{ColumnRule{"high", ColumnNumber}, "12,5", false},
		{ColumnRule{"volume", ColumnInteger}, "1000", true},
		{ColumnRule{"volume", ColumnInteger}, "10.5", false},
		{ColumnRule{"date", ColumnDate}, "2023-08-03", true},
		{ColumnRule{"date", ColumnDate}, "20230803", true},
		{ColumnRule{"date", ColumnDate}, "Aug 3", false},
		{ColumnRule{"name", ColumnString}, "anything/goes", true},
	}
	for _, tc := range cases {
		if got := tc.rule.Accepts(tc.in); got != tc.want {
			t.Errorf("%s(%s) accepts %q = %v, want %v", tc.rule.Name, tc.rule.Type, tc.in, got, tc.want)
		}
	}
}
