package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"bar-quality/internal/domain/dataquality"
)

// TableSource 從資料表讀取整張表作為資料集，每個欄位皆以可為 null 的文字掃描。
type TableSource struct {
	db    *sql.DB
	name  string
	table string
}

// NewTableSource 建立資料表來源；table 可含 schema（例如 "market.cn_stock_index_bar1d"）。
func NewTableSource(db *sql.DB, name, table string) *TableSource {
	return &TableSource{db: db, name: name, table: table}
}

// Load 讀取資料表；沒有資料列時回傳 ErrDataUnavailable。
func (s *TableSource) Load(ctx context.Context) (*dataquality.Dataset, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%s: database not configured", s.name)
	}
	q := "SELECT * FROM " + quoteTable(s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", s.name, err)
	}

	var records [][]interface{}
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.name, err)
		}
		rec := make([]interface{}, len(columns))
		for i, c := range cells {
			if c.Valid {
				rec[i] = c.String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}
	return dataquality.NewDataset(s.name, dataquality.NewFrame(columns, records))
}

func quoteTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}
