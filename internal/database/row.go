package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Row is one result row keyed by column alias. Values are whatever the
// driver produced: int64, float64, string, []byte, bool, time.Time or nil.
type Row map[string]any

// String returns the column as a string, or nil for NULL or a missing column.
func (r Row) String(col string) *string {
	switch v := r[col].(type) {
	case string:
		return &v
	case []byte:
		s := string(v)
		return &s
	case int64:
		s := strconv.FormatInt(v, 10)
		return &s
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

// Int64 returns the column as an integer, or nil for NULL or non-numeric values.
func (r Row) Int64(col string) *int64 {
	var n int64
	switch v := r[col].(type) {
	case int64:
		n = v
	case float64:
		n = int64(v)
	case bool:
		if v {
			n = 1
		}
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

// Float64 returns the column as a float, or nil for NULL or non-numeric values.
//
// go-sqlite3 turns integer values in TIMESTAMP/DATETIME/DATE columns into
// time.Time using the Unix epoch. Such values are converted back to the
// stored number so that reference-epoch timestamps survive unchanged.
func (r Row) Float64(col string) *float64 {
	var f float64
	switch v := r[col].(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	case time.Time:
		f = float64(v.Unix()) + float64(v.Nanosecond())/1e9
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// Bool returns the column as a boolean. NULL is false.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// scanRows reads every remaining row of rows into Row values and closes rows.
func scanRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
