package query

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Table is a materialized report: a fixed header and rows of values in header order.
// Period keys are strings, measures are float64 or nil for SQL NULL.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the values of the named column, or nil if there is no such column.
func (t *Table) Column(name string) []any {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// valueKind says how a raw driver value is normalized.
type valueKind int

const (
	kindKey valueKind = iota
	kindMeasure
	kindInteger
	kindText
)

type column struct {
	name string
	kind valueKind
}

func keyColumn(name string) column     { return column{name: name, kind: kindKey} }
func measureColumn(name string) column { return column{name: name, kind: kindMeasure} }

func scanTable(rows *sql.Rows, columns []column) (*Table, error) {
	t := &Table{Columns: make([]string, len(columns)), Rows: [][]any{}}
	for i, c := range columns {
		t.Columns[i] = c.name
	}

	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]any, len(columns))
		for i, c := range columns {
			v, err := normalize(raw[i], c.kind)
			if err != nil {
				return nil, fmt.Errorf("column '%s': %w", c.name, err)
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func normalize(v any, kind valueKind) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case kindKey, kindText:
		switch x := v.(type) {
		case string:
			return x, nil
		case []byte:
			return string(x), nil
		case time.Time:
			return x.Format(time.DateOnly), nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		default:
			return fmt.Sprint(x), nil
		}
	case kindInteger:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int32:
			return int64(x), nil
		case float64:
			return int64(x), nil
		case []byte:
			return strconv.ParseInt(string(x), 10, 64)
		case string:
			return strconv.ParseInt(x, 10, 64)
		}
	case kindMeasure:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case []byte:
			return strconv.ParseFloat(string(x), 64)
		case string:
			return strconv.ParseFloat(x, 64)
		}
	}
	return nil, fmt.Errorf("unexpected value %v (%T)", v, v)
}
