package etl_test

import (
	"fmt"
	"strings"

	"github.com/tigerroll/gridwatch/internal/etl"
)

// csvRow is one raw record; measures not listed default to 0.
type csvRow struct {
	id        string
	timestamp string
	measures  map[string]string
}

// buildCSV renders rows under a header in mixed case, with an extra ignored column.
func buildCSV(rows ...csvRow) string {
	cols := etl.RequiredColumns()
	var b strings.Builder
	header := make([]string, 0, len(cols)+1)
	for i, c := range cols {
		if i%2 == 0 {
			c = strings.ToUpper(c)
		}
		header = append(header, " "+c+" ")
	}
	header = append(header, "Unused")
	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")
	for _, r := range rows {
		values := make([]string, 0, len(cols)+1)
		for _, c := range cols {
			switch c {
			case etl.ColumnID:
				values = append(values, r.id)
			case etl.ColumnTimestamp:
				values = append(values, r.timestamp)
			default:
				v, ok := r.measures[c]
				if !ok {
					v = "0"
				}
				values = append(values, v)
			}
		}
		values = append(values, "x")
		b.WriteString(strings.Join(values, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func demandRow(id int, ts string, demand float64) csvRow {
	return csvRow{id: fmt.Sprint(id), timestamp: ts, measures: map[string]string{"demand": fmt.Sprint(demand)}}
}
