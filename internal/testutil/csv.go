package testutil

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tigerroll/gridwatch/internal/etl"
)

// Row is one raw extract record. Measures absent from the map are written as 0
// unless listed in Blank, which leaves the cell empty.
type Row struct {
	ID        int64
	Timestamp string
	Measures  map[string]float64
	Blank     []string
}

// CSV renders rows as a raw extract with every required column.
func CSV(rows ...Row) string {
	cols := etl.RequiredColumns()
	var b strings.Builder
	b.WriteString(strings.Join(cols, ","))
	b.WriteString("\n")
	for _, r := range rows {
		values := make([]string, len(cols))
		for i, c := range cols {
			switch c {
			case etl.ColumnID:
				values[i] = fmt.Sprint(r.ID)
			case etl.ColumnTimestamp:
				values[i] = r.Timestamp
			default:
				if slices.Contains(r.Blank, c) {
					continue
				}
				values[i] = fmt.Sprint(r.Measures[c])
			}
		}
		b.WriteString(strings.Join(values, ","))
		b.WriteString("\n")
	}
	return b.String()
}
