package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"fpl-query-mcp/internal/table"
)

// renderRecords lays the chosen columns out as an aligned text table.
func renderRecords(records []table.Record, cols []string) string {
	if len(records) == 0 {
		return "no matching records"
	}

	buf := &strings.Builder{}
	w := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))

	row := make([]string, len(cols))
	for _, rec := range records {
		for i, col := range cols {
			row[i] = formatValue(rec[col])
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

// formatValue renders one cell; nulls print as a dash, integral floats
// without a fraction.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', 2, 64)
	default:
		return fmt.Sprint(val)
	}
}
