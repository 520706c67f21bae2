package analytics

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	maxReportRows = 20
	noDataMessage = "No data found for your query."
)

var grouped = message.NewPrinter(language.English)

// formatReport renders the question, the executed statement, and a
// pipe-delimited table capped at maxReportRows data rows.
func formatReport(question string, statement string, columns []string, rows [][]any) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Query: %s\n", question)
	fmt.Fprintf(&b, "SQL: %s\n\n", strings.TrimSpace(statement))
	b.WriteString("Results:\n")

	header := strings.Join(columns, " | ")
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", len(header)))
	b.WriteByte('\n')

	shown := rows
	if len(shown) > maxReportRows {
		shown = shown[:maxReportRows]
	}
	for _, row := range shown {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatValue(value)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}

	if len(rows) > maxReportRows {
		fmt.Fprintf(&b, "\n... showing first %d of %d total results", maxReportRows, len(rows))
	}

	return b.String()
}

// formatValue renders one cell by value kind: integers with thousands
// separators, floats with thousands separators and two decimals, dates
// as YYYY-MM-DD, and everything else in its default text form.
func formatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case int:
		return grouped.Sprintf("%d", typed)
	case int32:
		return grouped.Sprintf("%d", typed)
	case int64:
		return grouped.Sprintf("%d", typed)
	case uint32:
		return grouped.Sprintf("%d", typed)
	case uint64:
		return grouped.Sprintf("%d", typed)
	case float32:
		return grouped.Sprintf("%.2f", typed)
	case float64:
		return grouped.Sprintf("%.2f", typed)
	case time.Time:
		return typed.Format("2006-01-02")
	case []byte:
		return string(typed)
	default:
		return fmt.Sprint(typed)
	}
}
