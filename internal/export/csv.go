// Package export renders transactions for download as CSV and for the
// spreadsheet export queue.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ErrNothingToExport is returned when the filtered view is empty.
var ErrNothingToExport = errors.New("no transactions to export")

// Columns is the header row shared by the CSV and the spreadsheet.
var Columns = []string{"Date", "Type", "Category", "Description", "Amount"}

// Filename is the download name for an export taken at now.
func Filename(now time.Time) string {
	return "finance-tracker-export-" + now.UTC().Format(core.DateLayout) + ".csv"
}

// WriteCSV writes the header and one line per transaction, in the given
// order. Descriptions are always quoted; every line ends with "\n".
func WriteCSV(w io.Writer, txns []core.Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, ErrNothingToExport
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(Columns, ","))
	bw.WriteByte('\n')
	for _, t := range txns {
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s\n",
			t.Date.String(), t.Type, t.Category, quote(t.Description), t.Amount.String())
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(txns), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Rows returns the header followed by one row per transaction, as plain
// cell values for a spreadsheet.
func Rows(txns []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txns)+1)
	rows = append(rows, append([]string(nil), Columns...))
	for _, t := range txns {
		rows = append(rows, []string{
			t.Date.String(),
			string(t.Type),
			t.Category,
			t.Description,
			t.Amount.String(),
		})
	}
	return rows
}
