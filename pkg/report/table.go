package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

func status(e Entry) string {
	if e.Passed {
		return "PASS"
	}
	return "FAIL"
}

func detail(e Entry) string {
	if !e.Passed {
		// Multi-line errors break the table layout.
		return strings.ReplaceAll(e.Error, "\n", " ")
	}
	if len(e.Benchmarks) > 0 {
		b := e.Benchmarks[len(e.Benchmarks)-1]
		return fmt.Sprintf("%.3f Mbit/s", b.Throughput())
	}
	return ""
}

// WriteTable renders a summary of r to w, followed by a count line.
func WriteTable(w io.Writer, r *Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test", "Status", "Duration", "Detail"})
	table.SetAutoWrapText(false)
	for _, e := range r.Entries {
		table.Append([]string{
			e.Name,
			status(e),
			e.Duration.Round(time.Millisecond).String(),
			detail(e),
		})
	}
	table.Render()

	passed, failed := r.Counts()
	fmt.Fprintf(w, "%d passed, %d failed\n", passed, failed)
}

// WriteHistory renders one line per saved report.
func WriteHistory(w io.Writer, reports []*Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "Device", "Passed", "Failed"})
	for _, r := range reports {
		passed, failed := r.Counts()
		table.Append([]string{
			r.Started.Format(time.RFC3339),
			r.Device,
			fmt.Sprintf("%d", passed),
			fmt.Sprintf("%d", failed),
		})
	}
	table.Render()
}
