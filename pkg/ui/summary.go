package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"unliker/pkg/unlike"
)

// PrintSummary renders a finished run as a table
func PrintSummary(w io.Writer, sum unlike.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})

	table.Append([]string{"Total unliked", strconv.Itoa(sum.Total)})
	table.Append([]string{"This run", strconv.Itoa(sum.Performed)})
	table.Append([]string{"Failures", strconv.Itoa(sum.Failures)})
	table.Append([]string{"Elapsed", fmt.Sprintf("%.2fs", sum.Elapsed.Seconds())})
	table.Append([]string{"Rate", fmt.Sprintf("%.1f/min", Rate(sum.Performed, sum.Elapsed))})
	table.SetFooter([]string{"Result", reasonText(sum.Reason)})

	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.SetBorder(false)
	table.Render()
}

// ProgressRecord is one persisted counter for PrintProgress
type ProgressRecord struct {
	Backend  string
	Location string
	Key      string
	Value    string
	Updated  time.Time
}

// PrintProgress renders stored counters as a table
func PrintProgress(w io.Writer, records []ProgressRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Backend", "Location", "Key", "Value", "Updated"})

	for _, r := range records {
		updated := "-"
		if !r.Updated.IsZero() {
			updated = r.Updated.Local().Format(time.DateTime)
		}
		value := r.Value
		if value == "" {
			value = "0"
		}
		table.Append([]string{r.Backend, Fit(r.Location, 48), r.Key, value, updated})
	}

	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})
	table.SetBorder(false)
	table.Render()
}
