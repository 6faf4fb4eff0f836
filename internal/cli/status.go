package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/getpup/modular"
)

// StatusRow is one migration in the status output.
type StatusRow struct {
	Migration string `json:"migration"`
	Status    string `json:"status"` // "ran", "pending" or "missing"
	Batch     int    `json:"batch,omitempty"`
	Directory string `json:"directory,omitempty"`
}

// StatusReport is the result of migrate status.
type StatusReport struct {
	Migrations []StatusRow `json:"migrations"`
}

func newStatusReport(entries []modular.StatusEntry) StatusReport {
	rows := make([]StatusRow, len(entries))
	for i, e := range entries {
		status := "pending"
		switch {
		case e.Missing:
			status = "missing"
		case e.Ran:
			status = "ran"
		}
		rows[i] = StatusRow{
			Migration: e.Identifier.String(),
			Status:    status,
			Batch:     e.Batch,
			Directory: e.Directory,
		}
	}
	return StatusReport{Migrations: rows}
}

func (r StatusReport) String() string {
	var b strings.Builder
	_ = renderStatus(&b, r.Migrations)
	return b.String()
}

// renderStatus writes rows as an aligned table.
func renderStatus(w io.Writer, rows []StatusRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No migrations found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tMIGRATION\tBATCH\tDIRECTORY")
	for _, row := range rows {
		batch := "-"
		if row.Batch > 0 {
			batch = strconv.Itoa(row.Batch)
		}
		dir := row.Directory
		if dir == "" {
			dir = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", statusLabel(row.Status), row.Migration, batch, dir)
	}
	return tw.Flush()
}

func statusLabel(status string) string {
	switch status {
	case "ran":
		return "Ran"
	case "missing":
		return "Missing"
	default:
		return "Pending"
	}
}
