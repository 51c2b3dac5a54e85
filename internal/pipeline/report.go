package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/choirsched/internal/stats"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Report writes the success banner, both output paths, a preview of each
// table and the fairness summary.
func Report(w io.Writer, res Result, previewRows int) error {
	if _, err := fmt.Fprintln(w, bannerStyle.Render("--- Success! ---")); err != nil {
		return err
	}
	if err := ReportAssign(w, res.Assign, previewRows); err != nil {
		return err
	}
	if err := ReportStats(w, res.Stats, previewRows); err != nil {
		return err
	}
	if res.RunID != "" {
		if _, err := fmt.Fprintf(w, "\nRecorded run %s\n", res.RunID); err != nil {
			return err
		}
	}
	return nil
}

// ReportAssign writes the assignment path and a preview of the roster.
func ReportAssign(w io.Writer, res AssignResult, previewRows int) error {
	if _, err := fmt.Fprintf(w, "\n%s %s\n", headerStyle.Render("Assignment written to"), pathStyle.Render(res.Path)); err != nil {
		return err
	}
	return stats.WritePreview(w, res.Table, previewRows)
}

// ReportStats writes the statistics path, a preview of the rows and the
// fairness summary.
func ReportStats(w io.Writer, res StatsResult, previewRows int) error {
	if _, err := fmt.Fprintf(w, "\n%s %s\n", headerStyle.Render("Statistics written to"), pathStyle.Render(res.Path)); err != nil {
		return err
	}
	if err := stats.WritePreview(w, res.Table, previewRows); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", headerStyle.Render("Fairness")); err != nil {
		return err
	}
	return stats.WriteSummary(w, res.Summary)
}
