package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

var summaryHeaders = []string{"Queue", "Groups", "Success", "Asleep", "Failed", "Total", "Duration", "Error"}

// startLayout formats pass start times in history tables.
const startLayout = "2006-01-02 15:04:05"

// renderSummaries draws one table row per pass, prefixed by its start time
// when withStart is set. Colours are used only when w is a terminal.
func renderSummaries(w io.Writer, summaries []domain.BatchSummary, withStart bool) string {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	failed := cell.Foreground(lipgloss.Color("#F38BA8"))

	headers := summaryHeaders
	if withStart {
		headers = append([]string{"Started"}, summaryHeaders...)
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{
			s.Queue,
			strconv.Itoa(s.Groups),
			strconv.Itoa(s.Counts[domain.CodeSuccess]),
			strconv.Itoa(s.Counts[domain.CodeAsleep]),
			strconv.Itoa(s.Failures()),
			strconv.Itoa(s.Total()),
			s.Duration().Round(time.Millisecond).String(),
			s.Error,
		}
		if withStart {
			row = append([]string{s.StartedAt.Local().Format(startLayout)}, row...)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("#45475A"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if row >= 0 && row < len(summaries) && (summaries[row].Failures() > 0 || summaries[row].Error != "") {
				return failed
			}
			return cell
		})
	return t.String()
}
