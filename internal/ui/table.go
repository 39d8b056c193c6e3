package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/royfox/little-reviews/internal/aggregate"
	"github.com/royfox/little-reviews/internal/models"
)

var reviewHeaders = []string{"ID", "TYPE", "TITLE", "AUTHOR", "RATING", "YEAR", "REVIEWED"}

// Stars renders a 0-5 half-step rating. Out of range values are clamped.
func Stars(rating float64) string {
	rating = max(0, min(5, rating))
	full := int(rating)
	half := rating-float64(full) >= 0.5
	s := strings.Repeat("★", full)
	if half {
		s += "½"
	}
	return s + strings.Repeat("·", 5-full-boolInt(half))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ReviewTable renders records as a table, or a muted empty-state line.
func ReviewTable(records []models.Review) string {
	if len(records) == 0 {
		return Muted.Render("No reviews match.")
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.ID,
			string(r.Type),
			r.Title,
			r.Author,
			Stars(r.Rating),
			strconv.Itoa(r.ReleaseYear),
			r.ReviewDate.Format("2006-01-02"),
		}
	}

	tbl := table.New().
		Border(lipgloss.Border{Top: "─", Bottom: "─", Middle: "─"}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderStyle(Muted).
		Headers(reviewHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingRight(2)
			switch {
			case row == table.HeaderRow:
				return style.Inherit(Bold)
			case col == 0:
				return style.Inherit(Accent)
			}
			return style
		}).
		Rows(rows...)

	return tbl.Render() + "\n" + Muted.Render(fmt.Sprintf("%d reviews", len(records)))
}

// BuildSummary renders an aggregation report.
func BuildSummary(path string, rep aggregate.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Bold.Render("wrote"), Accent.Render(path))
	fmt.Fprintf(&b, "  scanned %d, included %d, skipped %d, collisions %d\n",
		rep.Scanned, rep.Included, len(rep.Skipped), len(rep.Collisions))
	for _, s := range rep.Skipped {
		fmt.Fprintf(&b, "  %s %s (%s): %v\n", Muted.Render("skip"), s.File, s.Reason, s.Err)
	}
	for _, c := range rep.Collisions {
		fmt.Fprintf(&b, "  %s %s: %s replaced %s\n", Muted.Render("collision"), c.ID, c.Kept, c.Dropped)
	}
	return b.String()
}
