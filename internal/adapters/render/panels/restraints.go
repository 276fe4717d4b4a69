package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

// NoCursor renders the matrix without a selected row.
const NoCursor = -1

// Matrix renders the restraint editor. cursor indexes matrix.Rows.
func (r *Renderer) Matrix(matrix application.RestraintMatrix, cursor int) string {
	s := r.styles
	state := matrix.State.String()
	if matrix.PendingCount > 0 {
		state = fmt.Sprintf("%s (%d pending)", state, matrix.PendingCount)
	}
	lines := []string{
		s.title.Render("Restraint Matrix"),
		s.header.Render("state: " + state),
	}

	if len(matrix.Rows) == 0 {
		lines = append(lines, s.empty.Render("No restraint dimensions reported."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	labelWidth := 0
	for _, row := range matrix.Rows {
		if w := lipgloss.Width(row.Label); w > labelWidth {
			labelWidth = w
		}
	}

	rows := make([]string, 0, len(matrix.Rows))
	for i, row := range matrix.Rows {
		rows = append(rows, r.matrixRow(row, i == cursor, labelWidth))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	switch {
	case matrix.RequiresAuth && !matrix.Authorized:
		lines = append(lines, s.section.Render(s.warning.Render("Authorization required: a pending value exceeds its hard limit.")))
	case matrix.Authorized:
		lines = append(lines, s.section.Render(s.meta.Render("Authorization key captured for this session.")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) matrixRow(row application.RestraintRow, selected bool, labelWidth int) string {
	s := r.styles
	marker := "  "
	if selected {
		marker = s.cursor.Render("> ")
	}

	label := row.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(row.Label))
	if row.Locked {
		label = s.locked.Render(label)
	} else {
		label = s.detail.Render(label)
	}

	parts := []string{marker, label, " "}
	if row.Budget {
		parts = append(parts, s.detail.Render(fmt.Sprintf("%6.0f ms", row.Value)))
		if row.HardLimit != nil {
			parts = append(parts, " ", s.meta.Render(fmt.Sprintf("limit %.0f ms", *row.HardLimit)))
		}
	} else {
		parts = append(parts, renderBar(row.Value, row.HardLimit, barWidth, s), " ", s.detail.Render(fmt.Sprintf("%.2f", row.Value)))
		if row.HardLimit != nil {
			parts = append(parts, " ", s.meta.Render(fmt.Sprintf("limit %.2f", *row.HardLimit)))
		}
	}

	if row.Pending {
		parts = append(parts, " ", s.pending.Render(fmt.Sprintf("* was %s", formatValue(row.Dimension, row.Baseline))))
	}
	if row.ExceedsLimit {
		parts = append(parts, " ", s.danger.Render("! exceeds limit"))
	}
	if row.Locked {
		parts = append(parts, " ", s.locked.Render("[locked]"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func formatValue(dim domain.Dimension, value float64) string {
	if dim.IsBudget() {
		return fmt.Sprintf("%.0f ms", value)
	}
	return fmt.Sprintf("%.2f", value)
}

func (r *Renderer) restraints(view application.RestraintsView) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		r.Matrix(application.MatrixOf(view.Set), NoCursor),
		r.styles.section.Render(r.auditTrail(view.Audit)),
	)
}

func (r *Renderer) auditTrail(trail domain.AuditTrail) string {
	s := r.styles
	chain := s.ok.Render("chain valid")
	if !trail.ChainValid {
		chain = s.danger.Render("CHAIN BROKEN")
	}
	lines := []string{
		s.title.Render("Audit Trail") + "  " + chain,
	}

	if len(trail.Changes) == 0 {
		lines = append(lines, s.empty.Render("No restraint changes recorded."))
	}
	for _, change := range trail.Changes {
		auth := ""
		if change.Authorized {
			auth = " " + s.warning.Render("(authorized)")
		}
		lines = append(lines, fmt.Sprintf("%s %s -> %s%s %s",
			s.detail.Render(change.Dimension.Label()),
			formatValue(change.Dimension, change.OldValue),
			formatValue(change.Dimension, change.NewValue),
			auth,
			s.meta.Render(formatRelative(change.Timestamp, r.opts.Now)),
		))
	}

	if n := len(trail.UnauthorizedAttempts); n > 0 {
		lines = append(lines, s.danger.Render(fmt.Sprintf("%d unauthorized attempt(s)", n)))
		for _, attempt := range trail.UnauthorizedAttempts {
			lines = append(lines, s.meta.Render(fmt.Sprintf("  %s = %s: %s",
				attempt.Dimension.Label(), formatValue(attempt.Dimension, attempt.Value), attempt.Reason)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
