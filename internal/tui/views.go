package tui

import (
	"fmt"
	"strings"

	"github.com/naufalhakim/catatin/internal/review"
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		if m.saved > 0 {
			return successStyle.Render(fmt.Sprintf("Saved %d expense(s).\n", m.saved))
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("catatin · quick add"))
	b.WriteString("\n")

	switch m.session.State() {
	case review.StateEmpty:
		m.renderInput(&b)
	case review.StateExtracting:
		b.WriteString(m.spin.View())
		b.WriteString(" parsing your expenses...\n")
	case review.StateReviewReady:
		m.renderReview(&b)
	case review.StateCommitting:
		b.WriteString(m.spin.View())
		b.WriteString(" saving...\n")
	}

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + m.lastError))
		b.WriteString("\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(successStyle.Render("✓ " + m.statusMsg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderInput(b *strings.Builder) {
	b.WriteString(subtleStyle.Render("Describe what you spent, in your own words:"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+s parse · esc quit"))
	b.WriteString("\n")
}

func (m Model) renderReview(b *strings.Builder) {
	candidates := m.session.Candidates()
	if len(candidates) == 0 {
		b.WriteString(subtleStyle.Render("No expenses found in that text."))
		b.WriteString("\n")
	}

	for i, c := range candidates {
		line := fmt.Sprintf("%-24s %12s  %-14s %s",
			truncate(c.Item, 24),
			formatRupiah(c.Amount),
			truncate(c.CategoryLabel, 14),
			c.Date)

		marker := "  "
		switch {
		case i == m.cursor:
			line = selectedRowStyle.Render(line)
			marker = "> "
		case c.NeedsReview:
			line = warningStyle.Render(line)
		}
		b.WriteString(marker + line)

		if c.Confidence > 0 {
			b.WriteString(subtleStyle.Render(fmt.Sprintf("  %d%%", int(c.Confidence*100))))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("total %s across %d item(s)",
		formatRupiah(m.session.TotalAmount()), len(candidates))))
	b.WriteString("\n")

	if pending := m.session.PendingCategories(); len(pending) > 0 {
		b.WriteString(subtleStyle.Render("categories typed this session: " + strings.Join(pending, ", ")))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("edit %s: %s\n", m.editField.label(), m.editor.View()))
		b.WriteString(helpStyle.Render("enter next field · esc done"))
	} else {
		b.WriteString(helpStyle.Render("j/k move · enter edit · d delete · a add · c save all · esc discard · q quit"))
	}
	b.WriteString("\n")
}

// formatRupiah renders an amount with thousand dots, the local convention.
func formatRupiah(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	var out strings.Builder
	out.WriteString("Rp")
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
