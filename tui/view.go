package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).Background(lipgloss.Color("#1F2937")).Padding(0, 1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3B82F6")).Padding(0, 1)
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#22C55E")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Background(lipgloss.Color("#FDE68A"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
)

const (
	colTitle       = 24
	colDescription = 36
	colStatus      = 12
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Task List Management Dashboard"))
	b.WriteString("\n\n")

	b.WriteString(m.label("Title", focusTitle))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n\n")
	b.WriteString(m.label("Description", focusDescription))
	b.WriteString("\n")
	b.WriteString(m.desc.View())
	b.WriteString("\n\n")
	b.WriteString(m.label("Status", focusStatus))
	b.WriteString("  ")
	b.WriteString(m.renderStatusSelector())
	b.WriteString("\n\n")

	b.WriteString(buttonStyle.Render(m.saveLabel()))
	// 过滤视图为空时不显示过滤选择器
	if len(m.snap.Visible) > 0 {
		b.WriteString("  ")
		b.WriteString(filterStyle.Render("Filter: " + m.snap.Filter.String()))
	}
	b.WriteString("\n\n")

	b.WriteString(m.label("Task Dashboard", focusTable))
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")

	if m.status.Text != "" {
		style := okStyle
		if m.status.IsError {
			style = errorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.status.Text))
	}
	if m.snap.PersistErr != nil && !m.status.IsError {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("warning: last save to storage failed; changes are kept in memory"))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) saveLabel() string {
	if m.snap.Editing.Active() {
		return "Update Task"
	}
	return "Add Task"
}

func (m Model) label(text string, f focus) string {
	if m.focus == f {
		return focusStyle.Render("> " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m Model) renderStatusSelector() string {
	parts := make([]string, 0, len(statusCycle))
	for _, s := range statusCycle {
		mark := "( )"
		if s == m.snap.Draft.Status {
			mark = "(•)"
		}
		parts = append(parts, fmt.Sprintf("%s %s", mark, s))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTable() string {
	if len(m.snap.Visible) == 0 {
		if len(m.snap.Tasks) > 0 {
			return mutedStyle.Render(fmt.Sprintf("No tasks match %s.", m.snap.Filter))
		}
		return mutedStyle.Render("No tasks available.")
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(row("#", "Title", "Description", "Status")))
	for i, e := range m.snap.Visible {
		b.WriteString("\n")
		line := row(fmt.Sprint(e.Position+1), e.Task.Title, e.Task.Description, e.Task.Status.String())
		if e.Task.ID == m.snap.Editing.ID {
			line += " *"
		}
		if m.focus == focusTable && i == m.row {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}

func row(pos, title, desc, status string) string {
	return fmt.Sprintf("%-3s %s %s %s",
		pos,
		cell(title, colTitle),
		cell(desc, colDescription),
		cell(status, colStatus),
	)
}

// cell 把多行文本压成一行并按显示宽度截断
func cell(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if lipgloss.Width(s) > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

func (m Model) helpLine() string {
	switch {
	case m.confirmClear:
		return "y confirm • any other key cancels"
	case m.focus == focusTable:
		return "↑/↓ move • e edit • d delete • f filter • C clear all • tab fields • q quit"
	case m.focus == focusStatus:
		return "←/→ or 0-3 choose status • ctrl+s save • tab next • esc cancel edit • ctrl+c quit"
	default:
		return "ctrl+s save • tab next field • esc cancel edit • ctrl+c quit"
	}
}
