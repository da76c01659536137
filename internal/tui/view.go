package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harulist/haru/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	list := m.renderList()
	statusBar := m.renderStatusBar()

	main := lipgloss.JoinVertical(lipgloss.Left, header, list)

	if m.mode == ModeAdd || m.mode == ModeEdit {
		main = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderInputModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeConfirmDelete {
		main = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderConfirmModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		main = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("Haru")

	badge := GuestBadgeStyle.Render("guest · this device only")
	if m.sessions.Loading() {
		badge = GuestBadgeStyle.Render("checking session...")
	} else if user := m.sessions.Current(); user != nil {
		badge = AccountBadgeStyle.Render("● " + user.Email)
	}

	view := ""
	if m.isFiltered {
		view = ImportantStyle.Render("  ★ important only")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge, view)
}

func (m Model) renderList() string {
	width := m.width - 4
	if width < 36 {
		width = 36
	}
	var s string

	pending := 0
	for _, todo := range m.todos {
		if !todo.Completed {
			pending++
		}
	}
	s += HelpStyle.Render(fmt.Sprintf("%d todos, %d pending", len(m.todos), pending)) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width-4)) + "\n\n"

	if len(m.todos) == 0 {
		if m.isFiltered {
			s += HelpStyle.Render("  Nothing important. Press 'f' to show all todos.")
		} else {
			s += HelpStyle.Render("  No todos. Press 'a' to add one.")
		}
	}

	for i, todo := range m.todos {
		cursor := "  "
		style := TodoItemStyle
		if i == m.cursor {
			cursor = "❯ "
			style = TodoItemSelectedStyle
		}

		icon := "[ ]"
		if todo.Completed {
			icon = "[x]"
			style = TodoDoneStyle
		}

		star := "  "
		if todo.IsImportant {
			star = ImportantStyle.Render("★ ")
		}

		title := truncate(todo.Title, width-30)
		content := todo.Content
		if content == model.NonBreakingSpace {
			content = ""
		}
		content = truncate(content, 20)

		line := style.Render(fmt.Sprintf("%s%s %s%-*s", cursor, icon, star, width-30, title))
		meta := HelpStyle.Render(fmt.Sprintf("%s  %s", todo.Date, content))
		s += line + " " + meta + "\n"
	}

	return ListStyle.Width(m.width).Height(m.height - 4).Render(s)
}

func (m Model) renderInputModal() string {
	title := "New todo"
	if m.mode == ModeEdit {
		title = "Edit todo"
	}

	labels := []string{"Title", "Notes", "Date"}
	var s string
	s += HeaderStyle.Render(title) + "\n\n"
	for i, input := range m.inputs {
		label := labels[i]
		if i == m.focus {
			label = ImportantStyle.Render(label)
		} else {
			label = HelpStyle.Render(label)
		}
		s += label + "\n" + input.View() + "\n\n"
	}
	s += HelpStyle.Render("tab next field · enter save · esc cancel")

	return ModalStyle.Render(s)
}

func (m Model) renderConfirmModal() string {
	title := ""
	for _, todo := range m.todos {
		if todo.ID == m.deleteID {
			title = todo.Title
			break
		}
	}

	s := HeaderStyle.Render("Delete todo") + "\n\n"
	s += fmt.Sprintf("Delete \"%s\"?\n\n", truncate(title, 40))
	s += HelpStyle.Render("y confirm · any other key cancel")
	return ModalStyle.Render(s)
}

func (m Model) renderHelp() string {
	rows := []struct{ key, desc string }{
		{"↑/k, ↓/j", "move"},
		{"a", "add todo"},
		{"e", "edit todo"},
		{"x / enter", "toggle done"},
		{"i", "toggle important"},
		{"f", "important only / all"},
		{"d", "delete"},
		{"r", "refresh from server"},
		{"L", "log out"},
		{"?", "close help"},
		{"q", "quit"},
	}

	var s string
	s += HeaderStyle.Render("Keys") + "\n\n"
	for _, row := range rows {
		s += fmt.Sprintf("  %-12s %s\n", ImportantStyle.Render(row.key), row.desc)
	}

	return ListStyle.Width(m.width).Height(m.height - 2).Render(s)
}

func (m Model) renderStatusBar() string {
	left := "a add · x done · i important · f filter · d delete · ? help · q quit"
	if m.message != "" {
		left = m.message
	}
	return StatusBarStyle.Width(m.width).Render(left)
}
