package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Important = lipgloss.Color("#FFB347") // Orange star
	Completed = lipgloss.Color("#95E1A3") // Green
	Account   = lipgloss.Color("#95E1A3") // Green
	Guest     = lipgloss.Color("#6C757D") // Gray

	Primary   = lipgloss.Color("#4ECDC4")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Surface   = lipgloss.Color("#16213e")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	TodoItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TodoItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TodoDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	ImportantStyle = lipgloss.NewStyle().
			Foreground(Important).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	AccountBadgeStyle = lipgloss.NewStyle().Foreground(Account).Bold(true)
	GuestBadgeStyle   = lipgloss.NewStyle().Foreground(Guest)
)
