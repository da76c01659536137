package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harulist/haru/internal/docstore"
	"github.com/harulist/haru/internal/logger"
	"github.com/harulist/haru/internal/model"
	"github.com/harulist/haru/internal/session"
	"github.com/harulist/haru/internal/store"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeEdit
	ModeConfirmDelete
	ModeHelp
)

// Indices into the add/edit input stack
const (
	inputTitle = iota
	inputContent
	inputDate
	inputCount
)

// Model is the main TUI model
type Model struct {
	store    *store.Store
	sessions *session.Tracker
	client   *docstore.Client

	todos      []model.Todo
	isFiltered bool

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	// Add/edit inputs: title, content, date
	inputs []textinput.Model
	focus  int
	editID string

	// Delete confirmation target
	deleteID string

	message string
}

// NewModel creates a new TUI model over an already-assembled store
func NewModel(st *store.Store, sessions *session.Tracker, client *docstore.Client) Model {
	logger.Info("Initializing TUI model")

	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 50
		inputs[i] = ti
	}
	inputs[inputTitle].Placeholder = "Title..."
	inputs[inputContent].Placeholder = "Notes (optional)..."
	inputs[inputDate].Placeholder = "YYYY-MM-DD"

	m := Model{
		store:    st,
		sessions: sessions,
		client:   client,
		mode:     ModeNormal,
		inputs:   inputs,
	}
	m.reload()

	logger.Debug("TUI model initialized", logger.F("todos", len(m.todos)))
	return m
}

// reload re-reads the rendered list from the store. Live-query deliveries
// land in the store asynchronously, so this also runs on every tick.
func (m *Model) reload() {
	snap := m.store.Snapshot()
	m.isFiltered = snap.IsFiltered
	m.todos = m.store.Visible()
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentTodo() *model.Todo {
	if m.cursor < len(m.todos) {
		return &m.todos[m.cursor]
	}
	return nil
}

// Init starts the refresh tick
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
