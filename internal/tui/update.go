package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harulist/haru/internal/logger"
)

// opDoneMsg reports the outcome of a store operation run off the UI loop
type opDoneMsg struct {
	note string
	err  error
}

func opCmd(note string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return opDoneMsg{note: note, err: op(ctx)}
	}
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.reload()
		return m, tickCmd()

	case opDoneMsg:
		if msg.err != nil {
			logger.Error("Operation failed", logger.F("error", msg.err))
			m.message = "Error: " + msg.err.Error()
		} else {
			m.message = msg.note
		}
		m.reload()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeNormal:
			return m.updateNormal(msg)
		case ModeAdd, ModeEdit:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Add):
		m.openAdd()
		return m, nil

	case key.Matches(msg, keys.Edit):
		if todo := m.currentTodo(); todo != nil {
			m.openEdit(todo.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		if todo := m.currentTodo(); todo != nil {
			id := todo.ID
			return m, opCmd("", func(ctx context.Context) error {
				return m.store.ToggleCompleted(ctx, id)
			})
		}

	case key.Matches(msg, keys.Important):
		if todo := m.currentTodo(); todo != nil {
			id := todo.ID
			return m, opCmd("", func(ctx context.Context) error {
				return m.store.ToggleImportant(ctx, id)
			})
		}

	case key.Matches(msg, keys.Filter):
		if m.isFiltered {
			return m, opCmd("Showing all todos", m.store.ShowAll)
		}
		return m, opCmd("Showing important todos", m.store.ShowImportant)

	case key.Matches(msg, keys.Delete):
		if todo := m.currentTodo(); todo != nil {
			m.deleteID = todo.ID
			m.mode = ModeConfirmDelete
		}
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, opCmd("Refreshed", m.store.Fetch)

	case key.Matches(msg, keys.Logout):
		if m.sessions.Current() != nil {
			return m, opCmd("Logged out", m.sessions.Logout)
		}
		m.message = "Not logged in. Use 'haru auth login' from the shell."
		return m, nil

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil
	}

	return m, nil
}

// openAdd enters add mode, restoring any persisted compose draft
func (m *Model) openAdd() {
	snap := m.store.Snapshot()
	m.inputs[inputTitle].SetValue(snap.Title)
	m.inputs[inputContent].SetValue(snap.Content)
	date := snap.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	m.inputs[inputDate].SetValue(date)

	m.mode = ModeAdd
	m.setFocus(inputTitle)
	m.message = ""
}

func (m *Model) openEdit(id string) {
	var found bool
	for _, todo := range m.todos {
		if todo.ID == id {
			m.inputs[inputTitle].SetValue(todo.Title)
			m.inputs[inputContent].SetValue(todo.Content)
			m.inputs[inputDate].SetValue(todo.Date)
			found = true
			break
		}
	}
	if !found {
		return
	}

	m.editID = id
	m.store.SetEditingID(id)
	m.mode = ModeEdit
	m.setFocus(inputTitle)
	m.message = ""
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.closeInput(true)
		return m, nil

	case key.Matches(msg, keys.Tab):
		m.setFocus((m.focus + 1) % inputCount)
		return m, nil

	case key.Matches(msg, keys.Enter):
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	// Mirror the compose draft into the store so it survives a restart
	if m.mode == ModeAdd {
		switch m.focus {
		case inputTitle:
			m.store.SetTitle(m.inputs[inputTitle].Value())
		case inputContent:
			m.store.SetContent(m.inputs[inputContent].Value())
		case inputDate:
			m.store.SetDate(m.inputs[inputDate].Value())
		}
	}

	return m, cmd
}

func (m *Model) closeInput(cancelled bool) {
	if m.mode == ModeEdit {
		m.store.SetEditingID("")
	}
	if m.mode == ModeAdd && cancelled {
		// A cancelled compose keeps its draft for next time
	} else if m.mode == ModeAdd {
		m.store.SetTitle("")
		m.store.SetContent("")
		m.store.SetDate("")
	}

	m.mode = ModeNormal
	m.editID = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	title := m.inputs[inputTitle].Value()
	content := m.inputs[inputContent].Value()
	date := m.inputs[inputDate].Value()

	if title == "" {
		m.message = "Title is required"
		return m, nil
	}

	if m.mode == ModeEdit {
		id := m.editID
		m.closeInput(false)
		return m, opCmd("Updated \""+title+"\"", func(ctx context.Context) error {
			return m.store.Edit(ctx, id, title, content, date)
		})
	}

	m.closeInput(false)
	return m, opCmd("Added \""+title+"\"", func(ctx context.Context) error {
		_, err := m.store.Add(ctx, title, content, date)
		return err
	})
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.deleteID
		m.deleteID = ""
		m.mode = ModeNormal
		return m, opCmd("Deleted", func(ctx context.Context) error {
			return m.store.Delete(ctx, id)
		})
	default:
		m.deleteID = ""
		m.mode = ModeNormal
		m.message = "Cancelled"
		return m, nil
	}
}
