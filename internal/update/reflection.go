package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/views"
)

func (m Model) handleReflectionKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "e", "enter":
		m.Editing = true
		m.memoArea.Focus()
		return m, nil
	case "h", "left":
		return m.shiftDate(-1)
	case "l", "right":
		return m.shiftDate(1)
	}
	return m, nil
}

func (m Model) handleReflectionEditingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.Editing = false
		m.memoArea.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.memoArea, cmd = m.memoArea.Update(msg)
	return m, cmd
}

func (m Model) renderReflectionView() string {
	saved := ""
	if !m.Reflection.UpdatedAt.IsZero() {
		saved = m.Reflection.UpdatedAt.Format("2006-01-02 15:04")
	}
	busy := m.busyLine(opSubmit, "planning tomorrow...")
	if busy == "" {
		busy = m.busyLine(opSave, "saving...")
	}
	restored := make([]views.TaskRowData, 0, len(m.SavedTodos))
	for _, item := range m.SavedTodos {
		restored = append(restored, views.TaskRowData{Text: item.Text, Completed: item.Completed})
	}
	return views.RenderReflectionPanel(views.ReflectionPanelData{
		Date:       m.Date,
		EditorView: m.memoArea.View(),
		Editing:    m.Editing,
		Todos:      m.dayTodos(),
		SavedTodos: restored,
		SavedAt:    saved,
		Busy:       busy,
	})
}
