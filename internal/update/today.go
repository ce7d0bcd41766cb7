package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/tasks"
	"github.com/sandeepkv93/iaa/internal/views"
)

func (m Model) handleTodayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	day := tasks.ForDate(m.Tasks, m.Date)
	switch msg.String() {
	case "up", "k":
		if m.TaskCursor > 0 {
			m.TaskCursor--
		}
	case "down", "j":
		if m.TaskCursor < len(day)-1 {
			m.TaskCursor++
		}
	case " ", "space", "x":
		if m.TaskCursor >= 0 && m.TaskCursor < len(day) {
			return m.toggle(day[m.TaskCursor].ID)
		}
	case "g":
		return m.generateFor(m.selectedGoalID())
	case "a":
		return m.openPalette("add "), nil
	case "h", "left":
		return m.shiftDate(-1)
	case "l", "right":
		return m.shiftDate(1)
	case "t":
		return m.setDate(m.svc.Today())
	}
	return m, nil
}

func (m Model) shiftDate(delta int) (Model, tea.Cmd) {
	next, err := dates.AddDays(m.Date, delta)
	if err != nil {
		m.Status = StatusBar{Text: describe(err), IsError: true}
		return m, nil
	}
	return m.setDate(next)
}

// setDate moves every date-scoped view to date and reloads the reflection for it.
func (m Model) setDate(date string) (Model, tea.Cmd) {
	if !dates.IsDateKey(date) {
		m.Status = StatusBar{Text: "invalid date, use YYYY-MM-DD", IsError: true}
		return m, nil
	}
	m.Date = date
	m.Month = monthOf(date)
	m.TaskCursor = 0
	m.Editing = false
	m.memoArea.Blur()
	return m, m.refreshCmd()
}

func (m Model) renderTodayView() string {
	day := tasks.ForDate(m.Tasks, m.Date)
	stats := tasks.Stats(m.Tasks, m.Date)
	rows := make([]views.TaskRowData, 0, len(day))
	for i, item := range day {
		rows = append(rows, views.TaskRowData{
			Text:      item.Text,
			Completed: item.Completed,
			Selected:  i == m.TaskCursor,
			GoalTitle: m.goalTitle(item.GoalID),
		})
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		Date:      m.Date,
		IsToday:   m.Date == m.svc.Today(),
		Items:     rows,
		Completed: stats.Completed,
		Total:     stats.Total,
		Percent:   stats.Percent(),
		Busy:      m.busyLine(opGenerate, "generating tasks..."),
	})
}
