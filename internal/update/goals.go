package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/views"
)

func (m Model) handleGoalsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.GoalCursor > 0 {
			m.GoalCursor--
		}
	case "down", "j":
		if m.GoalCursor < len(m.Goals)-1 {
			m.GoalCursor++
		}
	case "g":
		return m.generateFor(m.selectedGoalID())
	case "p":
		g, ok := m.currentGoal()
		if !ok {
			return m, nil
		}
		next := model.GoalStatusPaused
		if g.Status == model.GoalStatusPaused {
			next = model.GoalStatusActive
		}
		return m.setGoalStatus(g.ID, next)
	case "c":
		if g, ok := m.currentGoal(); ok {
			return m.setGoalStatus(g.ID, model.GoalStatusCompleted)
		}
	case "enter":
		if g, ok := m.currentGoal(); ok {
			m.CurrentView = ViewToday
			m.Status = StatusBar{Text: fmt.Sprintf("working on %q", g.Title)}
		}
	}
	return m, nil
}

func (m Model) currentGoal() (model.Goal, bool) {
	if m.GoalCursor < 0 || m.GoalCursor >= len(m.Goals) {
		return model.Goal{}, false
	}
	return m.Goals[m.GoalCursor].Goal, true
}

// selectedGoalID is the goal under the cursor, or the first active goal.
func (m Model) selectedGoalID() string {
	if g, ok := m.currentGoal(); ok && g.IsActive() {
		return g.ID
	}
	for _, row := range m.Goals {
		if row.Goal.IsActive() {
			return row.Goal.ID
		}
	}
	return ""
}

func (m Model) goalTitle(id string) string {
	for _, row := range m.Goals {
		if row.Goal.ID == id {
			return row.Goal.Title
		}
	}
	return ""
}

func (m *Model) syncGoalsTable() {
	rows := make([]table.Row, 0, len(m.Goals))
	for _, row := range m.Goals {
		rows = append(rows, table.Row{
			row.Goal.Title,
			row.Goal.Duration.Label(),
			string(row.Goal.Status),
			fmt.Sprintf("%.0f%%", row.Progress.Percent),
		})
	}
	m.goalsTable.SetRows(rows)
	if len(rows) > 0 {
		m.goalsTable.SetCursor(m.GoalCursor)
	}
}

func (m Model) renderGoalsView() string {
	rows := make([]views.GoalRowData, 0, len(m.Goals))
	for i, row := range m.Goals {
		rows = append(rows, views.GoalRowData{
			Title:    row.Goal.Title,
			Duration: row.Goal.Duration.Label(),
			Status:   string(row.Goal.Status),
			EndDate:  row.Goal.EndDate,
			Percent:  row.Progress.Percent,
			Summary:  row.Progress.Summary(),
			Selected: i == m.GoalCursor,
		})
	}
	return views.RenderGoalsPanel(views.GoalsPanelData{Rows: rows, TableView: m.goalsTable.View()})
}
