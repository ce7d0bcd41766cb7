package update

import (
	"fmt"

	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/tasks"
	"github.com/sandeepkv93/iaa/internal/views"
)

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) renderSidePanel() string {
	data := views.SidePanelData{}
	for _, row := range m.Goals {
		if !row.Goal.IsActive() {
			continue
		}
		data.ActiveGoal = row.Goal.Title
		data.Progress = fmt.Sprintf("%s %s", views.ProgressBar(row.Progress.Percent, 20), row.Progress.Summary())
		break
	}
	data.DayLine = journal.DaySummary(tasks.ForDate(m.Tasks, m.Date), m.Date)
	if m.nudger != nil {
		if ev := m.nudger.Next(); !ev.TriggerAt.IsZero() {
			data.NextNudge = ev.TriggerAt.Format("Mon 15:04")
		}
	}
	return views.RenderSidePanel(data)
}
