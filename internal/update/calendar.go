package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/tasks"
	"github.com/sandeepkv93/iaa/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		return m.shiftMonth(-1)
	case "l", "right":
		return m.shiftMonth(1)
	case "j", "down":
		return m.shiftDate(1)
	case "k", "up":
		return m.shiftDate(-1)
	case "enter":
		m.CurrentView = ViewToday
	case "r":
		m.CurrentView = ViewReflection
	}
	return m, nil
}

// shiftMonth keeps the day of month where possible and clamps to the month's last day.
func (m Model) shiftMonth(delta int) (Model, tea.Cmd) {
	target := m.Month.AddDate(0, delta, 0)
	day := 1
	if cur, err := dates.ParseDateKey(m.Date); err == nil {
		day = cur.Day()
	}
	last := target.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	next := target.AddDate(0, 0, day-1)
	return m.setDate(dates.ToDateKey(next))
}

func (m Model) renderCalendarView() string {
	counts := tasks.CountByDate(m.Tasks)
	today := m.svc.Today()
	grid := dates.MonthGrid(m.Month.Year(), m.Month.Month())
	days := make([]views.CalendarDayData, 0, len(grid))
	for _, g := range grid {
		st := counts[g.Key]
		days = append(days, views.CalendarDayData{
			Day:       g.Day,
			InMonth:   g.InMonth,
			Selected:  g.Key == m.Date,
			IsToday:   g.Key == today,
			Completed: st.Completed,
			Total:     st.Total,
		})
	}
	sel := counts[m.Date]
	return views.RenderCalendarPanel(views.CalendarPanelData{
		Month:        m.Month.Format("January 2006"),
		Days:         days,
		SelectedDate: m.Date,
		Completed:    sel.Completed,
		Total:        sel.Total,
	})
}
