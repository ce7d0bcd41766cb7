package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/scheduler"
)

const planDayHour = 8

func (m *Model) applyNudge(ev scheduler.NudgeEvent, now time.Time) {
	m.NudgeLog = append(m.NudgeLog, ev)
	if len(m.NudgeLog) > 20 {
		m.NudgeLog = m.NudgeLog[len(m.NudgeLog)-20:]
	}
	switch ev.Kind {
	case scheduler.NudgeReflection:
		if ev.Date == m.Reflection.Date && strings.TrimSpace(m.Reflection.Memo) != "" {
			m.Status = StatusBar{Text: "reflection for today is already written"}
		} else {
			m.Status = StatusBar{Text: ev.Message + " (press 4)"}
			m.notify("Reflection", ev.Message, "info")
		}
		if m.nudger != nil {
			if _, err := m.nudger.ScheduleNext(now.Add(time.Second)); err != nil {
				m.Status = StatusBar{Text: fmt.Sprintf("reminder reschedule failed: %v", err), IsError: true}
			}
		}
	case scheduler.NudgePlanDay:
		m.Status = StatusBar{Text: ev.Message + " (press 2)"}
		m.notify("Plan", ev.Message, "info")
	default:
		m.Status = StatusBar{Text: fmt.Sprintf("reminder fired: %s", ev.ID)}
	}
	if m.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.notifier.Notify(ctx, ev); err != nil {
			m.notify("Push", err.Error(), "error")
		}
	}
}

// schedulePlanDay queues a morning reminder for the day tasks were just planned for.
func (m *Model) schedulePlanDay(date string) {
	if m.scheduler == nil {
		return
	}
	day, err := dates.ParseDateKey(date)
	if err != nil {
		return
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), planDayHour, 0, 0, 0, day.Location())
	if !at.After(m.now()) {
		return
	}
	id := "plan-" + date
	err = m.scheduler.Schedule(scheduler.NudgeEvent{
		ID:        id,
		Kind:      scheduler.NudgePlanDay,
		Date:      date,
		Message:   "Your tasks for today are ready.",
		TriggerAt: at,
	})
	if err != nil {
		m.notify("Reminder", err.Error(), "error")
	}
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

func notifyLevel(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
