package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/scheduler"
	"github.com/sandeepkv93/iaa/internal/tasks"
)

func (m Model) refreshCmd() tea.Cmd {
	svc, date, timeout := m.svc, m.Date, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		goals, err := svc.ListGoals(ctx)
		if err != nil {
			return snapshotMsg{Err: fmt.Errorf("load goals: %w", err)}
		}
		rows := make([]GoalRow, 0, len(goals))
		for _, g := range goals {
			p, _ := svc.GoalProgress(g)
			rows = append(rows, GoalRow{Goal: g, Progress: p})
		}
		items, err := svc.Tasks(ctx)
		if err != nil {
			return snapshotMsg{Err: fmt.Errorf("load tasks: %w", err)}
		}
		r, err := svc.GetReflection(ctx, date)
		if err != nil {
			return snapshotMsg{Err: fmt.Errorf("load reflection: %w", err)}
		}
		return snapshotMsg{Goals: rows, Tasks: items, Reflection: r, SavedTodos: svc.RestoreTodos(r)}
	}
}

// start runs fn off the update loop. A second start of the same op while one is outstanding is ignored.
func (m Model) start(op string, fn func(ctx context.Context) opResultMsg) (Model, tea.Cmd) {
	if m.pending[op] {
		m.Status = StatusBar{Text: fmt.Sprintf("%s is already running", op), IsError: false}
		return m, nil
	}
	m.pending[op] = true
	timeout := m.timeout
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res := fn(ctx)
		res.Op = op
		return res
	}
	return m, tea.Batch(m.busySpinner.Tick, run)
}

func (m Model) busy() bool {
	for _, v := range m.pending {
		if v {
			return true
		}
	}
	return false
}

func (m Model) busyLine(op, label string) string {
	if !m.pending[op] {
		return ""
	}
	return m.busySpinner.View() + " " + label
}

func (m Model) generateFor(goalID string) (Model, tea.Cmd) {
	if goalID == "" {
		m.Status = StatusBar{Text: "create a goal first (/goal or the chat view)", IsError: true}
		return m, nil
	}
	svc := m.svc
	return m.start(opGenerate, func(ctx context.Context) opResultMsg {
		items, err := svc.GenerateDailyTasks(ctx, goalID)
		if err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{Text: fmt.Sprintf("added %d tasks for today", len(items))}
	})
}

func (m Model) toggle(id string) (Model, tea.Cmd) {
	svc := m.svc
	return m.start(opToggle, func(ctx context.Context) opResultMsg {
		item, err := svc.ToggleTask(ctx, id)
		if err != nil {
			return opResultMsg{Err: err}
		}
		state := "reopened"
		if item.Completed {
			state = "done"
		}
		return opResultMsg{Text: fmt.Sprintf("%s: %s", state, item.Text)}
	})
}

func (m Model) addTask(text string) (Model, tea.Cmd) {
	svc, date, goalID := m.svc, m.Date, m.selectedGoalID()
	return m.start(opAdd, func(ctx context.Context) opResultMsg {
		item, err := svc.AddTask(ctx, date, text, goalID)
		if err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{Text: fmt.Sprintf("added task for %s: %s", item.Date, item.Text)}
	})
}

func (m Model) createGoal(title string, duration model.GoalDuration) (Model, tea.Cmd) {
	svc := m.svc
	return m.start(opGoal, func(ctx context.Context) opResultMsg {
		g, err := svc.CreateGoal(ctx, title, duration)
		if err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{Text: fmt.Sprintf("goal created: %s (%s..%s)", g.Title, g.StartDate, g.EndDate)}
	})
}

func (m Model) setGoalStatus(id string, status model.GoalStatus) (Model, tea.Cmd) {
	svc := m.svc
	return m.start(opGoal, func(ctx context.Context) opResultMsg {
		g, err := svc.SetGoalStatus(ctx, id, status)
		if err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{Text: fmt.Sprintf("goal %q is now %s", g.Title, g.Status)}
	})
}

func (m Model) dayTodos() []string {
	day := tasks.ForDate(m.Tasks, m.Date)
	out := make([]string, 0, len(day))
	for _, item := range day {
		out = append(out, item.Text)
	}
	return out
}

func (m Model) saveReflection() (Model, tea.Cmd) {
	svc, date, memo, todos := m.svc, m.Date, m.memoArea.Value(), m.dayTodos()
	return m.start(opSave, func(ctx context.Context) opResultMsg {
		if _, err := svc.SaveReflection(ctx, date, memo, todos); err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{Text: "reflection saved for " + date}
	})
}

func (m Model) submitReflection(memo string) (Model, tea.Cmd) {
	svc, date, todos := m.svc, m.Date, m.dayTodos()
	return m.start(opSubmit, func(ctx context.Context) opResultMsg {
		res, err := svc.SubmitReflection(ctx, date, memo, todos)
		if err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{
			Text:     fmt.Sprintf("planned %d tasks for %s", len(res.Generated), res.NextDate),
			NextDate: res.NextDate,
		}
	})
}

func (m Model) sendChat(text string) (Model, tea.Cmd) {
	if m.pending[opChat] {
		return m, nil
	}
	m.Chat.History = append(m.Chat.History, generate.Message{Role: generate.RoleUser, Content: text})
	m.Chat.Proposal = nil
	m.pending[opChat] = true
	svc, timeout := m.svc, m.timeout
	history := append([]generate.Message(nil), m.Chat.History...)
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := svc.Chat(ctx, history)
		return chatReplyMsg{Reply: reply, Err: err}
	}
	return m, tea.Batch(m.busySpinner.Tick, run)
}

func (m Model) acceptProposal() (Model, tea.Cmd) {
	if m.Chat.Proposal == nil {
		m.Status = StatusBar{Text: "no proposal to accept", IsError: true}
		return m, nil
	}
	p := *m.Chat.Proposal
	svc := m.svc
	m.Chat.Proposal = nil
	return m.start(opAccept, func(ctx context.Context) opResultMsg {
		g, added, err := svc.AcceptProposal(ctx, p)
		if err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{Text: fmt.Sprintf("goal %q created with %d tasks for today", g.Title, len(added))}
	})
}

func (m Model) setAPIKey(key string) (Model, tea.Cmd) {
	svc := m.svc
	return m.start(opKey, func(ctx context.Context) opResultMsg {
		if err := svc.SetAPIKey(ctx, key); err != nil {
			return opResultMsg{Err: err}
		}
		return opResultMsg{Text: "api key saved"}
	})
}

// describe turns service errors into status lines a user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, journal.ErrAPIKeyMissing):
		return "OpenAI API key is not set, use /key <api-key>"
	case errors.Is(err, journal.ErrBusy):
		return "still working on the previous request"
	case errors.Is(err, journal.ErrNoGoals):
		return "create a goal first (/goal or the chat view)"
	case errors.Is(err, journal.ErrEmptyMemo):
		return "write a few words about today first"
	case errors.Is(err, journal.ErrNoTasksGenerated):
		return "the assistant returned no usable tasks, try again"
	case errors.Is(err, generate.ErrRequest), errors.Is(err, context.DeadlineExceeded):
		return "the assistant could not be reached, try again later"
	case errors.Is(err, dates.ErrInvalidDateKey):
		return "invalid date, use YYYY-MM-DD"
	default:
		return err.Error()
	}
}

func waitForNudgeCmd(ch <-chan scheduler.NudgeEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return NudgeMsg{Event: ev}
	}
}

func monthOf(key string) time.Time {
	t, err := dates.ParseDateKey(key)
	if err != nil {
		t = time.Now()
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}
