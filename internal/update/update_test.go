package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/scheduler"
	"github.com/sandeepkv93/iaa/internal/storage"
)

type scriptedAI struct {
	tasks []string
	err   error
	reply generate.ChatReply
}

func (a *scriptedAI) GenerateTasks(context.Context, generate.GoalContext) ([]string, error) {
	return a.tasks, a.err
}

func (a *scriptedAI) Chat(context.Context, []generate.Message) (generate.ChatReply, error) {
	return a.reply, nil
}

var fixedNow = time.Date(2024, 1, 16, 20, 30, 0, 0, time.Local)

func newTestJournal(t *testing.T, ai journal.AI) *journal.Service {
	t.Helper()
	repo := storage.NewKVRepository(storage.NewMemoryKV())
	n := 0
	deps := journal.Deps{
		Goals:       repo,
		Reflections: repo,
		Tasks:       storage.NewMemoryTaskStore(),
		Settings:    storage.NewMemoryKV(),
		UserID:      "local",
		Now:         func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
	if ai != nil {
		deps.AI = ai
	}
	svc, err := journal.New(deps)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	return svc
}

func newTestModel(t *testing.T, ai journal.AI) (Model, *journal.Service) {
	t.Helper()
	svc := newTestJournal(t, ai)
	m := NewModel(svc, Options{Now: func() time.Time { return fixedNow }, Timeout: 5 * time.Second})
	return settle(t, m, m.Init()), svc
}

// settle runs cmd and feeds resulting messages back into the model until nothing is left.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := expand(cmd)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("message loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		updated, next := m.Update(msg)
		m = updated.(Model)
		queue = append(queue, expand(next)...)
	}
	return m
}

func expand(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch typed := msg.(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range typed {
			out = append(out, expand(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, cmd := m.Update(msg)
		m = settle(t, updated.(Model), cmd)
	}
	return m
}

func palette(t *testing.T, m Model, line string) Model {
	t.Helper()
	return press(t, m, "/", line, "enter")
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.CurrentView != ViewToday {
		t.Fatalf("expected default view %q, got %q", ViewToday, m.CurrentView)
	}
	if m.Date != "2024-01-16" {
		t.Fatalf("expected today's date, got %q", m.Date)
	}
	if m.Keys.Quit != "q" || m.Keys.Chat != "5" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
}

func TestKeysSwitchViews(t *testing.T) {
	m, _ := newTestModel(t, nil)
	for key, want := range map[string]View{"1": ViewGoals, "3": ViewCalendar, "4": ViewReflection, "2": ViewToday} {
		m = press(t, m, key)
		if m.CurrentView != want {
			t.Fatalf("key %s: expected %q, got %q", key, want, m.CurrentView)
		}
	}
	m = press(t, m, "5")
	if m.CurrentView != ViewChat || !m.Editing {
		t.Fatalf("expected chat view with input focused, got %q editing=%v", m.CurrentView, m.Editing)
	}
	m = press(t, m, "esc", "1")
	if m.CurrentView != ViewGoals {
		t.Fatalf("expected goals view after leaving chat input, got %q", m.CurrentView)
	}
}

func TestPaletteCreatesGoalAndAddsTask(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = palette(t, m, "goal 3months run a half marathon")
	if len(m.Goals) != 1 || m.Goals[0].Goal.Title != "run a half marathon" {
		t.Fatalf("goal not created: %+v", m.Goals)
	}
	if !strings.Contains(m.Status.Text, "goal created") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m = palette(t, m, "add stretch 10 minutes")
	if len(m.Tasks) != 1 || m.Tasks[0].Date != "2024-01-16" || m.Tasks[0].GoalID != m.Goals[0].Goal.ID {
		t.Fatalf("task not added for today: %+v", m.Tasks)
	}

	m = palette(t, m, "done 1")
	if !m.Tasks[0].Completed {
		t.Fatalf("expected task completed: %+v", m.Tasks)
	}
	m = palette(t, m, "done 4")
	if !m.Status.IsError {
		t.Fatalf("expected error for missing task, got %+v", m.Status)
	}
}

func TestPaletteRejectsUnknownCommand(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = palette(t, m, "snooze overdue")
	if !m.Status.IsError || m.Palette.Active {
		t.Fatalf("expected closed palette with error, got %+v active=%v", m.Status, m.Palette.Active)
	}
}

func TestSpaceTogglesSelectedTask(t *testing.T) {
	m, svc := newTestModel(t, nil)
	for _, text := range []string{"a", "b"} {
		if _, err := svc.AddTask(t.Context(), "2024-01-16", text, ""); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	m = settle(t, m, m.refreshCmd())
	m = press(t, m, "j", "space")
	if m.Tasks[0].Completed || !m.Tasks[1].Completed {
		t.Fatalf("expected second task toggled: %+v", m.Tasks)
	}
	if !strings.Contains(m.View(), "1/2") {
		t.Fatalf("expected completion counter in view:\n%s", m.View())
	}
}

func TestGenerateWithoutAPIKeyShowsHint(t *testing.T) {
	m, svc := newTestModel(t, nil)
	if _, err := svc.CreateGoal(t.Context(), "Read more", model.Duration1Month); err != nil {
		t.Fatalf("goal: %v", err)
	}
	m = settle(t, m, m.refreshCmd())
	m = press(t, m, "g")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "/key") {
		t.Fatalf("expected api key hint, got %+v", m.Status)
	}
	if !errors.Is(m.LastError, journal.ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", m.LastError)
	}
}

func TestGenerateMergesTasks(t *testing.T) {
	ai := &scriptedAI{tasks: []string{"walk", "read 10 pages", "walk"}}
	m, svc := newTestModel(t, ai)
	if _, err := svc.CreateGoal(t.Context(), "Feel better", model.Duration1Month); err != nil {
		t.Fatalf("goal: %v", err)
	}
	m = settle(t, m, m.refreshCmd())
	m = press(t, m, "g")
	if len(m.Tasks) != 2 {
		t.Fatalf("expected 2 unique tasks, got %+v", m.Tasks)
	}
	if m.pending[opGenerate] {
		t.Fatal("generate should no longer be pending")
	}
}

func TestDuplicateSubmissionIgnoredWhilePending(t *testing.T) {
	m, _ := newTestModel(t, &scriptedAI{tasks: []string{"x"}})
	m.Goals = []GoalRow{{Goal: model.Goal{ID: "g1", Status: model.GoalStatusActive}}}
	first, cmd := m.generateFor("g1")
	if cmd == nil || !first.Busy(journal.ActionGenerate) {
		t.Fatal("expected generate to start")
	}
	second, cmd := first.generateFor("g1")
	if cmd != nil {
		t.Fatal("expected second generate to be ignored")
	}
	if !strings.Contains(second.Status.Text, "already running") {
		t.Fatalf("unexpected status: %+v", second.Status)
	}
}

func TestReflectionSubmitPlansTomorrow(t *testing.T) {
	ai := &scriptedAI{tasks: []string{"rest day", "prepare shoes"}}
	engine := scheduler.NewEngine(4)
	svc := newTestJournal(t, ai)
	if _, err := svc.CreateGoal(t.Context(), "Run a 10k", model.Duration3Months); err != nil {
		t.Fatalf("goal: %v", err)
	}
	m := NewModel(svc, Options{Scheduler: engine, Now: func() time.Time { return fixedNow }})
	m = settle(t, m, m.refreshCmd())

	m = press(t, m, "4", "e", "legs were tired", "esc", "ctrl+r")
	if m.CurrentView != ViewToday || m.Date != "2024-01-17" {
		t.Fatalf("expected to land on tomorrow, got %q %q", m.CurrentView, m.Date)
	}
	if len(m.Tasks) != 2 || m.Tasks[0].Date != "2024-01-17" {
		t.Fatalf("expected tomorrow's tasks, got %+v", m.Tasks)
	}
	r, err := svc.GetReflection(t.Context(), "2024-01-16")
	if err != nil || r.Memo != "legs were tired" {
		t.Fatalf("reflection not saved: %+v %v", r, err)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected a plan-day reminder, got %d pending", engine.Pending())
	}
}

func TestReflectionShowsSavedTodos(t *testing.T) {
	svc := newTestJournal(t, nil)
	if _, err := svc.SaveReflection(t.Context(), "2024-01-16", "ok", []string{"run", "stretch"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	m := NewModel(svc, Options{Now: func() time.Time { return fixedNow }, Timeout: 5 * time.Second})
	m = settle(t, m, m.Init())
	if len(m.SavedTodos) != 2 {
		t.Fatalf("expected saved todos to load, got %+v", m.SavedTodos)
	}
	for _, item := range m.SavedTodos {
		if item.Completed {
			t.Fatalf("saved todo restored as completed: %+v", item)
		}
	}
	m = press(t, m, "4")
	if view := m.View(); !strings.Contains(view, "[ ] run") || !strings.Contains(view, "[ ] stretch") {
		t.Fatalf("expected saved todos in reflection view:\n%s", view)
	}
}

func TestReflectionSaveKeepsDate(t *testing.T) {
	m, svc := newTestModel(t, nil)
	m = press(t, m, "4", "e", "quiet day", "ctrl+s")
	if m.Date != "2024-01-16" || m.Status.IsError {
		t.Fatalf("unexpected state after save: %q %+v", m.Date, m.Status)
	}
	r, err := svc.GetReflection(t.Context(), "2024-01-16")
	if err != nil || r.Memo != "quiet day" {
		t.Fatalf("reflection not saved: %+v %v", r, err)
	}
}

func TestChatProposalAccept(t *testing.T) {
	ai := &scriptedAI{reply: generate.ChatReply{
		Content:  "Here is a plan",
		Proposal: &generate.GoalProposal{Title: "Learn piano", Duration: "6months", Todos: []string{"book a first lesson"}},
	}}
	m, _ := newTestModel(t, ai)
	m = press(t, m, "5", "I want to learn piano", "enter")
	if len(m.Chat.History) != 2 || m.Chat.Proposal == nil {
		t.Fatalf("unexpected chat state: %+v", m.Chat)
	}
	m = press(t, m, "esc", "y")
	if len(m.Goals) != 1 || m.Goals[0].Goal.Duration != model.Duration6Months {
		t.Fatalf("proposal not accepted: %+v", m.Goals)
	}
	if len(m.Tasks) != 1 || m.Tasks[0].Text != "book a first lesson" || m.CurrentView != ViewToday {
		t.Fatalf("expected todo for today, got %+v in %q", m.Tasks, m.CurrentView)
	}
}

func TestCalendarMonthNavigation(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = palette(t, m, "date 2024-01-31")
	m = press(t, m, "3", "l")
	if m.Date != "2024-02-29" || m.Month.Month() != time.February {
		t.Fatalf("expected clamp to Feb 29, got %q %v", m.Date, m.Month)
	}
	m = press(t, m, "h", "h")
	if m.Date != "2023-12-29" {
		t.Fatalf("expected 2023-12-29, got %q", m.Date)
	}
	if !strings.Contains(m.View(), "December 2023") {
		t.Fatalf("expected month title in view:\n%s", m.View())
	}
}

func TestNudgeShowsStatusAndReschedules(t *testing.T) {
	engine := scheduler.NewEngine(4)
	nudger, err := scheduler.NewNudger(engine, "0 21 * * *")
	if err != nil {
		t.Fatalf("nudger: %v", err)
	}
	firedAt := time.Date(2024, 1, 16, 21, 0, 0, 0, time.Local)
	svc := newTestJournal(t, nil)
	m := NewModel(svc, Options{Scheduler: engine, Nudger: nudger, Now: func() time.Time { return firedAt }})
	ev := scheduler.NudgeEvent{ID: "reflection-nudge", Kind: scheduler.NudgeReflection, Date: "2024-01-16", Message: "Time to reflect", TriggerAt: firedAt}
	updated, _ := m.Update(NudgeMsg{Event: ev})
	m = updated.(Model)
	if !strings.Contains(m.Status.Text, "Time to reflect") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if got := nudger.Next().TriggerAt; !got.Equal(time.Date(2024, 1, 17, 21, 0, 0, 0, time.Local)) {
		t.Fatalf("expected next nudge tomorrow 21:00, got %v", got)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t, nil)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t, nil)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}
	updated, _ = next.Update(ClearStatusMsg{})
	if updated.(Model).Status.Text != "" {
		t.Fatal("expected cleared status")
	}
}

func TestWindowSizeStacksPanes(t *testing.T) {
	m, _ := newTestModel(t, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 70, Height: 40})
	m = updated.(Model)
	if m.Width != 70 {
		t.Fatalf("expected width 70, got %d", m.Width)
	}
	if !strings.Contains(m.View(), "iaa | view: Today | date: 2024-01-16") {
		t.Fatalf("unexpected header:\n%s", m.View())
	}
}
