package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/tasks"
	"github.com/sandeepkv93/iaa/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd()}
	if m.scheduler != nil {
		cmds = append(cmds, waitForNudgeCmd(m.scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		return m, nil
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.busySpinner, cmd = m.busySpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case snapshotMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: describe(typed.Err), IsError: true}
			return m, nil
		}
		m.Goals = typed.Goals
		m.Tasks = typed.Tasks
		m.Reflection = typed.Reflection
		m.SavedTodos = typed.SavedTodos
		if !m.Editing {
			m.memoArea.SetValue(typed.Reflection.Memo)
		}
		m.clampCursors()
		return m, nil
	case opResultMsg:
		delete(m.pending, typed.Op)
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: describe(typed.Err), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
			return m, m.refreshCmd()
		}
		m.Status = StatusBar{Text: typed.Text}
		if typed.Op == opSubmit && typed.NextDate != "" {
			m.schedulePlanDay(typed.NextDate)
			m.CurrentView = ViewToday
			return m.setDate(typed.NextDate)
		}
		if typed.Op == opAccept {
			m.CurrentView = ViewToday
		}
		return m, m.refreshCmd()
	case chatReplyMsg:
		return m.applyChatReply(typed), nil
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m = m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, notifyLevel(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case NudgeMsg:
		m.applyNudge(typed.Event, m.now())
		if m.scheduler != nil {
			return m, waitForNudgeCmd(m.scheduler.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}
	switch key {
	case "ctrl+s":
		if m.CurrentView == ViewReflection {
			return m.saveReflection()
		}
	case "ctrl+r":
		if m.CurrentView == ViewReflection {
			return m.submitReflection(m.memoArea.Value())
		}
	}
	if m.Editing {
		switch m.CurrentView {
		case ViewReflection:
			return m.handleReflectionEditingKey(msg)
		case ViewChat:
			return m.handleChatEditingKey(msg)
		}
		m.Editing = false
	}

	switch key {
	case "/":
		return m.openPalette(""), nil
	case m.Keys.Goals:
		return m.switchView(ViewGoals), nil
	case m.Keys.Today:
		return m.switchView(ViewToday), nil
	case m.Keys.Calendar:
		return m.switchView(ViewCalendar), nil
	case m.Keys.Reflection:
		return m.switchView(ViewReflection), nil
	case m.Keys.Chat:
		return m.switchView(ViewChat), nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewGoals:
		return m.handleGoalsKey(msg)
	case ViewToday:
		return m.handleTodayKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg)
	case ViewReflection:
		return m.handleReflectionKey(msg)
	case ViewChat:
		return m.handleChatKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) Model {
	m.CurrentView = v
	m.Editing = false
	m.memoArea.Blur()
	m.chatInput.Blur()
	if v == ViewChat {
		m.Editing = true
		m.chatInput.Focus()
	}
	return m
}

func (m *Model) clampCursors() {
	day := len(tasks.ForDate(m.Tasks, m.Date))
	if m.TaskCursor >= day {
		m.TaskCursor = day - 1
	}
	if m.TaskCursor < 0 {
		m.TaskCursor = 0
	}
	if m.GoalCursor >= len(m.Goals) {
		m.GoalCursor = len(m.Goals) - 1
	}
	if m.GoalCursor < 0 {
		m.GoalCursor = 0
	}
}

func (m *Model) syncBubbleData() {
	m.syncGoalsTable()
	m.commandInput.SetValue(m.Palette.Input)
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	switch m.CurrentView {
	case ViewGoals:
		leftPane = m.renderGoalsView()
	case ViewToday:
		leftPane = m.renderTodayView()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
	case ViewReflection:
		leftPane = m.renderReflectionView()
	case ViewChat:
		leftPane = m.renderChatView()
	}
	rightPane := m.renderSidePanel() + m.renderCommandPalette() + m.renderHelpIfVisible()

	notificationView := strings.TrimSpace(m.renderNotificationsView())
	if m.busy() && m.CurrentView == ViewGoals {
		notificationView = strings.TrimSpace(notificationView + "\n" + m.busySpinner.View() + " working...")
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("iaa | view: %s | date: %s", m.CurrentView, m.Date),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		IsError:      m.Status.IsError,
		Notification: notificationView,
		Footer:       m.footer(),
		Width:        m.Width,
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewGoals, ViewToday, ViewCalendar, ViewReflection, ViewChat:
		return true
	default:
		return false
	}
}

// Busy reports whether a journal action of the given kind is outstanding.
func (m Model) Busy(a journal.Action) bool {
	switch a {
	case journal.ActionGenerate:
		return m.pending[opGenerate]
	case journal.ActionSubmitReflection:
		return m.pending[opSubmit]
	case journal.ActionChat:
		return m.pending[opChat]
	}
	return false
}
