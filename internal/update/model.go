package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/scheduler"
)

type View string

const (
	ViewGoals      View = "Goals"
	ViewToday      View = "Today"
	ViewCalendar   View = "Calendar"
	ViewReflection View = "Reflection"
	ViewChat       View = "Chat"
)

// Journal is the part of journal.Service the terminal UI drives.
type Journal interface {
	Today() string
	ListGoals(ctx context.Context) ([]model.Goal, error)
	GoalProgress(g model.Goal) (model.Progress, error)
	CreateGoal(ctx context.Context, title string, duration model.GoalDuration) (model.Goal, error)
	SetGoalStatus(ctx context.Context, id string, status model.GoalStatus) (model.Goal, error)
	Tasks(ctx context.Context) ([]model.TaskItem, error)
	AddTask(ctx context.Context, date, text, goalID string) (model.TaskItem, error)
	ToggleTask(ctx context.Context, id string) (model.TaskItem, error)
	GenerateDailyTasks(ctx context.Context, goalID string) ([]model.TaskItem, error)
	GetReflection(ctx context.Context, date string) (model.Reflection, error)
	RestoreTodos(r model.Reflection) []model.TaskItem
	SaveReflection(ctx context.Context, date, memo string, todos []string) (model.Reflection, error)
	SubmitReflection(ctx context.Context, date, memo string, todos []string) (journal.SubmitResult, error)
	Chat(ctx context.Context, history []generate.Message) (generate.ChatReply, error)
	AcceptProposal(ctx context.Context, p generate.GoalProposal) (model.Goal, []model.TaskItem, error)
	SetAPIKey(ctx context.Context, key string) error
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Goals      string
	Today      string
	Calendar   string
	Reflection string
	Chat       string
	Help       string
	Quit       string
}

type GoalRow struct {
	Goal     model.Goal
	Progress model.Progress
}

type ChatState struct {
	History  []generate.Message
	Proposal *generate.GoalProposal
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Options struct {
	Scheduler *scheduler.Engine
	Nudger    *scheduler.Nudger
	// Notifier also receives nudges, e.g. a push notifier.
	Notifier scheduler.Notifier
	Timeout  time.Duration
	Now      func() time.Time
}

type Model struct {
	CurrentView View
	Date        string
	Month       time.Time
	Goals       []GoalRow
	GoalCursor  int
	Tasks       []model.TaskItem
	TaskCursor  int
	Reflection  model.Reflection
	SavedTodos  []model.TaskItem
	Chat        ChatState
	Palette     CommandPaletteState
	HelpVisible bool
	Editing     bool
	Width       int

	Notifications []Notification
	NudgeLog      []scheduler.NudgeEvent
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	svc       Journal
	scheduler *scheduler.Engine
	nudger    *scheduler.Nudger
	notifier  scheduler.Notifier
	timeout   time.Duration
	now       func() time.Time
	pending   map[string]bool

	goalsTable   table.Model
	memoArea     textarea.Model
	chatInput    textinput.Model
	commandInput textinput.Model
	busySpinner  spinner.Model
	helpModel    help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type NudgeMsg struct {
	Event scheduler.NudgeEvent
}

// snapshotMsg carries everything the views render, loaded in one pass.
type snapshotMsg struct {
	Goals      []GoalRow
	Tasks      []model.TaskItem
	Reflection model.Reflection
	SavedTodos []model.TaskItem
	Err        error
}

type opResultMsg struct {
	Op       string
	Text     string
	Err      error
	NextDate string
}

type chatReplyMsg struct {
	Reply generate.ChatReply
	Err   error
}

const (
	opGenerate = "generate"
	opSubmit   = "submit"
	opChat     = "chat"
	opSave     = "save"
	opToggle   = "toggle"
	opAdd      = "add"
	opGoal     = "goal"
	opAccept   = "accept"
	opKey      = "key"
)

func NewModel(svc Journal, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	today := svc.Today()
	m := Model{
		CurrentView: ViewToday,
		Date:        today,
		svc:         svc,
		scheduler:   opts.Scheduler,
		nudger:      opts.Nudger,
		notifier:    opts.Notifier,
		timeout:     timeout,
		now:         now,
		pending:     make(map[string]bool),
		Keys: GlobalKeyMap{
			Goals:      "1",
			Today:      "2",
			Calendar:   "3",
			Reflection: "4",
			Chat:       "5",
			Help:       "?",
			Quit:       "q",
		},
	}
	m.Month = monthOf(today)
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Goal", Width: 26},
		{Title: "Span", Width: 9},
		{Title: "Status", Width: 9},
		{Title: "Done", Width: 6},
	}
	m.goalsTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.memoArea = textarea.New()
	m.memoArea.SetWidth(58)
	m.memoArea.SetHeight(8)
	m.memoArea.ShowLineNumbers = false
	m.memoArea.Placeholder = "How did today go? What got in the way?"
	m.memoArea.Cursor.SetMode(cursor.CursorStatic)

	m.chatInput = textinput.New()
	m.chatInput.Prompt = "> "
	m.chatInput.CharLimit = 500
	m.chatInput.Width = 56
	m.chatInput.Placeholder = "I want to..."
	m.chatInput.Cursor.SetMode(cursor.CursorStatic)

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48
	m.commandInput.Cursor.SetMode(cursor.CursorStatic)

	m.busySpinner = spinner.New()
	m.busySpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}
