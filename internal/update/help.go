package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/iaa/internal/views"
)

// hint is one key shown in the footer or the help panel.
type hint struct {
	keys  string
	label string
	short string
}

type hintKeyMap []key.Binding

func (h hintKeyMap) ShortHelp() []key.Binding  { return h }
func (h hintKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

func (m Model) globalHints() []hint {
	return []hint{
		{keys: m.Keys.Goals, label: "goals", short: "goals"},
		{keys: m.Keys.Today, label: "today's tasks", short: "today"},
		{keys: m.Keys.Calendar, label: "calendar", short: "cal"},
		{keys: m.Keys.Reflection, label: "daily reflection", short: "reflect"},
		{keys: m.Keys.Chat, label: "goal coach", short: "chat"},
		{keys: "/", label: "command palette", short: "cmd"},
		{keys: m.Keys.Help, label: "toggle help", short: "help"},
		{keys: m.Keys.Quit, label: "quit", short: "quit"},
	}
}

var viewHints = map[View][]hint{
	ViewGoals: {
		{keys: "j/k", label: "move selection"},
		{keys: "g", label: "generate today's tasks"},
		{keys: "p", label: "pause or resume"},
		{keys: "c", label: "mark completed"},
	},
	ViewToday: {
		{keys: "j/k", label: "move selection"},
		{keys: "space", label: "toggle done"},
		{keys: "a", label: "add a task"},
		{keys: "g", label: "generate tasks"},
		{keys: "h/l/t", label: "previous day, next day, today"},
	},
	ViewCalendar: {
		{keys: "h/l", label: "previous or next month"},
		{keys: "j/k", label: "next or previous day"},
		{keys: "enter", label: "open tasks"},
		{keys: "r", label: "open reflection"},
	},
	ViewReflection: {
		{keys: "e", label: "edit memo, esc to stop"},
		{keys: "ctrl+s", label: "save"},
		{keys: "ctrl+r", label: "submit and plan tomorrow"},
	},
	ViewChat: {
		{keys: "enter", label: "send, esc to leave the input"},
		{keys: "y/n", label: "accept or dismiss the proposal"},
		{keys: "x", label: "clear conversation"},
	},
}

func (m Model) footer() string {
	parts := make([]string, 0, 8)
	for _, h := range m.globalHints() {
		parts = append(parts, h.keys+" "+h.short)
	}
	return "keys: " + strings.Join(parts, " | ")
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	local := viewHints[m.CurrentView]
	lines := make([]string, 0, len(local))
	bindings := make(hintKeyMap, 0, len(local)+8)
	for _, h := range local {
		lines = append(lines, fmt.Sprintf("- %s: %s", h.keys, h.label))
		bindings = append(bindings, key.NewBinding(key.WithKeys(h.keys), key.WithHelp(h.keys, h.label)))
	}
	for _, h := range m.globalHints() {
		bindings = append(bindings, key.NewBinding(key.WithKeys(h.keys), key.WithHelp(h.keys, h.short)))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    lines,
		HelpView:    m.helpModel.View(bindings),
	})
}
