package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/commands"
	"github.com/sandeepkv93/iaa/internal/tasks"
)

func (m Model) openPalette(prefill string) Model {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	m.Status = StatusBar{}
	res, err := commands.Execute(cmd, commands.Handlers{
		Goal: func(a commands.GoalArgs) (commands.Result, error) {
			m, next = m.createGoal(a.Title, a.Duration)
			return commands.Result{Message: "creating goal..."}, nil
		},
		Add: func(a commands.AddArgs) (commands.Result, error) {
			m, next = m.addTask(a.Text)
			return commands.Result{Message: "adding task..."}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			day := tasks.ForDate(m.Tasks, m.Date)
			if a.Index > len(day) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task %d on %s", a.Index, m.Date)}
			}
			m.TaskCursor = a.Index - 1
			m, next = m.toggle(day[a.Index-1].ID)
			return commands.Result{Message: "updating task..."}, nil
		},
		Generate: func(a commands.GenerateArgs) (commands.Result, error) {
			goalID := m.selectedGoalID()
			if a.GoalIndex > 0 {
				if a.GoalIndex > len(m.Goals) {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no goal %d", a.GoalIndex)}
				}
				goalID = m.Goals[a.GoalIndex-1].Goal.ID
			}
			m, next = m.generateFor(goalID)
			return commands.Result{Message: "generating tasks..."}, nil
		},
		Reflect: func(a commands.ReflectArgs) (commands.Result, error) {
			m.memoArea.SetValue(a.Memo)
			m.CurrentView = ViewReflection
			m, next = m.submitReflection(a.Memo)
			return commands.Result{Message: "submitting reflection..."}, nil
		},
		Date: func(a commands.DateArgs) (commands.Result, error) {
			date, err := a.ResolveDate(m.svc.Today())
			if err != nil {
				return commands.Result{}, err
			}
			m, next = m.setDate(date)
			return commands.Result{Message: "showing " + date}, nil
		},
		Key: func(a commands.KeyArgs) (commands.Result, error) {
			m, next = m.setAPIKey(a.APIKey)
			return commands.Result{Message: "saving api key..."}, nil
		},
		Chat: func(a commands.ChatArgs) (commands.Result, error) {
			m.CurrentView = ViewChat
			m, next = m.sendChat(a.Message)
			return commands.Result{Message: "asking the coach..."}, nil
		},
		Status: func(a commands.StatusArgs) (commands.Result, error) {
			if a.GoalIndex > len(m.Goals) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no goal %d", a.GoalIndex)}
			}
			m, next = m.setGoalStatus(m.Goals[a.GoalIndex-1].Goal.ID, a.Status)
			return commands.Result{Message: "updating goal..."}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	if m.Status.Text == "" {
		m.Status = StatusBar{Text: res.Message}
	}
	return m, next
}
