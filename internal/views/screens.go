package views

import (
	"fmt"
	"strings"
)

type GoalRowData struct {
	Title    string
	Duration string
	Status   string
	EndDate  string
	Percent  float64
	Summary  string
	Selected bool
}

type GoalsPanelData struct {
	Rows      []GoalRowData
	TableView string
}

type TaskRowData struct {
	Text      string
	Completed bool
	Selected  bool
	GoalTitle string
}

type TasksPanelData struct {
	Date      string
	IsToday   bool
	Items     []TaskRowData
	Completed int
	Total     int
	Percent   float64
	Busy      string
}

type CalendarDayData struct {
	Day       int
	InMonth   bool
	Selected  bool
	IsToday   bool
	Completed int
	Total     int
}

type CalendarPanelData struct {
	Month        string
	Days         []CalendarDayData
	SelectedDate string
	Completed    int
	Total        int
}

type ReflectionPanelData struct {
	Date       string
	EditorView string
	Editing    bool
	Todos      []string
	SavedTodos []TaskRowData
	SavedAt    string
	Busy       string
}

type ChatLineData struct {
	Role    string
	Content string
}

type ProposalData struct {
	Title     string
	Duration  string
	Reasoning string
	Todos     []string
}

type ChatPanelData struct {
	Lines     []ChatLineData
	InputView string
	Editing   bool
	Proposal  *ProposalData
	Busy      string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

type SidePanelData struct {
	ActiveGoal string
	Progress   string
	DayLine    string
	NextNudge  string
}

func RenderGoalsPanel(data GoalsPanelData) string {
	var b strings.Builder
	b.WriteString("goals:\n")
	b.WriteString("actions: [j/k]move [g]generate [p]pause/resume [c]complete [enter]open\n")
	if len(data.Rows) == 0 {
		b.WriteString("\n(no goals yet, try /goal 3months run a half marathon or the chat view)")
		return b.String()
	}
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
	}
	for _, row := range data.Rows {
		if !row.Selected {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s\n", selectedStyle.Render(row.Title)))
		b.WriteString(fmt.Sprintf("%s %s until %s (%s)\n", ProgressBar(row.Percent, 24), percentLabel(row.Percent), row.EndDate, row.Duration))
		b.WriteString(row.Summary)
	}
	return strings.TrimSpace(b.String())
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	label := data.Date
	if data.IsToday {
		label += " (today)"
	}
	b.WriteString(fmt.Sprintf("tasks: %s\n", label))
	b.WriteString("actions: [j/k]move [space]toggle [g]generate [h/l]day [t]today\n")
	b.WriteString(fmt.Sprintf("%s %d/%d %s\n", ProgressBar(data.Percent, 20), data.Completed, data.Total, percentLabel(data.Percent)))
	if data.Busy != "" {
		b.WriteString(data.Busy + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString("\n(no tasks for this day)")
		return b.String()
	}
	b.WriteString("\n")
	for _, item := range data.Items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		mark := "[ ]"
		text := item.Text
		if item.Completed {
			mark = "[x]"
			text = doneStyle.Render(text)
		}
		line := fmt.Sprintf("%s %s %s", cursor, mark, text)
		if item.GoalTitle != "" {
			line += dimStyle.Render("  · " + item.GoalTitle)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("calendar: %s\n", data.Month))
	b.WriteString("actions: [h/l]month [j/k]day [enter]tasks [r]reflection\n\n")
	b.WriteString(" Su   Mo   Tu   We   Th   Fr   Sa\n")
	for i, day := range data.Days {
		cell := fmt.Sprintf("%3d", day.Day)
		switch {
		case !day.InMonth:
			cell = dimStyle.Render(cell)
		case day.Selected:
			cell = selectedStyle.Render(cell)
		case day.IsToday:
			cell = todayStyle.Render(cell)
		}
		marker := " "
		if day.Total > 0 {
			marker = "·"
			if day.Completed == day.Total {
				marker = "✓"
			}
		}
		b.WriteString(cell + marker + " ")
		if i%7 == 6 {
			b.WriteString("\n")
		}
	}
	b.WriteString(fmt.Sprintf("\n%s: %d/%d done", data.SelectedDate, data.Completed, data.Total))
	return b.String()
}

func RenderReflectionPanel(data ReflectionPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("reflection: %s\n", data.Date))
	if data.Editing {
		b.WriteString("actions: [esc]stop editing [ctrl+s]save [ctrl+r]submit and plan tomorrow\n")
	} else {
		b.WriteString("actions: [e]edit [h/l]day [ctrl+s]save [ctrl+r]submit and plan tomorrow\n")
	}
	if data.Busy != "" {
		b.WriteString(data.Busy + "\n")
	}
	b.WriteString("\n" + data.EditorView + "\n")
	b.WriteString("\ntodos of the day:\n")
	if len(data.Todos) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, todo := range data.Todos {
		b.WriteString("- " + todo + "\n")
	}
	if len(data.SavedTodos) > 0 {
		b.WriteString("\nsaved with this reflection:\n")
		for _, item := range data.SavedTodos {
			mark := "[ ]"
			if item.Completed {
				mark = "[x]"
			}
			b.WriteString(mark + " " + item.Text + "\n")
		}
	}
	if data.SavedAt != "" {
		b.WriteString(dimStyle.Render("saved " + data.SavedAt))
	}
	return strings.TrimSpace(b.String())
}

func RenderChatPanel(data ChatPanelData) string {
	var b strings.Builder
	b.WriteString("goal coach:\n")
	if data.Editing {
		b.WriteString("actions: [enter]send [esc]stop typing\n")
	} else {
		b.WriteString("actions: [i]type [y]accept proposal [n]dismiss [x]clear\n")
	}
	if len(data.Lines) == 0 {
		b.WriteString("\nTell me what you want to achieve, for example \"I want to run a 10k\".\n")
	}
	for _, line := range data.Lines {
		who := "you"
		if line.Role != "user" {
			who = "coach"
		}
		b.WriteString(fmt.Sprintf("\n%s:\n%s\n", selectedStyle.Render(who), line.Content))
	}
	if data.Proposal != nil {
		p := data.Proposal
		b.WriteString(fmt.Sprintf("\nproposal: %s (%s)\n", p.Title, p.Duration))
		if p.Reasoning != "" {
			b.WriteString(p.Reasoning + "\n")
		}
		for i, todo := range p.Todos {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, todo))
		}
		b.WriteString("press [y] to create this goal\n")
	}
	if data.Busy != "" {
		b.WriteString("\n" + data.Busy + "\n")
	}
	b.WriteString("\n" + data.InputView)
	return strings.TrimSpace(b.String())
}

func RenderSidePanel(data SidePanelData) string {
	var b strings.Builder
	b.WriteString("overview:\n")
	if data.ActiveGoal == "" {
		b.WriteString("no active goal\n")
	} else {
		b.WriteString(data.ActiveGoal + "\n")
		b.WriteString(data.Progress + "\n")
	}
	if data.DayLine != "" {
		b.WriteString(data.DayLine + "\n")
	}
	if data.NextNudge != "" {
		b.WriteString("next reminder: " + data.NextNudge + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\ncommand: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp (%s):\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
