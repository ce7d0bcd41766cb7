package views

import (
	"strings"
	"testing"
)

func TestProgressBarClamps(t *testing.T) {
	if got := ProgressBar(50, 10); got != "[#####-----]" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := ProgressBar(-5, 4); got != "[----]" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := ProgressBar(150, 4); got != "[####]" {
		t.Fatalf("unexpected bar %q", got)
	}
}

func TestRenderTasksPanel(t *testing.T) {
	out := RenderTasksPanel(TasksPanelData{
		Date:    "2024-01-16",
		IsToday: true,
		Items: []TaskRowData{
			{Text: "stretch", Selected: true},
			{Text: "run 5k", Completed: true, GoalTitle: "Run a 10k"},
		},
		Completed: 1,
		Total:     2,
		Percent:   50,
	})
	for _, want := range []string{"2024-01-16 (today)", "1/2", "> [ ] stretch", "[x]", "Run a 10k"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	empty := RenderTasksPanel(TasksPanelData{Date: "2024-01-17"})
	if !strings.Contains(empty, "no tasks for this day") {
		t.Fatalf("expected empty hint, got:\n%s", empty)
	}
}

func TestRenderCalendarPanelHasSixWeeks(t *testing.T) {
	days := make([]CalendarDayData, 42)
	for i := range days {
		days[i] = CalendarDayData{Day: i%31 + 1, InMonth: true}
	}
	days[3].Total, days[3].Completed = 2, 2
	out := RenderCalendarPanel(CalendarPanelData{Month: "January 2024", Days: days, SelectedDate: "2024-01-04", Completed: 2, Total: 2})
	if !strings.Contains(out, "January 2024") || !strings.Contains(out, "✓") {
		t.Fatalf("unexpected calendar:\n%s", out)
	}
	if !strings.Contains(out, "2024-01-04: 2/2 done") {
		t.Fatalf("missing day summary:\n%s", out)
	}
}

func TestRenderChatPanelProposal(t *testing.T) {
	out := RenderChatPanel(ChatPanelData{
		Lines:    []ChatLineData{{Role: "user", Content: "I want to read more"}},
		Proposal: &ProposalData{Title: "Read 12 books", Duration: "1 year", Todos: []string{"pick a book"}},
	})
	for _, want := range []string{"you:", "proposal: Read 12 books (1 year)", "1. pick a book", "[y]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownFallsBackOnEmpty(t *testing.T) {
	if got := RenderMarkdown("   ", 40); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := RenderMarkdown("**focus** on sleep", 40); !strings.Contains(got, "focus") {
		t.Fatalf("expected rendered text, got %q", got)
	}
}

func TestPaneWidthsStackOnNarrowTerminals(t *testing.T) {
	if _, _, stacked := paneWidths(0); stacked {
		t.Fatal("unknown width should use the side-by-side layout")
	}
	main, side, stacked := paneWidths(140)
	if stacked || side != sideWidth || main <= side {
		t.Fatalf("unexpected wide layout: main=%d side=%d stacked=%v", main, side, stacked)
	}
	if main, side, stacked := paneWidths(60); !stacked || main != side {
		t.Fatalf("unexpected narrow layout: main=%d side=%d stacked=%v", main, side, stacked)
	}
}

func TestRenderAppOmitsEmptySections(t *testing.T) {
	out := RenderApp(AppData{Header: "iaa | view: Today", LeftPane: "left", RightPane: "right", Width: 60})
	if !strings.Contains(out, "iaa | view: Today") || !strings.Contains(out, "left") || !strings.Contains(out, "right") {
		t.Fatalf("unexpected layout:\n%s", out)
	}
	if strings.Contains(out, "keys:") {
		t.Fatalf("footer should be omitted:\n%s", out)
	}
}
