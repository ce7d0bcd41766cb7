package tasks

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sandeepkv93/iaa/internal/model"
)

// MaxGeneratedTasks caps how many generated items are merged per request.
const MaxGeneratedTasks = 5

type IDFunc func() string

func NewID() string {
	return uuid.NewString()
}

// Candidate is a (date, text, completed) triple to merge into a task list.
type Candidate struct {
	Date      string
	Text      string
	Completed bool
	GoalID    string
}

// Reconcile returns a copy of existing with c merged by its (Date, Text) key.
// A matching item only has Completed replaced; otherwise a new item is appended.
func Reconcile(existing []model.TaskItem, c Candidate, newID IDFunc) []model.TaskItem {
	out := make([]model.TaskItem, len(existing), len(existing)+1)
	copy(out, existing)
	if i := IndexOf(out, c.Date, c.Text); i >= 0 {
		out[i].Completed = c.Completed
		return out
	}
	if newID == nil {
		newID = NewID
	}
	return append(out, model.TaskItem{
		ID:        newID(),
		Text:      c.Text,
		Completed: c.Completed,
		Date:      c.Date,
		GoalID:    c.GoalID,
	})
}

func ReconcileAll(existing []model.TaskItem, cs []Candidate, newID IDFunc) []model.TaskItem {
	out := append([]model.TaskItem(nil), existing...)
	for _, c := range cs {
		out = Reconcile(out, c, newID)
	}
	return out
}

func IndexOf(items []model.TaskItem, date, text string) int {
	for i, item := range items {
		if item.Matches(date, text) {
			return i
		}
	}
	return -1
}

func IndexOfID(items []model.TaskItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Toggle flips the completion of the item with id. The bool reports whether it was found.
func Toggle(items []model.TaskItem, id string) ([]model.TaskItem, bool) {
	i := IndexOfID(items, id)
	if i < 0 {
		return items, false
	}
	out := append([]model.TaskItem(nil), items...)
	out[i].Completed = !out[i].Completed
	return out, true
}

func Remove(items []model.TaskItem, id string) ([]model.TaskItem, bool) {
	i := IndexOfID(items, id)
	if i < 0 {
		return items, false
	}
	out := make([]model.TaskItem, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}

func ForDate(items []model.TaskItem, date string) []model.TaskItem {
	out := make([]model.TaskItem, 0)
	for _, item := range items {
		if item.Date == date {
			out = append(out, item)
		}
	}
	return out
}

func Stats(items []model.TaskItem, date string) model.DayStats {
	s := model.DayStats{Date: date}
	for _, item := range items {
		if item.Date != date {
			continue
		}
		s.Total++
		if item.Completed {
			s.Completed++
		}
	}
	return s
}

// CountByDate is used by the calendar to mark days with tasks.
func CountByDate(items []model.TaskItem) map[string]model.DayStats {
	out := make(map[string]model.DayStats)
	for _, item := range items {
		s := out[item.Date]
		s.Date = item.Date
		s.Total++
		if item.Completed {
			s.Completed++
		}
		out[item.Date] = s
	}
	return out
}

// Truncate trims texts, drops blanks and keeps at most max entries.
func Truncate(texts []string, max int) []string {
	out := make([]string, 0, min(len(texts), max))
	for _, text := range texts {
		if len(out) == max {
			break
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}

func Candidates(date, goalID string, texts []string) []Candidate {
	out := make([]Candidate, 0, len(texts))
	for _, text := range texts {
		out = append(out, Candidate{Date: date, Text: text, GoalID: goalID})
	}
	return out
}
