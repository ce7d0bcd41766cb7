package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/iaa/internal/dates"
)

var ErrInvalidTask = errors.New("model: invalid task item")

type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateCompleted TaskState = "completed"
)

// TaskItem is one entry of the flat per-user task list. (Date, Text) identifies it.
type TaskItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
	GoalID    string `json:"goalId,omitempty"`
}

func (t TaskItem) State() TaskState {
	if t.Completed {
		return TaskStateCompleted
	}
	return TaskStatePending
}

func (t TaskItem) Matches(date, text string) bool {
	return t.Date == date && t.Text == text
}

func (t TaskItem) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTask)
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidTask)
	}
	if !dates.IsDateKey(t.Date) {
		return fmt.Errorf("%w: date %q", ErrInvalidTask, t.Date)
	}
	return nil
}

type DayStats struct {
	Date      string
	Completed int
	Total     int
}

func (s DayStats) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}
