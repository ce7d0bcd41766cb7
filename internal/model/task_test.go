package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestTaskItemValidate(t *testing.T) {
	item := TaskItem{ID: "t1", Text: "Stretch", Date: "2024-05-01"}
	if err := item.Validate(); err != nil {
		t.Fatalf("expected valid item: %v", err)
	}
	item.Date = "05/01/2024"
	if err := item.Validate(); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}
}

func TestTaskItemState(t *testing.T) {
	item := TaskItem{ID: "t1", Text: "Stretch", Date: "2024-05-01"}
	if item.State() != TaskStatePending {
		t.Fatalf("expected pending, got %s", item.State())
	}
	item.Completed = true
	if item.State() != TaskStateCompleted {
		t.Fatalf("expected completed, got %s", item.State())
	}
}

func TestDayStatsPercent(t *testing.T) {
	if got := (DayStats{}).Percent(); got != 0 {
		t.Fatalf("expected 0 for empty day, got %f", got)
	}
	if got := (DayStats{Completed: 1, Total: 4}).Percent(); got != 25 {
		t.Fatalf("expected 25, got %f", got)
	}
}

func TestReflectionRestoredTasksAreIncomplete(t *testing.T) {
	n := 0
	r := Reflection{Date: "2024-05-01", Todos: []string{"Plan week", "  ", "Call mentor"}}
	restored := r.RestoredTasks(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	if len(restored) != 2 {
		t.Fatalf("expected 2 restored tasks, got %#v", restored)
	}
	for _, item := range restored {
		if item.Completed || item.Date != "2024-05-01" {
			t.Fatalf("unexpected restored task: %#v", item)
		}
	}
}
