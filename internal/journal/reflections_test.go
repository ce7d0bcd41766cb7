package journal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/model"
)

func TestRestoreTodosComeBackIncomplete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.svc.SaveReflection(ctx, "2024-01-16", "long day", []string{"Run", "Call mom"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	r, err := f.svc.GetReflection(ctx, "2024-01-16")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	restored := f.svc.RestoreTodos(r)
	if len(restored) != 2 || restored[0].Text != "Run" || restored[1].Text != "Call mom" {
		t.Fatalf("unexpected restored todos: %#v", restored)
	}
	for _, item := range restored {
		if item.Completed || item.Date != "2024-01-16" || item.ID == "" {
			t.Fatalf("restored todo should be a fresh incomplete task: %#v", item)
		}
	}
	if restored[0].ID == restored[1].ID {
		t.Fatalf("restored todos share an id: %#v", restored)
	}
}

func TestSaveReflectionUpserts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	empty, err := f.svc.GetReflection(ctx, "2024-01-16")
	if err != nil || empty.Memo != "" || empty.Date != "2024-01-16" {
		t.Fatalf("expected empty reflection, got %#v, %v", empty, err)
	}
	first, err := f.svc.SaveReflection(ctx, "2024-01-16", "tired", []string{"Run", " "})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := f.svc.SaveReflection(ctx, "2024-01-16", "better", nil)
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if second.ID != first.ID || second.Memo != "better" {
		t.Fatalf("expected upsert, got %#v then %#v", first, second)
	}
	list, _ := f.svc.ListReflections(ctx, "", "")
	if len(list) != 1 {
		t.Fatalf("expected one reflection, got %d", len(list))
	}
	if len(first.Todos) != 1 {
		t.Fatalf("blank todos should be dropped: %#v", first.Todos)
	}
}

func TestSubmitReflectionPlansTomorrow(t *testing.T) {
	ai := &fakeAI{tasks: []string{"Plan week", "Call mentor", "Plan week"}}
	f := newFixture(t, ai)
	ctx := context.Background()
	g, _ := f.svc.CreateGoal(ctx, "Get promoted", model.Duration6Months)
	if _, err := f.svc.SetTaskCompleted(ctx, "2024-01-16", "Write design doc", "", true); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.svc.AddTask(ctx, "2024-01-16", "Review PRs", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.svc.SubmitReflection(ctx, "2024-01-16", "Good focus today", []string{"Write design doc"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.NextDate != "2024-01-17" {
		t.Fatalf("unexpected next date: %s", res.NextDate)
	}
	if len(res.Generated) != 3 || res.Generated[0].ID != res.Generated[2].ID {
		t.Fatalf("duplicate text should reconcile to one item: %#v", res.Generated)
	}
	if res.Generated[0].GoalID != g.ID {
		t.Fatalf("expected single active goal to be tagged: %#v", res.Generated[0])
	}
	tomorrow, _ := f.svc.TasksFor(ctx, "2024-01-17")
	if len(tomorrow) != 2 {
		t.Fatalf("expected 2 tasks tomorrow, got %#v", tomorrow)
	}
	summary := ai.requests[0].RecentProgressSummary
	for _, want := range []string{"completed 1 of 2", "Get promoted", "Good focus today"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary %q missing %q", summary, want)
		}
	}
	saved, _ := f.svc.GetReflection(ctx, "2024-01-16")
	if saved.Memo != "Good focus today" {
		t.Fatalf("reflection not saved: %#v", saved)
	}
}

func TestSubmitReflectionRejectsEmptyMemoAndNoGoals(t *testing.T) {
	f := newFixture(t, &fakeAI{tasks: []string{"x"}})
	ctx := context.Background()
	if _, err := f.svc.SubmitReflection(ctx, "2024-01-16", "  ", nil); !errors.Is(err, ErrEmptyMemo) {
		t.Fatalf("expected ErrEmptyMemo, got %v", err)
	}
	if _, err := f.svc.SubmitReflection(ctx, "2024-01-16", "memo", nil); !errors.Is(err, ErrNoGoals) {
		t.Fatalf("expected ErrNoGoals, got %v", err)
	}
}

func TestSubmitReflectionGatewayFailureKeepsSave(t *testing.T) {
	f := newFixture(t, &fakeAI{err: generate.ErrRequest})
	ctx := context.Background()
	if _, err := f.svc.CreateGoal(ctx, "Goal", model.Duration1Month); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.SubmitReflection(ctx, "2024-01-16", "memo", nil); !errors.Is(err, generate.ErrRequest) {
		t.Fatalf("expected ErrRequest, got %v", err)
	}
	saved, _ := f.svc.GetReflection(ctx, "2024-01-16")
	if saved.Memo != "memo" {
		t.Fatalf("reflection should be saved before generation: %#v", saved)
	}
}

func TestChatFallbackAndAcceptProposal(t *testing.T) {
	ai := &fakeAI{chatErr: generate.ErrRequest}
	f := newFixture(t, ai)
	ctx := context.Background()

	reply, err := f.svc.Chat(ctx, []generate.Message{{Role: generate.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("chat should not fail: %v", err)
	}
	if reply.Content != generate.FallbackReply || !reply.Fallback {
		t.Fatalf("expected fallback reply, got %#v", reply)
	}

	g, added, err := f.svc.AcceptProposal(ctx, generate.GoalProposal{
		Title:    "Lose 5kg",
		Duration: "1month",
		Todos:    []string{"Walk 30 minutes", "Soup for dinner"},
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if g.Duration != model.Duration1Month || len(added) != 2 || added[0].GoalID != g.ID || added[0].Date != "2024-01-16" {
		t.Fatalf("unexpected accepted proposal: %#v %#v", g, added)
	}
	if _, _, err := f.svc.AcceptProposal(ctx, generate.GoalProposal{Title: "x", Duration: "2weeks"}); !errors.Is(err, model.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}
