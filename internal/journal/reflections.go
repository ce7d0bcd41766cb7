package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/storage"
	"github.com/sandeepkv93/iaa/internal/tasks"
)

type SubmitResult struct {
	Reflection model.Reflection
	NextDate   string
	Generated  []model.TaskItem
}

// GetReflection returns the saved reflection for date, or an empty one.
func (s *Service) GetReflection(ctx context.Context, date string) (model.Reflection, error) {
	if !dates.IsDateKey(date) {
		return model.Reflection{}, fmt.Errorf("%w: %q", dates.ErrInvalidDateKey, date)
	}
	r, err := s.reflections.GetReflectionByDate(ctx, s.userID, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Reflection{UserID: s.userID, Date: date}, nil
		}
		return model.Reflection{}, fmt.Errorf("get reflection %s: %w", date, err)
	}
	return r, nil
}

// RestoreTodos turns the todos saved with r back into task items. They always come back incomplete.
func (s *Service) RestoreTodos(r model.Reflection) []model.TaskItem {
	return r.RestoredTasks(s.newID)
}

func (s *Service) ListReflections(ctx context.Context, from, to string) ([]model.Reflection, error) {
	return s.reflections.ListReflections(ctx, storage.ReflectionListFilter{UserID: s.userID, From: from, To: to})
}

// SaveReflection upserts the memo and todo texts for (user, date).
func (s *Service) SaveReflection(ctx context.Context, date, memo string, todos []string) (model.Reflection, error) {
	now := s.now()
	r := model.Reflection{
		ID:        s.newID(),
		UserID:    s.userID,
		Date:      date,
		Memo:      strings.TrimSpace(memo),
		Todos:     tasks.Truncate(todos, len(todos)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return model.Reflection{}, err
	}
	saved, err := s.reflections.UpsertReflection(ctx, r)
	if err != nil {
		s.logger.Printf("journal: save reflection %s: %v", date, err)
		return model.Reflection{}, fmt.Errorf("save reflection %s: %w", date, err)
	}
	return saved, nil
}

// SubmitReflection saves the reflection and plans the next day from it.
func (s *Service) SubmitReflection(ctx context.Context, date, memo string, todos []string) (SubmitResult, error) {
	if strings.TrimSpace(memo) == "" {
		return SubmitResult{}, ErrEmptyMemo
	}
	next, err := dates.Tomorrow(date)
	if err != nil {
		return SubmitResult{}, err
	}
	goals, err := s.ListGoals(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("list goals: %w", err)
	}
	if len(goals) == 0 {
		return SubmitResult{}, ErrNoGoals
	}
	if active := activeOnly(goals); len(active) > 0 {
		goals = active
	}
	ai, err := s.client(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	done, err := s.begin(ActionSubmitReflection)
	if err != nil {
		return SubmitResult{}, err
	}
	defer done()

	saved, err := s.SaveReflection(ctx, date, memo, todos)
	if err != nil {
		return SubmitResult{}, err
	}
	items, err := s.Tasks(ctx)
	if err != nil {
		return SubmitResult{}, err
	}

	texts, err := ai.GenerateTasks(ctx, generate.GoalContext{
		Title:                 goalsTitle(goals),
		TimeHorizonLabel:      "tomorrow (" + next + ")",
		RecentProgressSummary: s.reflectionSummary(goals, tasks.ForDate(items, date), saved),
	})
	if err != nil {
		s.logger.Printf("journal: generate tasks for %s: %v", next, err)
		return SubmitResult{Reflection: saved, NextDate: next}, err
	}
	goalID := ""
	if len(goals) == 1 {
		goalID = goals[0].ID
	}
	generated, err := s.mergeGenerated(ctx, next, goalID, texts)
	if err != nil {
		return SubmitResult{Reflection: saved, NextDate: next}, err
	}
	s.logger.Printf("journal: planned %d tasks for %s", len(generated), next)
	return SubmitResult{Reflection: saved, NextDate: next, Generated: generated}, nil
}

func activeOnly(goals []model.Goal) []model.Goal {
	out := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if g.IsActive() {
			out = append(out, g)
		}
	}
	return out
}

func goalsTitle(goals []model.Goal) string {
	if len(goals) == 0 {
		return "Make tomorrow a good day"
	}
	titles := make([]string, 0, len(goals))
	for _, g := range goals {
		titles = append(titles, g.Title)
	}
	return strings.Join(titles, "; ")
}

func (s *Service) reflectionSummary(goals []model.Goal, day []model.TaskItem, r model.Reflection) string {
	var b strings.Builder
	b.WriteString(DaySummary(day, "Today"))
	if len(goals) > 0 {
		b.WriteString("\nActive goals:")
		for _, g := range goals {
			line := fmt.Sprintf("\n- %s (%s)", g.Title, g.Duration.Label())
			if p, err := s.GoalProgress(g); err == nil {
				line += ", " + p.Summary()
			}
			b.WriteString(line)
		}
	}
	fmt.Fprintf(&b, "\nReflection memo:\n%s", r.Memo)
	return b.String()
}
