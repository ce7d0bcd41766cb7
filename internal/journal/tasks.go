package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/tasks"
)

func (s *Service) Tasks(ctx context.Context) ([]model.TaskItem, error) {
	items, err := s.tasks.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return items, nil
}

func (s *Service) TasksFor(ctx context.Context, date string) ([]model.TaskItem, error) {
	items, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.ForDate(items, date), nil
}

func (s *Service) DayStats(ctx context.Context, date string) (model.DayStats, error) {
	items, err := s.Tasks(ctx)
	if err != nil {
		return model.DayStats{}, err
	}
	return tasks.Stats(items, date), nil
}

// mutateTasks runs one serialized load, transform, save cycle.
func (s *Service) mutateTasks(ctx context.Context, fn func([]model.TaskItem) ([]model.TaskItem, error)) ([]model.TaskItem, error) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	items, err := s.tasks.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.SaveAll(ctx, next); err != nil {
		s.logger.Printf("journal: save tasks: %v", err)
		return nil, fmt.Errorf("save tasks: %w", err)
	}
	return next, nil
}

// SetTaskCompleted reconciles a (date, text, completed) candidate into the list.
// goalID only tags a newly created task.
func (s *Service) SetTaskCompleted(ctx context.Context, date, text, goalID string, completed bool) (model.TaskItem, error) {
	c, err := s.candidate(date, text, goalID)
	if err != nil {
		return model.TaskItem{}, err
	}
	c.Completed = completed
	items, err := s.mutateTasks(ctx, func(items []model.TaskItem) ([]model.TaskItem, error) {
		return tasks.Reconcile(items, c, s.newID), nil
	})
	if err != nil {
		return model.TaskItem{}, err
	}
	return items[tasks.IndexOf(items, c.Date, c.Text)], nil
}

func (s *Service) AddTask(ctx context.Context, date, text, goalID string) (model.TaskItem, error) {
	c, err := s.candidate(date, text, goalID)
	if err != nil {
		return model.TaskItem{}, err
	}
	items, err := s.mutateTasks(ctx, func(items []model.TaskItem) ([]model.TaskItem, error) {
		return tasks.Reconcile(items, c, s.newID), nil
	})
	if err != nil {
		return model.TaskItem{}, err
	}
	return items[tasks.IndexOf(items, c.Date, c.Text)], nil
}

func (s *Service) candidate(date, text, goalID string) (tasks.Candidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return tasks.Candidate{}, ErrEmptyTask
	}
	if date == "" {
		date = s.Today()
	}
	if !dates.IsDateKey(date) {
		return tasks.Candidate{}, fmt.Errorf("%w: %q", dates.ErrInvalidDateKey, date)
	}
	return tasks.Candidate{Date: date, Text: text, GoalID: goalID}, nil
}

func (s *Service) ToggleTask(ctx context.Context, id string) (model.TaskItem, error) {
	items, err := s.mutateTasks(ctx, func(items []model.TaskItem) ([]model.TaskItem, error) {
		next, ok := tasks.Toggle(items, id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return next, nil
	})
	if err != nil {
		return model.TaskItem{}, err
	}
	return items[tasks.IndexOfID(items, id)], nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	_, err := s.mutateTasks(ctx, func(items []model.TaskItem) ([]model.TaskItem, error) {
		next, ok := tasks.Remove(items, id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return next, nil
	})
	return err
}

// GenerateDailyTasks asks for today's tasks toward a goal and merges them into the list.
func (s *Service) GenerateDailyTasks(ctx context.Context, goalID string) ([]model.TaskItem, error) {
	done, err := s.begin(ActionGenerate)
	if err != nil {
		return nil, err
	}
	defer done()

	goal, err := s.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	ai, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	progress, err := s.GoalProgress(goal)
	if err != nil {
		return nil, err
	}
	items, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	summary := progress.Summary()
	if yesterday, err := dates.AddDays(today, -1); err == nil {
		summary += "\n" + DaySummary(tasks.ForDate(items, yesterday), "Yesterday")
	}

	texts, err := ai.GenerateTasks(ctx, generate.GoalContext{
		Title:                 goal.Title,
		TimeHorizonLabel:      goal.Duration.Label(),
		RecentProgressSummary: summary,
	})
	if err != nil {
		s.logger.Printf("journal: generate tasks for goal %s: %v", goal.ID, err)
		return nil, err
	}
	return s.mergeGenerated(ctx, today, goal.ID, texts)
}

func (s *Service) mergeGenerated(ctx context.Context, date, goalID string, texts []string) ([]model.TaskItem, error) {
	texts = tasks.Truncate(texts, tasks.MaxGeneratedTasks)
	if len(texts) == 0 {
		return nil, ErrNoTasksGenerated
	}
	candidates := tasks.Candidates(date, goalID, texts)
	items, err := s.mutateTasks(ctx, func(items []model.TaskItem) ([]model.TaskItem, error) {
		return tasks.ReconcileAll(items, candidates, s.newID), nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskItem, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, items[tasks.IndexOf(items, c.Date, c.Text)])
	}
	return out, nil
}

// DaySummary describes completion of one day's items for a prompt.
func DaySummary(items []model.TaskItem, label string) string {
	if len(items) == 0 {
		return label + ": no tasks."
	}
	done := make([]string, 0, len(items))
	open := make([]string, 0, len(items))
	for _, item := range items {
		if item.Completed {
			done = append(done, item.Text)
		} else {
			open = append(open, item.Text)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: completed %d of %d tasks (%.0f%%).", label, len(done), len(items), float64(len(done))/float64(len(items))*100)
	if len(done) > 0 {
		fmt.Fprintf(&b, "\nDone: %s", strings.Join(done, "; "))
	}
	if len(open) > 0 {
		fmt.Fprintf(&b, "\nNot done: %s", strings.Join(open, "; "))
	}
	return b.String()
}
