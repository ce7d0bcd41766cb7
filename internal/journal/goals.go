package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/storage"
)

func (s *Service) CreateGoal(ctx context.Context, title string, duration model.GoalDuration) (model.Goal, error) {
	now := s.now()
	g, err := model.NewGoal(s.newID(), s.userID, title, duration, now)
	if err != nil {
		return model.Goal{}, err
	}
	if err := s.goals.CreateGoal(ctx, g); err != nil {
		return model.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.logger.Printf("journal: created goal %s %q (%s..%s)", g.ID, g.Title, g.StartDate, g.EndDate)
	return g, nil
}

// CreateGoalUntil creates a goal with an explicit end date instead of the duration default.
func (s *Service) CreateGoalUntil(ctx context.Context, title string, duration model.GoalDuration, endDate string) (model.Goal, error) {
	now := s.now()
	g, err := model.NewGoal(s.newID(), s.userID, title, duration, now)
	if err != nil {
		return model.Goal{}, err
	}
	if endDate != "" {
		g.EndDate = endDate
		if err := g.Validate(); err != nil {
			return model.Goal{}, err
		}
	}
	if err := s.goals.CreateGoal(ctx, g); err != nil {
		return model.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

type GoalEdit struct {
	Title    *string
	Duration *model.GoalDuration
}

// EditGoal changes title and duration. The end date is left as stored.
func (s *Service) EditGoal(ctx context.Context, id string, edit GoalEdit) (model.Goal, error) {
	g, err := s.GetGoal(ctx, id)
	if err != nil {
		return model.Goal{}, err
	}
	if edit.Title != nil {
		g.Title = strings.TrimSpace(*edit.Title)
	}
	if edit.Duration != nil {
		g.Duration = *edit.Duration
	}
	g.UpdatedAt = s.now()
	if err := g.Validate(); err != nil {
		return model.Goal{}, err
	}
	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return model.Goal{}, fmt.Errorf("update goal %s: %w", id, err)
	}
	if !g.DurationConsistent() {
		s.logger.Printf("journal: goal %s duration %s no longer matches end date %s", g.ID, g.Duration, g.EndDate)
	}
	return g, nil
}

func (s *Service) SetGoalStatus(ctx context.Context, id string, status model.GoalStatus) (model.Goal, error) {
	g, err := s.GetGoal(ctx, id)
	if err != nil {
		return model.Goal{}, err
	}
	g.Status = status
	g.UpdatedAt = s.now()
	if err := g.Validate(); err != nil {
		return model.Goal{}, err
	}
	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return model.Goal{}, fmt.Errorf("update goal %s: %w", id, err)
	}
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, id string) error {
	if _, err := s.GetGoal(ctx, id); err != nil {
		return err
	}
	if err := s.goals.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return nil
}

// GetGoal loads a goal owned by the service user. Other users' goals read as not found.
func (s *Service) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	g, err := s.goals.GetGoal(ctx, id)
	if err != nil {
		return model.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	if g.UserID != s.userID {
		return model.Goal{}, fmt.Errorf("get goal %s: %w", id, storage.ErrNotFound)
	}
	return g, nil
}

func (s *Service) ListGoals(ctx context.Context) ([]model.Goal, error) {
	return s.goals.ListGoals(ctx, storage.GoalListFilter{UserID: s.userID})
}

func (s *Service) ActiveGoals(ctx context.Context) ([]model.Goal, error) {
	return s.goals.ListGoals(ctx, storage.GoalListFilter{UserID: s.userID, Status: model.GoalStatusActive})
}

func (s *Service) GoalProgress(g model.Goal) (model.Progress, error) {
	return model.ComputeProgressKeys(g.StartDate, g.EndDate, dates.Today(s.now()))
}
