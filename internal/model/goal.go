package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/iaa/internal/dates"
)

var (
	ErrInvalidDuration = errors.New("model: invalid goal duration")
	ErrInvalidStatus   = errors.New("model: invalid goal status")
	ErrInvalidRange    = errors.New("model: goal end date must be after start date")
	ErrGoalIDRequired  = errors.New("model: goal id is required")
	ErrTitleRequired   = errors.New("model: goal title is required")
)

type GoalDuration string

const (
	Duration1Month  GoalDuration = "1month"
	Duration3Months GoalDuration = "3months"
	Duration6Months GoalDuration = "6months"
	Duration1Year   GoalDuration = "1year"
)

func (d GoalDuration) IsValid() bool {
	switch d {
	case Duration1Month, Duration3Months, Duration6Months, Duration1Year:
		return true
	default:
		return false
	}
}

func (d GoalDuration) Label() string {
	switch d {
	case Duration1Month:
		return "1 month"
	case Duration3Months:
		return "3 months"
	case Duration6Months:
		return "6 months"
	case Duration1Year:
		return "1 year"
	default:
		return string(d)
	}
}

// ParseGoalDuration accepts the canonical values plus spaced and month-count spellings.
func ParseGoalDuration(s string) (GoalDuration, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch norm {
	case "1month", "1months", "1m":
		return Duration1Month, nil
	case "3months", "3month", "3m":
		return Duration3Months, nil
	case "6months", "6month", "6m":
		return Duration6Months, nil
	case "1year", "1years", "12months", "1y":
		return Duration1Year, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
}

// EndDateFor advances start by the duration using calendar month arithmetic.
func EndDateFor(start time.Time, d GoalDuration) (time.Time, error) {
	switch d {
	case Duration1Month:
		return start.AddDate(0, 1, 0), nil
	case Duration3Months:
		return start.AddDate(0, 3, 0), nil
	case Duration6Months:
		return start.AddDate(0, 6, 0), nil
	case Duration1Year:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDuration, d)
	}
}

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusPaused:
		return true
	default:
		return false
	}
}

// Goal dates are date keys (YYYY-MM-DD).
type Goal struct {
	ID        string
	UserID    string
	Title     string
	Duration  GoalDuration
	StartDate string
	EndDate   string
	Status    GoalStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGoal builds an active goal starting on the calendar day of start.
func NewGoal(id, userID, title string, duration GoalDuration, start time.Time) (Goal, error) {
	day, err := dates.ParseDateKey(dates.ToDateKey(start))
	if err != nil {
		return Goal{}, err
	}
	end, err := EndDateFor(day, duration)
	if err != nil {
		return Goal{}, err
	}
	g := Goal{
		ID:        id,
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Duration:  duration,
		StartDate: dates.ToDateKey(day),
		EndDate:   dates.ToDateKey(end),
		Status:    GoalStatusActive,
		CreatedAt: start,
		UpdatedAt: start,
	}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	return g, nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrGoalIDRequired
	}
	if strings.TrimSpace(g.Title) == "" {
		return ErrTitleRequired
	}
	if !g.Duration.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDuration, g.Duration)
	}
	if !g.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, g.Status)
	}
	start, err := dates.ParseDateKey(g.StartDate)
	if err != nil {
		return fmt.Errorf("model: goal start date: %w", err)
	}
	end, err := dates.ParseDateKey(g.EndDate)
	if err != nil {
		return fmt.Errorf("model: goal end date: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: %s..%s", ErrInvalidRange, g.StartDate, g.EndDate)
	}
	return nil
}

func (g Goal) IsActive() bool {
	return g.Status == GoalStatusActive
}

// DurationConsistent reports whether EndDate still matches StartDate plus Duration.
// Editing the duration does not move the end date.
func (g Goal) DurationConsistent() bool {
	start, err := dates.ParseDateKey(g.StartDate)
	if err != nil {
		return false
	}
	end, err := EndDateFor(start, g.Duration)
	if err != nil {
		return false
	}
	return dates.ToDateKey(end) == g.EndDate
}

func (g Goal) Progress(today time.Time) (Progress, error) {
	return ComputeProgressKeys(g.StartDate, g.EndDate, dates.ToDateKey(today))
}
