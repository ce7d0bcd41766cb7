package generate

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoAPIKey         = errors.New("generate: api key not configured")
	ErrRequest          = errors.New("generate: request failed")
	ErrNoTasksGenerated = errors.New("generate: no tasks generated")
)

// GoalContext is what the model sees about the goal a task batch is for.
type GoalContext struct {
	Title                 string
	TimeHorizonLabel      string
	RecentProgressSummary string
}

type Generator interface {
	GenerateTasks(ctx context.Context, in GoalContext) ([]string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	ChatModel   string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		ChatModel:   "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   1200,
	}
}
