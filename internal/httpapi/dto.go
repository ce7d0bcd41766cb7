package httpapi

import (
	"time"

	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/model"
)

type createGoalRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Duration string `json:"duration" validate:"required"`
	EndDate  string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

type updateGoalRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Duration *string `json:"duration"`
	Status   *string `json:"status" validate:"omitempty,oneof=active completed paused"`
}

type taskRequest struct {
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Text      string `json:"text" validate:"required,max=500"`
	Completed *bool  `json:"completed"`
	GoalID    string `json:"goalId"`
}

type reflectionRequest struct {
	Memo  string   `json:"memo" validate:"max=5000"`
	Todos []string `json:"todos" validate:"max=50,dive,max=500"`
}

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1,dive"`
}

type acceptRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Duration string   `json:"duration" validate:"required"`
	Todos    []string `json:"todos" validate:"max=20"`
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
}

type progressResponse struct {
	TotalDays     int     `json:"totalDays"`
	ElapsedDays   int     `json:"elapsedDays"`
	RemainingDays int     `json:"remainingDays"`
	Percent       float64 `json:"percent"`
	Summary       string  `json:"summary"`
}

type goalResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Duration      string            `json:"duration"`
	DurationLabel string            `json:"durationLabel"`
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Progress      *progressResponse `json:"progress,omitempty"`
}

type statsResponse struct {
	Date      string  `json:"date"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

type tasksResponse struct {
	Tasks []model.TaskItem `json:"tasks"`
	Stats *statsResponse   `json:"stats,omitempty"`
}

type reflectionResponse struct {
	Date      string           `json:"date"`
	Memo      string           `json:"memo"`
	Todos     []string         `json:"todos"`
	Restored  []model.TaskItem `json:"restoredTasks,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt,omitzero"`
}

type submitResponse struct {
	Reflection reflectionResponse `json:"reflection"`
	NextDate   string             `json:"nextDate"`
	Generated  []model.TaskItem   `json:"generated"`
}

type acceptResponse struct {
	Goal  goalResponse     `json:"goal"`
	Tasks []model.TaskItem `json:"tasks"`
}

func toProgress(p model.Progress) *progressResponse {
	return &progressResponse{
		TotalDays:     p.TotalDays,
		ElapsedDays:   p.ElapsedDays,
		RemainingDays: p.RemainingDays,
		Percent:       p.Percent,
		Summary:       p.Summary(),
	}
}

func toGoal(g model.Goal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		Title:         g.Title,
		Duration:      string(g.Duration),
		DurationLabel: g.Duration.Label(),
		StartDate:     g.StartDate,
		EndDate:       g.EndDate,
		Status:        string(g.Status),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func toStats(s model.DayStats) *statsResponse {
	return &statsResponse{Date: s.Date, Completed: s.Completed, Total: s.Total, Percent: s.Percent()}
}

func toReflection(r model.Reflection) reflectionResponse {
	todos := r.Todos
	if todos == nil {
		todos = []string{}
	}
	return reflectionResponse{Date: r.Date, Memo: r.Memo, Todos: todos, UpdatedAt: r.UpdatedAt}
}

func toHistory(msgs []chatMessage) []generate.Message {
	out := make([]generate.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, generate.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func nonNilTasks(items []model.TaskItem) []model.TaskItem {
	if items == nil {
		return []model.TaskItem{}
	}
	return items
}
