package generate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const dailyTasksSystemPrompt = `You are a coach who turns long-term goals into concrete daily actions.
Reply only with JSON of the form {"todos": ["...", "..."]} containing 3 to 5 tasks.
Each task must be specific, finishable within one day, and phrased as an action.`

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	cfg    Config
}

func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = def.ChatModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAIClient{client: openai.NewClientWithConfig(oc), cfg: cfg}, nil
}

func (c *OpenAIClient) GenerateTasks(ctx context.Context, in GoalContext) ([]string, error) {
	content, err := c.complete(ctx, c.cfg.Model, c.cfg.Temperature, c.cfg.MaxTokens, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: dailyTasksSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: dailyTasksPrompt(in)},
	})
	if err != nil {
		return nil, err
	}
	return ParseTaskList(content), nil
}

func dailyTasksPrompt(in GoalContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", in.Title)
	if in.TimeHorizonLabel != "" {
		fmt.Fprintf(&b, "Time horizon: %s\n", in.TimeHorizonLabel)
	}
	if in.RecentProgressSummary != "" {
		fmt.Fprintf(&b, "Recent progress:\n%s\n", in.RecentProgressSummary)
	}
	b.WriteString("\nSuggest the next tasks for one day toward this goal.")
	return b.String()
}

func (c *OpenAIClient) complete(ctx context.Context, model string, temperature float32, maxTokens int, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrRequest)
	}
	return resp.Choices[0].Message.Content, nil
}
