package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// FallbackReply is shown in place of an assistant message when the chat call fails.
const FallbackReply = "Sorry, something went wrong while talking to the assistant. Please try again."

const (
	chatMaxTokens       = 1500
	todoListTemperature = 0.3
)

const goalChatSystemPrompt = `You are a goal-setting coach. Help the user turn a wish into a specific,
measurable goal with a time frame and a first week of concrete actions.

Recognize durations the user already gave ("in 1 month", "3 months", "within a year").
Only ask for a duration when none was given. Allowed durations: 1month, 3months, 6months, 1year.

Reply with JSON in one of these shapes:
1. Duration unknown:
{"content": "<question asking when they want to reach it>", "needsDurationClarification": true}
2. Goal and duration are clear, a todo list is needed:
{"content": "<short confirmation>", "needsTodoList": true}
3. Everything is known:
{"shouldCreateGoal": true, "goalData": {"title": "...", "duration": "1month", "reasoning": "...", "todos": ["..."]}}

If the user's message already contains a duration, use shape 2.`

const todoListSystemPrompt = `Create a concrete todo list for the first week of the goal %q (%s).
Rules:
- exactly 5 tasks
- each task is a specific action a beginner can do without further planning
- mix different areas (exercise, food, learning, chores, hobbies) where it fits
- avoid vague items such as "exercise more" or "eat healthier"
Reply only with JSON: {"todos": ["...", "...", "...", "...", "..."]}`

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type GoalProposal struct {
	Title     string   `json:"title"`
	Duration  string   `json:"duration"`
	Reasoning string   `json:"reasoning"`
	Todos     []string `json:"todos"`
}

type ChatReply struct {
	Content       string        `json:"content"`
	NeedsDuration bool          `json:"needsDuration"`
	NeedsTodoList bool          `json:"needsTodoList"`
	Proposal      *GoalProposal `json:"proposal,omitempty"`
	Fallback      bool          `json:"fallback,omitempty"`
}

type chatPayload struct {
	Content                    string        `json:"content"`
	NeedsDurationClarification bool          `json:"needsDurationClarification"`
	NeedsTodoList              bool          `json:"needsTodoList"`
	ShouldCreateGoal           bool          `json:"shouldCreateGoal"`
	GoalData                   *GoalProposal `json:"goalData"`
}

// Chat runs one goal-setting turn. On transport failure the reply carries
// FallbackReply and the error is returned alongside it.
func (c *OpenAIClient) Chat(ctx context.Context, history []Message) (ChatReply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: goalChatSystemPrompt})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	content, err := c.complete(ctx, c.cfg.ChatModel, c.cfg.Temperature, chatMaxTokens, messages)
	if err != nil {
		return ChatReply{Content: FallbackReply, Fallback: true}, err
	}
	reply := ParseChatReply(content)
	if !reply.NeedsTodoList {
		return reply, nil
	}

	title, duration, ok := ExtractGoalInfo(history)
	if !ok {
		return reply, nil
	}
	todos, err := c.TodoList(ctx, title, duration, history)
	if err != nil {
		return reply, err
	}
	reply.Proposal = &GoalProposal{
		Title:     title,
		Duration:  duration,
		Reasoning: fmt.Sprintf("A %s plan to reach: %s", durationLabel(duration), title),
		Todos:     todos,
	}
	reply.Content = FormatProposal(*reply.Proposal)
	return reply, nil
}

// TodoList asks for a first-week plan for a goal.
func (c *OpenAIClient) TodoList(ctx context.Context, title, duration string, history []Message) ([]string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(todoListSystemPrompt, title, durationLabel(duration)),
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	content, err := c.complete(ctx, c.cfg.Model, todoListTemperature, c.cfg.MaxTokens, messages)
	if err != nil {
		return nil, err
	}
	return ParseTaskList(content), nil
}

// ParseChatReply interprets a structured reply; anything else is plain content.
func ParseChatReply(content string) ChatReply {
	content = strings.TrimSpace(content)
	if content == "" {
		return ChatReply{Content: "Sorry, I could not come up with a reply."}
	}
	raw := content
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		raw = m[1]
	}
	var p chatPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ChatReply{Content: content}
	}
	switch {
	case p.NeedsDurationClarification:
		return ChatReply{Content: p.Content, NeedsDuration: true}
	case p.NeedsTodoList:
		return ChatReply{Content: p.Content, NeedsTodoList: true}
	case p.ShouldCreateGoal && p.GoalData != nil:
		proposal := *p.GoalData
		proposal.Todos = cleanAll(proposal.Todos)
		return ChatReply{Content: FormatProposal(proposal), Proposal: &proposal}
	case p.Content != "":
		return ChatReply{Content: p.Content}
	default:
		return ChatReply{Content: content}
	}
}

// FormatProposal renders a proposal as markdown for the chat transcript.
func FormatProposal(p GoalProposal) string {
	var b strings.Builder
	b.WriteString("Great goal!\n\n")
	fmt.Fprintf(&b, "**Goal**: %s\n", p.Title)
	fmt.Fprintf(&b, "**Duration**: %s\n", durationLabel(p.Duration))
	if p.Reasoning != "" {
		fmt.Fprintf(&b, "**Why**: %s\n", p.Reasoning)
	}
	if len(p.Todos) > 0 {
		b.WriteString("\n**Todo list**:\n")
		for i, todo := range p.Todos {
			fmt.Fprintf(&b, "%d. %s\n", i+1, todo)
		}
	}
	b.WriteString("\nSave this goal?")
	return b.String()
}

var durationPatterns = []struct {
	re       *regexp.Regexp
	duration string
}{
	{regexp.MustCompile(`(?i)\b(12\s*months?|1\s*years?|one\s+year|a\s+year)\b`), "1year"},
	{regexp.MustCompile(`(?i)\b(6\s*months?|six\s+months|half\s+a\s+year)\b`), "6months"},
	{regexp.MustCompile(`(?i)\b(3\s*months?|three\s+months)\b`), "3months"},
	{regexp.MustCompile(`(?i)\b(1\s*months?|one\s+month|a\s+month)\b`), "1month"},
}

// ExtractGoalInfo takes the latest user message as the goal and finds a duration
// mentioned anywhere in the user's messages, newest first.
func ExtractGoalInfo(history []Message) (title, duration string, ok bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != RoleUser {
			continue
		}
		text := strings.TrimSpace(history[i].Content)
		if title == "" {
			title = text
		}
		if duration == "" {
			duration = matchDuration(text)
		}
		if duration != "" {
			break
		}
	}
	return title, duration, title != "" && duration != ""
}

func matchDuration(text string) string {
	for _, p := range durationPatterns {
		if p.re.MatchString(text) {
			return p.duration
		}
	}
	return ""
}

func durationLabel(d string) string {
	switch d {
	case "1month":
		return "1 month"
	case "3months":
		return "3 months"
	case "6months":
		return "6 months"
	case "1year":
		return "1 year"
	default:
		return d
	}
}
