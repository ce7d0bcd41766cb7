package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type capturedRequest struct {
	Model       string    `json:"model"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
}

func completionServer(t *testing.T, replies ...string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	captured := make([]capturedRequest, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		idx := len(captured)
		captured = append(captured, req)
		mu.Unlock()
		content := replies[min(idx, len(replies)-1)]
		payload, _ := json.Marshal(content)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":%q,"choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`, req.Model, payload)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func testClient(t *testing.T, baseURL string) *OpenAIClient {
	t.Helper()
	cfg := DefaultConfig()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = baseURL + "/v1"
	c, err := NewOpenAIClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(DefaultConfig()); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGenerateTasksSendsGoalContext(t *testing.T) {
	srv, captured := completionServer(t, `{"todos":["Run 2km","Stretch","Plan meals"]}`)
	c := testClient(t, srv.URL)

	got, err := c.GenerateTasks(t.Context(), GoalContext{
		Title:                 "Run a half marathon",
		TimeHorizonLabel:      "3 months",
		RecentProgressSummary: "Day 10 of 92",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 3 || got[0] != "Run 2km" {
		t.Fatalf("unexpected tasks: %#v", got)
	}
	if len(*captured) != 1 {
		t.Fatalf("expected one request, got %d", len(*captured))
	}
	req := (*captured)[0]
	if req.Model != "gpt-4o-mini" || req.Temperature != 0.7 {
		t.Fatalf("unexpected request settings: %#v", req)
	}
	user := req.Messages[len(req.Messages)-1].Content
	for _, want := range []string{"Run a half marathon", "3 months", "Day 10 of 92"} {
		if !strings.Contains(user, want) {
			t.Fatalf("prompt %q missing %q", user, want)
		}
	}
}

func TestGenerateTasksWrapsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).GenerateTasks(t.Context(), GoalContext{Title: "x"})
	if !errors.Is(err, ErrRequest) {
		t.Fatalf("expected ErrRequest, got %v", err)
	}
}

func TestChatFallsBackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reply, err := testClient(t, srv.URL).Chat(t.Context(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if reply.Content != FallbackReply || !reply.Fallback {
		t.Fatalf("expected fallback reply, got %#v", reply)
	}
}

func TestChatBuildsProposalWhenTodoListNeeded(t *testing.T) {
	srv, captured := completionServer(t,
		`{"content":"Got it","needsTodoList":true}`,
		"```json\n{\"todos\":[\"Walk 30 minutes\",\"Vegetable soup for dinner\"]}\n```",
	)
	c := testClient(t, srv.URL)

	reply, err := c.Chat(t.Context(), []Message{{Role: RoleUser, Content: "Lose 5kg in 1 month"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Proposal == nil {
		t.Fatalf("expected proposal, got %#v", reply)
	}
	if reply.Proposal.Duration != "1month" || len(reply.Proposal.Todos) != 2 {
		t.Fatalf("unexpected proposal: %#v", reply.Proposal)
	}
	if !strings.Contains(reply.Content, "**Goal**: Lose 5kg in 1 month") {
		t.Fatalf("unexpected content: %q", reply.Content)
	}
	if (*captured)[0].Model != "gpt-3.5-turbo" || (*captured)[1].Temperature != 0.3 {
		t.Fatalf("unexpected request settings: %#v", *captured)
	}
}
