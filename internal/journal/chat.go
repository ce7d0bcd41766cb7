package journal

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/model"
)

// Chat runs one advisor turn. Transport failures are logged and the fallback reply is returned without error.
func (s *Service) Chat(ctx context.Context, history []generate.Message) (generate.ChatReply, error) {
	done, err := s.begin(ActionChat)
	if err != nil {
		return generate.ChatReply{}, err
	}
	defer done()

	ai, err := s.client(ctx)
	if err != nil {
		return generate.ChatReply{}, err
	}
	reply, err := ai.Chat(ctx, history)
	if err != nil {
		s.logger.Printf("journal: chat: %v", err)
		if reply.Content == "" {
			reply = generate.ChatReply{Content: generate.FallbackReply}
		}
		reply.Fallback = true
	}
	return reply, nil
}

// AcceptProposal creates the proposed goal and adds its todos for today.
func (s *Service) AcceptProposal(ctx context.Context, p generate.GoalProposal) (model.Goal, []model.TaskItem, error) {
	duration, err := model.ParseGoalDuration(p.Duration)
	if err != nil {
		return model.Goal{}, nil, err
	}
	g, err := s.CreateGoal(ctx, p.Title, duration)
	if err != nil {
		return model.Goal{}, nil, err
	}
	if len(p.Todos) == 0 {
		return g, nil, nil
	}
	added, err := s.mergeGenerated(ctx, s.Today(), g.ID, p.Todos)
	if err != nil {
		return g, nil, fmt.Errorf("add proposal todos: %w", err)
	}
	return g, added, nil
}
