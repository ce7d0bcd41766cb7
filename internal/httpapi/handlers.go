package httpapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/model"
)

func (s *Server) listGoals(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	goals, err := svc.ListGoals(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		resp := toGoal(g)
		if p, err := svc.GoalProgress(g); err == nil {
			resp.Progress = toProgress(p)
		}
		out = append(out, resp)
	}
	return c.JSON(out)
}

func (s *Server) createGoal(c *fiber.Ctx) error {
	var req createGoalRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	duration, err := model.ParseGoalDuration(req.Duration)
	if err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	g, err := svc.CreateGoalUntil(c.UserContext(), req.Title, duration, req.EndDate)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toGoal(g))
}

func (s *Server) updateGoal(c *fiber.Ctx) error {
	var req updateGoalRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	edit := journal.GoalEdit{Title: req.Title}
	if req.Duration != nil {
		d, err := model.ParseGoalDuration(*req.Duration)
		if err != nil {
			return err
		}
		edit.Duration = &d
	}
	g, err := svc.GetGoal(c.UserContext(), id)
	if err != nil {
		return err
	}
	if edit.Title != nil || edit.Duration != nil {
		if g, err = svc.EditGoal(c.UserContext(), id, edit); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if g, err = svc.SetGoalStatus(c.UserContext(), id, model.GoalStatus(*req.Status)); err != nil {
			return err
		}
	}
	return c.JSON(toGoal(g))
}

func (s *Server) deleteGoal(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	if err := svc.DeleteGoal(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) goalProgress(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	g, err := svc.GetGoal(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	p, err := svc.GoalProgress(g)
	if err != nil {
		return err
	}
	return c.JSON(toProgress(p))
}

func (s *Server) generateTasks(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	items, err := svc.GenerateDailyTasks(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tasksResponse{Tasks: nonNilTasks(items)})
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		items, err := svc.Tasks(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(tasksResponse{Tasks: nonNilTasks(items)})
	}
	if !dates.IsDateKey(date) {
		return fmt.Errorf("%w: %q", dates.ErrInvalidDateKey, date)
	}
	items, err := svc.TasksFor(c.UserContext(), date)
	if err != nil {
		return err
	}
	stats, err := svc.DayStats(c.UserContext(), date)
	if err != nil {
		return err
	}
	return c.JSON(tasksResponse{Tasks: nonNilTasks(items), Stats: toStats(stats)})
}

// upsertTask reconciles a (date, text) candidate. Without "completed" it only ensures the task exists.
func (s *Server) upsertTask(c *fiber.Ctx) error {
	var req taskRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	var item model.TaskItem
	if req.Completed == nil {
		item, err = svc.AddTask(c.UserContext(), req.Date, req.Text, req.GoalID)
	} else {
		date := req.Date
		if date == "" {
			date = svc.Today()
		}
		item, err = svc.SetTaskCompleted(c.UserContext(), date, req.Text, req.GoalID, *req.Completed)
	}
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) toggleTask(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	item, err := svc.ToggleTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	if err := svc.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) getReflection(c *fiber.Ctx) error {
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	r, err := svc.GetReflection(c.UserContext(), c.Params("date"))
	if err != nil {
		return err
	}
	resp := toReflection(r)
	resp.Restored = svc.RestoreTodos(r)
	return c.JSON(resp)
}

func (s *Server) saveReflection(c *fiber.Ctx) error {
	var req reflectionRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	r, err := svc.SaveReflection(c.UserContext(), c.Params("date"), req.Memo, req.Todos)
	if err != nil {
		return err
	}
	return c.JSON(toReflection(r))
}

func (s *Server) submitReflection(c *fiber.Ctx) error {
	var req reflectionRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	res, err := svc.SubmitReflection(c.UserContext(), c.Params("date"), req.Memo, req.Todos)
	if err != nil {
		return err
	}
	return c.JSON(submitResponse{
		Reflection: toReflection(res.Reflection),
		NextDate:   res.NextDate,
		Generated:  nonNilTasks(res.Generated),
	})
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	reply, err := svc.Chat(c.UserContext(), toHistory(req.Messages))
	if err != nil {
		return err
	}
	return c.JSON(reply)
}

func (s *Server) acceptProposal(c *fiber.Ctx) error {
	var req acceptRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	g, items, err := svc.AcceptProposal(c.UserContext(), generate.GoalProposal{Title: req.Title, Duration: req.Duration, Todos: req.Todos})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(acceptResponse{Goal: toGoal(g), Tasks: nonNilTasks(items)})
}

func (s *Server) setAPIKey(c *fiber.Ctx) error {
	var req apiKeyRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	svc, err := s.journalFor(c)
	if err != nil {
		return err
	}
	if err := svc.SetAPIKey(c.UserContext(), req.APIKey); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
