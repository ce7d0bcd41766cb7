package httpapi

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/storage"
)

// ServiceFactory builds the journal for one authenticated user.
type ServiceFactory func(ctx context.Context, userID string) (*journal.Service, error)

type Options struct {
	Verifier Verifier
	Services ServiceFactory
	Logger   *log.Logger
}

type Server struct {
	app      *fiber.App
	verifier Verifier
	factory  ServiceFactory
	logger   *log.Logger
	validate *validator.Validate

	mu       sync.Mutex
	services map[string]*journal.Service
}

func New(opts Options) (*Server, error) {
	if opts.Verifier == nil || opts.Services == nil {
		return nil, errors.New("httpapi: verifier and service factory are required")
	}
	s := &Server{
		verifier: opts.Verifier,
		factory:  opts.Services,
		logger:   opts.Logger,
		validate: validator.New(),
		services: make(map[string]*journal.Service),
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{Output: s.logger.Writer()}))
	s.routes()
	return s, nil
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api := s.app.Group("/api", requireUser(s.verifier))

	goals := api.Group("/goals")
	goals.Get("/", s.listGoals)
	goals.Post("/", s.createGoal)
	goals.Put("/:id", s.updateGoal)
	goals.Delete("/:id", s.deleteGoal)
	goals.Get("/:id/progress", s.goalProgress)
	goals.Post("/:id/generate", s.generateTasks)

	tasks := api.Group("/tasks")
	tasks.Get("/", s.listTasks)
	tasks.Post("/", s.upsertTask)
	tasks.Post("/:id/toggle", s.toggleTask)
	tasks.Delete("/:id", s.deleteTask)

	reflections := api.Group("/reflections")
	reflections.Get("/:date", s.getReflection)
	reflections.Put("/:date", s.saveReflection)
	reflections.Post("/:date/submit", s.submitReflection)

	api.Post("/chat", s.chat)
	api.Post("/chat/accept", s.acceptProposal)
	api.Put("/settings/api-key", s.setAPIKey)
}

// journalFor returns the cached service for the request's user.
func (s *Server) journalFor(c *fiber.Ctx) (*journal.Service, error) {
	user := userID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc, ok := s.services[user]; ok {
		return svc, nil
	}
	svc, err := s.factory(c.UserContext(), user)
	if err != nil {
		return nil, err
	}
	s.services[user] = svc
	return svc, nil
}

func (s *Server) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return s.validate.Struct(dst)
}

func statusFor(err error) int {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve),
		errors.Is(err, dates.ErrInvalidDateKey),
		errors.Is(err, model.ErrInvalidDuration),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidRange),
		errors.Is(err, model.ErrTitleRequired),
		errors.Is(err, model.ErrInvalidTask),
		errors.Is(err, journal.ErrEmptyTask),
		errors.Is(err, journal.ErrEmptyMemo),
		errors.Is(err, journal.ErrNoGoals):
		return fiber.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, journal.ErrTaskNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, journal.ErrBusy), errors.Is(err, storage.ErrVersionConflict):
		return fiber.StatusConflict
	case errors.Is(err, journal.ErrAPIKeyMissing), errors.Is(err, generate.ErrNoAPIKey):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, generate.ErrRequest), errors.Is(err, generate.ErrNoTasksGenerated):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		s.logger.Printf("httpapi: %s %s: %v", c.Method(), c.Path(), err)
		msg = "internal error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
