package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/storage"
	"github.com/sandeepkv93/iaa/internal/tasks"
)

var (
	ErrAPIKeyMissing    = errors.New("journal: openai api key is not configured")
	ErrBusy             = errors.New("journal: a request of this kind is already running")
	ErrNoTasksGenerated = generate.ErrNoTasksGenerated
	ErrTaskNotFound     = errors.New("journal: task not found")
	ErrEmptyTask        = errors.New("journal: task text is required")
	ErrEmptyMemo        = errors.New("journal: reflection memo is required")
	ErrNoGoals          = errors.New("journal: create a goal first")
)

type Action string

const (
	ActionGenerate         Action = "generate"
	ActionSubmitReflection Action = "submit-reflection"
	ActionChat             Action = "chat"
)

// AI is the model-backed half of the service.
type AI interface {
	GenerateTasks(ctx context.Context, in generate.GoalContext) ([]string, error)
	Chat(ctx context.Context, history []generate.Message) (generate.ChatReply, error)
}

// AIFactory builds an AI client for an API key.
type AIFactory func(apiKey string) (AI, error)

type GoalStore interface {
	CreateGoal(ctx context.Context, in model.Goal) error
	GetGoal(ctx context.Context, id string) (model.Goal, error)
	UpdateGoal(ctx context.Context, in model.Goal) error
	DeleteGoal(ctx context.Context, id string) error
	ListGoals(ctx context.Context, filter storage.GoalListFilter) ([]model.Goal, error)
}

type ReflectionStore interface {
	UpsertReflection(ctx context.Context, in model.Reflection) (model.Reflection, error)
	GetReflectionByDate(ctx context.Context, userID, date string) (model.Reflection, error)
	ListReflections(ctx context.Context, filter storage.ReflectionListFilter) ([]model.Reflection, error)
}

type Deps struct {
	Goals       GoalStore
	Reflections ReflectionStore
	Tasks       storage.TaskStore
	Settings    storage.KV

	// AI is used as is when set. Otherwise NewAI is called with APIKey or the cached key.
	AI     AI
	NewAI  AIFactory
	APIKey string

	UserID string
	Now    func() time.Time
	NewID  tasks.IDFunc
	Logger *log.Logger
}

// Service is one user's journal. Task list read-modify-write cycles are serialized.
type Service struct {
	goals       GoalStore
	reflections ReflectionStore
	tasks       storage.TaskStore
	settings    storage.KV
	newAI       AIFactory
	apiKey      string
	userID      string
	now         func() time.Time
	newID       tasks.IDFunc
	logger      *log.Logger

	taskMu sync.Mutex

	aiMu sync.Mutex
	ai   AI

	busy map[Action]*semaphore.Weighted
}

func New(deps Deps) (*Service, error) {
	if deps.Goals == nil || deps.Reflections == nil || deps.Tasks == nil {
		return nil, errors.New("journal: goals, reflections and tasks stores are required")
	}
	s := &Service{
		goals:       deps.Goals,
		reflections: deps.Reflections,
		tasks:       deps.Tasks,
		settings:    deps.Settings,
		newAI:       deps.NewAI,
		apiKey:      strings.TrimSpace(deps.APIKey),
		userID:      deps.UserID,
		now:         deps.Now,
		newID:       deps.NewID,
		logger:      deps.Logger,
		ai:          deps.AI,
		busy: map[Action]*semaphore.Weighted{
			ActionGenerate:         semaphore.NewWeighted(1),
			ActionSubmitReflection: semaphore.NewWeighted(1),
			ActionChat:             semaphore.NewWeighted(1),
		},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = tasks.NewID
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	return s, nil
}

func (s *Service) UserID() string {
	return s.userID
}

func (s *Service) Today() string {
	return dates.Today(s.now())
}

// begin claims the action slot or fails with ErrBusy.
func (s *Service) begin(a Action) (func(), error) {
	sem := s.busy[a]
	if !sem.TryAcquire(1) {
		return nil, fmt.Errorf("%w: %s", ErrBusy, a)
	}
	return func() { sem.Release(1) }, nil
}

func (s *Service) Busy(a Action) bool {
	sem := s.busy[a]
	if !sem.TryAcquire(1) {
		return true
	}
	sem.Release(1)
	return false
}

func (s *Service) client(ctx context.Context) (AI, error) {
	s.aiMu.Lock()
	defer s.aiMu.Unlock()
	if s.ai != nil {
		return s.ai, nil
	}
	if s.newAI == nil {
		return nil, ErrAPIKeyMissing
	}
	key := s.apiKey
	if key == "" {
		cached, err := s.APIKey(ctx)
		if err != nil {
			return nil, err
		}
		key = cached
	}
	if key == "" {
		return nil, ErrAPIKeyMissing
	}
	ai, err := s.newAI(key)
	if err != nil {
		if errors.Is(err, generate.ErrNoAPIKey) {
			return nil, ErrAPIKeyMissing
		}
		return nil, err
	}
	s.ai = ai
	return ai, nil
}

func (s *Service) APIKey(ctx context.Context) (string, error) {
	if s.settings == nil {
		return s.apiKey, nil
	}
	key, err := s.settings.Get(ctx, storage.APIKeyKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.apiKey, nil
		}
		return "", fmt.Errorf("load api key: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// SetAPIKey caches the key and drops any client built from a previous key.
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if s.settings != nil {
		if err := s.settings.Set(ctx, storage.APIKeyKey, key); err != nil {
			return fmt.Errorf("save api key: %w", err)
		}
	}
	s.aiMu.Lock()
	defer s.aiMu.Unlock()
	s.apiKey = key
	if s.newAI != nil {
		s.ai = nil
	}
	return nil
}

func (s *Service) HasAPIKey(ctx context.Context) bool {
	_, err := s.client(ctx)
	return err == nil
}
