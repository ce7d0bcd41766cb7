package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	firebase "firebase.google.com/go/v4"

	"github.com/sandeepkv93/iaa/internal/config"
	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/scheduler"
	"github.com/sandeepkv93/iaa/internal/storage"
)

// Backend is the opened storage for one process, shared by every user's journal.
type Backend struct {
	Repo     storage.Repository
	Firebase *firebase.App
	closers  []func() error
}

// Open connects the storage selected by cfg.Backend.
func Open(ctx context.Context, cfg config.RuntimeConfig) (*Backend, error) {
	b := &Backend{}
	switch cfg.Backend {
	case config.BackendSQL:
		repo, err := storage.OpenSQL(storage.Dialect(cfg.DatabaseDriver), cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		b.Repo = repo
		b.closers = append(b.closers, repo.Close)
	case config.BackendFile:
		b.Repo = storage.NewKVRepository(storage.NewFileStore(cfg.StateFile))
	case config.BackendFirestore:
		fb, err := b.firebase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo, err := storage.OpenFirestore(ctx, fb)
		if err != nil {
			return nil, err
		}
		b.Repo = repo
		b.closers = append(b.closers, repo.Close)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
	return b, nil
}

// FirebaseApp returns the shared Firebase app, creating it on first use.
func (b *Backend) FirebaseApp(ctx context.Context, cfg config.RuntimeConfig) (*firebase.App, error) {
	return b.firebase(ctx, cfg)
}

func (b *Backend) firebase(ctx context.Context, cfg config.RuntimeConfig) (*firebase.App, error) {
	if b.Firebase != nil {
		return b.Firebase, nil
	}
	fb, err := storage.NewFirebaseApp(ctx, cfg.FirebaseCredentials, cfg.FirebaseProject)
	if err != nil {
		return nil, err
	}
	b.Firebase = fb
	return fb, nil
}

func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// Journal builds the journal service for userID on top of the backend.
func (b *Backend) Journal(cfg config.RuntimeConfig, userID string, logger *log.Logger) (*journal.Service, error) {
	return journal.New(journal.Deps{
		Goals:       b.Repo,
		Reflections: b.Repo,
		Tasks:       b.Repo.TaskStore(userID),
		Settings:    storage.Settings(b.Repo, userID),
		NewAI:       NewAIFactory(cfg),
		APIKey:      cfg.OpenAIAPIKey,
		UserID:      userID,
		Logger:      logger,
	})
}

// NewAIFactory returns a factory of OpenAI clients configured from cfg.
func NewAIFactory(cfg config.RuntimeConfig) journal.AIFactory {
	return func(apiKey string) (journal.AI, error) {
		gc := generate.DefaultConfig()
		gc.APIKey = apiKey
		gc.BaseURL = cfg.OpenAIBaseURL
		if cfg.OpenAIModel != "" {
			gc.Model = cfg.OpenAIModel
		}
		if cfg.ChatModel != "" {
			gc.ChatModel = cfg.ChatModel
		}
		if cfg.Temperature > 0 {
			gc.Temperature = float32(cfg.Temperature)
		}
		if cfg.MaxTokens > 0 {
			gc.MaxTokens = cfg.MaxTokens
		}
		gc.Timeout = cfg.RequestTimeout()
		client, err := generate.NewOpenAIClient(gc)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Notifier returns a push notifier when a device token is configured, or nil.
func (b *Backend) Notifier(ctx context.Context, cfg config.RuntimeConfig) (scheduler.Notifier, error) {
	if cfg.FCMDeviceToken == "" {
		return nil, nil
	}
	fb, err := b.firebase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := fb.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging: %w", err)
	}
	return scheduler.NewPushNotifier(client, cfg.FCMDeviceToken)
}

// Logger writes to w when verbose and discards otherwise.
func Logger(w io.Writer, verbose bool) *log.Logger {
	if !verbose {
		w = io.Discard
	}
	return log.New(w, "iaa: ", log.LstdFlags)
}
