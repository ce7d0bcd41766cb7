package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sandeepkv93/iaa/internal/app"
	"github.com/sandeepkv93/iaa/internal/config"
	"github.com/sandeepkv93/iaa/internal/httpapi"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "iaa-server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (default: config.* in the iaa config dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := app.Logger(os.Stderr, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	verifier, err := newVerifier(ctx, backend, cfg, logger)
	if err != nil {
		return err
	}

	server, err := httpapi.New(httpapi.Options{
		Verifier: verifier,
		Services: func(_ context.Context, userID string) (*journal.Service, error) {
			return backend.Journal(cfg, userID, logger)
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if notifier, err := backend.Notifier(ctx, cfg); err != nil {
		logger.Printf("push notifications disabled: %v", err)
	} else if notifier != nil {
		engine := scheduler.NewEngine(16)
		engine.Start()
		defer engine.Stop()
		nudger, err := scheduler.NewNudger(engine, cfg.ReflectionNudge)
		if err != nil {
			return err
		}
		if _, err := nudger.ScheduleNext(time.Now()); err != nil {
			return err
		}
		go scheduler.Run(ctx, engine, nudger, notifier)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		errCh <- server.Listen(cfg.ListenAddr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Printf("shutting down")
		return server.Shutdown()
	}
}

// newVerifier prefers a shared JWT secret and falls back to Firebase ID tokens.
func newVerifier(ctx context.Context, backend *app.Backend, cfg config.RuntimeConfig, logger *log.Logger) (httpapi.Verifier, error) {
	if cfg.JWTSecret != "" {
		return httpapi.NewJWTVerifier(cfg.JWTSecret)
	}
	fb, err := backend.FirebaseApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("no jwt_secret configured and firebase is unavailable: %w", err)
	}
	logger.Printf("verifying firebase id tokens")
	return httpapi.NewFirebaseVerifier(ctx, fb)
}
