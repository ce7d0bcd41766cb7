package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/app"
	"github.com/sandeepkv93/iaa/internal/config"
	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/export"
	"github.com/sandeepkv93/iaa/internal/journal"
	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/sandeepkv93/iaa/internal/scheduler"
	"github.com/sandeepkv93/iaa/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "iaa failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (default: config.* in the iaa config dir)")
	verbose := flag.Bool("verbose", false, "write a debug log to iaa.log in the config dir")
	add := flag.String("add", "", "add a task and exit")
	date := flag.String("date", "", "date for -add and -export (YYYY-MM-DD, default today)")
	exportPath := flag.String("export", "", "export tasks to this file (- for stdout) and exit")
	exportType := flag.String("type", "", "export format: json, yaml, txt or xlsx (default: from the file extension, else json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *verbose {
		cfg.Verbose = true
	}

	var logOut io.Writer = io.Discard
	if cfg.Verbose {
		if err := os.MkdirAll(config.DefaultDir(), 0o755); err != nil {
			return err
		}
		f, err := tea.LogToFile(filepath.Join(config.DefaultDir(), "iaa.log"), "iaa")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := app.Logger(logOut, cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	svc, err := backend.Journal(cfg, cfg.UserID, logger)
	if err != nil {
		return err
	}

	switch {
	case *add != "":
		return addTask(ctx, svc, *date, *add)
	case *exportPath != "":
		return exportTasks(ctx, svc, *exportPath, *exportType, *date)
	}

	engine := scheduler.NewEngine(16)
	engine.Start()
	defer engine.Stop()
	nudger, err := scheduler.NewNudger(engine, cfg.ReflectionNudge)
	if err != nil {
		return err
	}
	ev, err := nudger.ScheduleNext(time.Now())
	if err != nil {
		return err
	}
	logger.Printf("next reflection nudge at %s", ev.TriggerAt.Format(time.RFC3339))
	notifier, err := backend.Notifier(ctx, cfg)
	if err != nil {
		logger.Printf("push notifications disabled: %v", err)
		notifier = nil
	}

	ui := update.NewModel(svc, update.Options{
		Scheduler: engine,
		Nudger:    nudger,
		Notifier:  notifier,
		Timeout:   cfg.RequestTimeout(),
	})
	if _, err := tea.NewProgram(ui, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func addTask(ctx context.Context, svc *journal.Service, date, text string) error {
	if date == "" {
		date = svc.Today()
	}
	item, err := svc.AddTask(ctx, date, text, "")
	if err != nil {
		return err
	}
	fmt.Printf("added %s: %s\n", item.Date, item.Text)
	return nil
}

func exportTasks(ctx context.Context, svc *journal.Service, out, format, date string) error {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(out), ".")
		if _, err := export.ParseFormat(format); err != nil {
			format = string(export.FormatJSON)
		}
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	var items []model.TaskItem
	if date == "" {
		items, err = svc.Tasks(ctx)
	} else if dates.IsDateKey(date) {
		items, err = svc.TasksFor(ctx, date)
	} else {
		err = dates.ErrInvalidDateKey
	}
	if err != nil {
		return err
	}
	if f == export.FormatXLSX {
		if out == "-" {
			return fmt.Errorf("xlsx export needs a file path")
		}
		return export.WriteXLSX(out, items)
	}
	if out == "-" {
		return export.Write(os.Stdout, f, items)
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()
	return export.Write(file, f, items)
}
