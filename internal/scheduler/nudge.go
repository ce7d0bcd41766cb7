package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/robfig/cron/v3"

	"github.com/sandeepkv93/iaa/internal/dates"
)

// DefaultReflectionSpec fires every evening at 21:00 local time.
const DefaultReflectionSpec = "0 21 * * *"

const reflectionNudgeID = "reflection-nudge"

// NextNudge returns the first time after from matched by a standard five-field cron spec.
func NextNudge(spec string, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduler: parse nudge spec %q: %w", spec, err)
	}
	return sched.Next(from), nil
}

// Nudger keeps exactly one reflection reminder scheduled on the engine.
type Nudger struct {
	engine   *Engine
	schedule cron.Schedule
	mu       sync.Mutex
	next     NudgeEvent
}

func NewNudger(engine *Engine, spec string) (*Nudger, error) {
	if engine == nil {
		return nil, errors.New("scheduler: nil engine")
	}
	if spec == "" {
		spec = DefaultReflectionSpec
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse nudge spec %q: %w", spec, err)
	}
	return &Nudger{engine: engine, schedule: sched}, nil
}

// ScheduleNext replaces the pending reminder with the next one after from.
func (n *Nudger) ScheduleNext(from time.Time) (NudgeEvent, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	at := n.schedule.Next(from)
	ev := NudgeEvent{
		ID:        reflectionNudgeID,
		Kind:      NudgeReflection,
		Date:      dates.ToDateKey(at),
		Message:   "Time to look back on today and plan tomorrow.",
		TriggerAt: at,
	}
	if err := n.engine.Schedule(ev); err != nil {
		return NudgeEvent{}, err
	}
	n.next = ev
	return ev, nil
}

func (n *Nudger) Next() NudgeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.next
}

// Notifier delivers a nudge outside the terminal.
type Notifier interface {
	Notify(ctx context.Context, ev NudgeEvent) error
}

type pushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier sends nudges to one device through Firebase Cloud Messaging.
type PushNotifier struct {
	client pushSender
	token  string
}

func NewPushNotifier(client *messaging.Client, deviceToken string) (*PushNotifier, error) {
	if client == nil || deviceToken == "" {
		return nil, errors.New("scheduler: push notifier needs a client and a device token")
	}
	return &PushNotifier{client: client, token: deviceToken}, nil
}

func (p *PushNotifier) Notify(ctx context.Context, ev NudgeEvent) error {
	id, err := p.client.Send(ctx, &messaging.Message{
		Token: p.token,
		Notification: &messaging.Notification{
			Title: "iaa",
			Body:  ev.Message,
		},
		Data: map[string]string{
			"kind": string(ev.Kind),
			"date": ev.Date,
		},
	})
	if err != nil {
		return fmt.Errorf("scheduler: push nudge %s: %w", ev.ID, err)
	}
	log.Printf("scheduler: pushed nudge %s for %s (%s)", ev.ID, ev.Date, id)
	return nil
}

// Run forwards engine events to notifier and reschedules the reflection reminder until ctx ends.
func Run(ctx context.Context, engine *Engine, nudger *Nudger, notifier Notifier) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-engine.C():
			if !ok {
				return
			}
			if notifier != nil {
				if err := notifier.Notify(ctx, ev); err != nil {
					log.Printf("scheduler: %v", err)
				}
			}
			if ev.Kind == NudgeReflection && nudger != nil {
				if _, err := nudger.ScheduleNext(ev.TriggerAt.Add(time.Second)); err != nil {
					log.Printf("scheduler: reschedule nudge: %v", err)
				}
			}
		}
	}
}
