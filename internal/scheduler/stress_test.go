package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestEngineConcurrentScheduleAndReschedule(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const workers = 8
	const perWorker = 200
	// every worker also reschedules the shared reflection nudge, which must fire once
	want := workers*perWorker + 1

	now := time.Now()
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				delay := time.Duration((w+i)%50+10) * time.Millisecond
				ev := NudgeEvent{
					ID:        fmt.Sprintf("plan-w%d-%d", w, i),
					Kind:      NudgePlanDay,
					Date:      fmt.Sprintf("2026-02-%02d", i%28+1),
					TriggerAt: now.Add(delay),
				}
				if err := engine.Schedule(ev); err != nil {
					t.Errorf("schedule failed: %v", err)
					return
				}
				shared := NudgeEvent{ID: reflectionNudgeID, Kind: NudgeReflection, TriggerAt: now.Add(300 * time.Millisecond)}
				if err := engine.Schedule(shared); err != nil {
					t.Errorf("reschedule failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	deadline := time.After(5 * time.Second)
	received, reflections := 0, 0
	for received < want {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting events: received=%d want=%d dropped=%d", received, want, engine.Dropped())
		case ev := <-engine.C():
			received++
			if ev.Kind == NudgeReflection {
				reflections++
			}
		}
	}
	if reflections != 1 {
		t.Fatalf("expected the shared nudge once, got %d", reflections)
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with active consumer, got=%d", engine.Dropped())
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", engine.Pending())
	}
}
