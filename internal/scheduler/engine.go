package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrMissingID          = errors.New("scheduler: nudge id is required")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

type NudgeKind string

const (
	NudgeReflection NudgeKind = "reflection"
	NudgePlanDay    NudgeKind = "plan-day"
)

// NudgeEvent asks the user to act on the journal for Date.
type NudgeEvent struct {
	ID        string
	Kind      NudgeKind
	Date      string
	Message   string
	TriggerAt time.Time
}

// slot is a queued nudge. index is its position in the heap, seq breaks ties in insertion order.
type slot struct {
	ev    NudgeEvent
	seq   uint64
	index int
}

type nudgeHeap []*slot

func (h nudgeHeap) Len() int { return len(h) }

func (h nudgeHeap) Less(i, j int) bool {
	if h[i].ev.TriggerAt.Equal(h[j].ev.TriggerAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].ev.TriggerAt.Before(h[j].ev.TriggerAt)
}

func (h nudgeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nudgeHeap) Push(x any) {
	s := x.(*slot)
	s.index = len(*h)
	*h = append(*h, s)
}

func (h *nudgeHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	s.index = -1
	*h = old[:n-1]
	return s
}

// Engine holds at most one pending nudge per ID and emits each on C when it comes due.
// Delivery never blocks: when C is full the nudge is counted as dropped.
type Engine struct {
	mu      sync.Mutex
	queue   nudgeHeap
	byID    map[string]*slot
	seq     uint64
	out     chan NudgeEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped atomic.Uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		byID:   make(map[string]*slot),
		out:    make(chan NudgeEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C is closed after Stop.
func (e *Engine) C() <-chan NudgeEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule queues ev, replacing a pending nudge with the same ID.
func (e *Engine) Schedule(ev NudgeEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	if ev.ID == "" {
		return ErrMissingID
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	e.seq++
	if s, ok := e.byID[ev.ID]; ok {
		s.ev = ev
		s.seq = e.seq
		heap.Fix(&e.queue, s.index)
	} else {
		s := &slot{ev: ev, seq: e.seq}
		heap.Push(&e.queue, s)
		e.byID[ev.ID] = s
	}
	e.signalWakeup()
	return nil
}

// Cancel drops the pending nudge with id and reports whether there was one.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&e.queue, s.index)
	delete(e.byID, id)
	e.signalWakeup()
	return true
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Next returns the earliest pending nudge.
func (e *Engine) Next() (NudgeEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return NudgeEvent{}, false
	}
	return e.queue[0].ev, true
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	for {
		var fire <-chan time.Time
		if next, ok := e.Next(); ok {
			timer.Reset(max(time.Until(next.TriggerAt), 0))
			fire = timer.C
		}

		select {
		case <-fire:
			for _, ev := range e.popDue(time.Now()) {
				select {
				case e.out <- ev:
				default:
					e.dropped.Add(1)
				}
			}
		case <-e.wakeup:
			timer.Stop()
		case <-e.stopCh:
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) popDue(now time.Time) []NudgeEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var due []NudgeEvent
	for len(e.queue) > 0 && !e.queue[0].ev.TriggerAt.After(now) {
		s := heap.Pop(&e.queue).(*slot)
		delete(e.byID, s.ev.ID)
		due = append(due, s.ev)
	}
	return due
}
