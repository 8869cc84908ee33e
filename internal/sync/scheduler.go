package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/inkwell-cms/inkwell/internal/inkmsg"
)

const DefaultDebounce = 2 * time.Second

// Scheduler coalesces a stream of remote change notifications into
// serialized pipeline runs. Every notification restarts the debounce timer;
// when it fires, the pipeline runs once. A notification arriving during a
// run sets a queued flag that guarantees exactly one follow-up run, so
// bursts collapse to a bounded number of executions and at most one run is
// ever in flight.
type Scheduler struct {
	mu       gosync.Mutex
	timer    *time.Timer
	debounce time.Duration
	running  bool
	queued   bool
	stopped  bool
	run      func(ctx context.Context)
	ctx      context.Context
	wg       gosync.WaitGroup
}

func NewScheduler(debounce time.Duration, run func(ctx context.Context)) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Scheduler{
		debounce: debounce,
		run:      run,
		ctx:      context.Background(),
	}
}

// Listen consumes push messages until the channel closes or the context is
// cancelled, scheduling a run for every change notification.
func (s *Scheduler) Listen(ctx context.Context, events <-chan *inkmsg.Message) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case msg, ok := <-events:
			if !ok {
				// channel gone; any pending debounce still runs
				return
			}
			if !msg.Type.IsChange() {
				slog.Debug("scheduler ignoring event", "type", msg.Type, "id", msg.Id)
				continue
			}
			slog.Debug("scheduler notified", "type", msg.Type, "id", msg.Id)
			s.Notify()
		}
	}
}

// Notify records one remote change. During a run it only marks the queued
// flag; otherwise it restarts the debounce timer.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.running {
		s.queued = true
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.running {
		// a run started between the timer firing and this lock
		s.queued = true
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx := s.ctx
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)
}

// loop executes pipeline runs back to back while the queued flag keeps
// getting set, with no extra debounce delay between them.
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		s.run(ctx)

		s.mu.Lock()
		if s.queued && !s.stopped && ctx.Err() == nil {
			s.queued = false
			s.mu.Unlock()
			continue
		}
		s.running = false
		s.mu.Unlock()
		return
	}
}

// Stop cancels any pending debounce timer and waits for an in-flight run
// to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.queued = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}
