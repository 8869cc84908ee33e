package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell/internal/inkmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerCoalescesBurst(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(50*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	// a burst inside the debounce window collapses to one run
	for range 10 {
		s.Notify()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedulerDebounceRestarts(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(60*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	// each notification restarts the timer, so no run happens while
	// notifications keep arriving faster than the debounce window
	for range 5 {
		s.Notify()
		time.Sleep(20 * time.Millisecond)
	}
	assert.Equal(t, int32(0), runs.Load(), "timer must not fire mid-burst")

	time.Sleep(120 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedulerQueuesDuringRun(t *testing.T) {
	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	s := NewScheduler(20*time.Millisecond, func(ctx context.Context) {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
	})

	s.Notify()
	<-started

	// notifications during a run set the queued flag; they must yield
	// exactly one follow-up run, with no debounce delay
	s.Notify()
	s.Notify()
	s.Notify()
	close(release)

	time.Sleep(100 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(2), runs.Load())
}

func TestSchedulerSingleFlight(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	s := NewScheduler(10*time.Millisecond, func(ctx context.Context) {
		cur := inFlight.Add(1)
		if cur > maxInFlight.Load() {
			maxInFlight.Store(cur)
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
	})

	for range 3 {
		s.Notify()
		time.Sleep(25 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), maxInFlight.Load(), "never more than one pipeline in flight")
}

func TestSchedulerListenFiltersEvents(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(20*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	events := make(chan *inkmsg.Message, 8)
	events <- &inkmsg.Message{Id: "1", Type: inkmsg.MsgConnected}
	events <- &inkmsg.Message{Id: "2", Type: inkmsg.MsgHeartbeat}
	events <- &inkmsg.Message{Id: "3", Type: inkmsg.MsgContentChanged, Data: inkmsg.ContentChange{ID: "p1"}}
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Listen(ctx, events)

	require.Eventually(t, func() bool {
		return runs.Load() == 1
	}, time.Second, 10*time.Millisecond, "only the change event schedules a run")
}

func TestSchedulerStopCancelsPending(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(50*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	s.Notify()
	s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
