package cnwauth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsTasksOnTheirOwnIntervals(t *testing.T) {
	var fast, slow atomic.Int32

	s := NewScheduler()
	s.AddTask("fast", 10*time.Millisecond, func(context.Context) error {
		fast.Add(1)
		return nil
	})
	s.AddTask("slow", 80*time.Millisecond, func(context.Context) error {
		slow.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(200 * time.Millisecond)
	cancel()
	s.Wait()

	assert.Greater(t, fast.Load(), slow.Load(), "fast task should tick more often")
	assert.GreaterOrEqual(t, fast.Load(), int32(5))
	assert.GreaterOrEqual(t, slow.Load(), int32(1))
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	var ticks atomic.Int32

	s := NewScheduler()
	s.AddTask("counter", 10*time.Millisecond, func(context.Context) error {
		ticks.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Wait()

	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load(), "no ticks after cancellation")
}

func TestScheduler_FailingTaskDoesNotStopOthers(t *testing.T) {
	var healthy atomic.Int32

	s := NewScheduler()
	s.AddTask("failing", 10*time.Millisecond, func(context.Context) error {
		return errors.New("always broken")
	})
	s.AddTask("healthy", 10*time.Millisecond, func(context.Context) error {
		healthy.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()
	s.Wait()

	assert.GreaterOrEqual(t, healthy.Load(), int32(3))
}

func TestScheduler_PanickingTaskKeepsTicking(t *testing.T) {
	var runs atomic.Int32

	s := NewScheduler()
	s.AddTask("panicky", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		panic("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()
	s.Wait()

	assert.GreaterOrEqual(t, runs.Load(), int32(2), "loop must survive task panics")
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	var ticks atomic.Int32

	s := NewScheduler()
	s.AddTask("counter", 20*time.Millisecond, func(context.Context) error {
		ticks.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	s.Start(ctx) // must not double the loops
	time.Sleep(110 * time.Millisecond)
	cancel()
	s.Wait()

	assert.LessOrEqual(t, ticks.Load(), int32(6))
}

func TestScheduler_RejectsBadTasks(t *testing.T) {
	s := NewScheduler()
	s.AddTask("zero-interval", 0, func(context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	cancel()
	s.Wait() // returns immediately because no loop was started
}

func TestScheduler_AddTaskAfterStartIgnored(t *testing.T) {
	var late atomic.Int32

	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	s.AddTask("late", 10*time.Millisecond, func(context.Context) error {
		late.Add(1)
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Wait()
	assert.Zero(t, late.Load())
}
