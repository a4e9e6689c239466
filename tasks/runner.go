package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner detaches side effects from the request path while keeping them
// observable. Wait blocks until every started task has finished and every
// scheduled timer has fired or been cancelled. Timers live in this process only; Stop drops the ones still
// pending.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewRunner(log *slog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		log:    log.With("component", "tasks"),
		timers: map[string]*time.Timer{},
	}
}

// Go runs fn in the background. A panic is logged and swallowed.
func (r *Runner) Go(name string, fn func(ctx context.Context)) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Warn("Runner stopped, task dropped", "task", name)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.run(name, fn)
	}()
}

// After runs fn once delay has passed. Scheduling a key that is already
// pending replaces the earlier timer.
func (r *Runner) After(key string, delay time.Duration, fn func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warn("Runner stopped, timer dropped", "task", key)
		return
	}
	if old, ok := r.timers[key]; ok && old.Stop() {
		r.wg.Done()
	}

	r.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		defer r.wg.Done()
		r.mu.Lock()
		if r.timers[key] == timer {
			delete(r.timers, key)
		}
		r.mu.Unlock()
		r.run(key, fn)
	})
	r.timers[key] = timer
}

// Cancel stops a pending timer. It reports whether one was stopped.
func (r *Runner) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	timer, ok := r.timers[key]
	if !ok {
		return false
	}
	delete(r.timers, key)
	if timer.Stop() {
		r.wg.Done()
		return true
	}
	return false
}

// Pending is the number of timers that have not fired yet.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

func (r *Runner) Wait() {
	r.wg.Wait()
}

// Stop drops pending timers, cancels the task context and waits for running
// tasks to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.closed = true
	dropped := 0
	for key, timer := range r.timers {
		if timer.Stop() {
			r.wg.Done()
			dropped++
		}
		delete(r.timers, key)
	}
	if dropped > 0 {
		r.log.Info("Dropped pending timers", "count", dropped)
	}
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func (r *Runner) run(name string, fn func(ctx context.Context)) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Task panicked", "task", name, "panic", p)
		}
	}()
	fn(r.ctx)
}
