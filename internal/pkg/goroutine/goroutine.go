// Package goroutine runs background work under a bounded concurrency
// budget shared by the whole process.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/diarium/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is the per-CPU multiplier used when NewManager
// receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager schedules functions onto goroutines up to a fixed limit,
// collects the errors they return, and drains them on Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      *sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager allowing at most maxGoroutine concurrent tasks.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		wg:   &sync.WaitGroup{},
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go runs f on a new goroutine when a slot is free. At the limit, or
// after Wait has been called, the task is dropped with a warning rather
// than queued. The read lock taken here is released by the spawned
// goroutine once it starts, so Wait cannot close the manager between
// admission and launch.
func (m *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	if m == nil {
		return
	}

	m.stateMu.RLock()
	if m.closed {
		m.stateMu.RUnlock()
		slog.WarnContext(ctx, "goroutine manager is closed, skipping new goroutine")
		return
	}

	select {
	case m.sema <- struct{}{}:
		m.wg.Go(func() {
			m.stateMu.RUnlock()
			defer m.release(ctx)

			select {
			case <-ctx.Done():
				slog.WarnContext(ctx, "goroutine canceled", "because", ctx.Err())
			default:
				if err := f(ctx); err != nil {
					m.mu.Lock()
					m.errs = append(m.errs, err)
					m.mu.Unlock()
				}
			}
		})

	default:
		m.stateMu.RUnlock()
		slog.WarnContext(ctx, "Maximum goroutine limit reached, failed to start new goroutine")
	}
}

// release frees the semaphore slot and logs a recovered panic, trimming
// the stack to in-module frames when any are present.
func (m *Manager) release(ctx context.Context) {
	<-m.sema

	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "stack", paths)
		return
	}
	slog.ErrorContext(ctx, "panic occurred in goroutine", "stack", string(stack))
}

// Wait stops admission, blocks until running tasks finish, and returns
// their joined errors.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}

	m.stateMu.Lock()
	m.closed = true
	m.stateMu.Unlock()

	m.wg.Wait()

	return errors.Join(m.errs...)
}
