// Package owner runs every mutation of the client's local state on one
// goroutine. Remote calls happen elsewhere and hand their results back
// through Do or Post.
package owner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/urgekeeper/internal/logging"
)

var (
	ErrStopped        = errors.New("owner loop stopped")
	ErrAlreadyRunning = errors.New("owner loop already running")
	ErrPanic          = errors.New("owner task panicked")
)

const DefaultBuffer = 64

type Loop struct {
	tasks   chan func()
	stopped chan struct{}
	running atomic.Bool
	logger  logging.Logger
}

func New(buffer int, logger logging.Logger) *Loop {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loop{
		tasks:   make(chan func(), buffer),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run executes tasks in submission order until ctx is done. It may be
// called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.stopped)

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.tasks:
			l.exec(ctx, fn)
		}
	}
}

func (l *Loop) exec(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(ctx, "owner task panicked", "panic", r)
		}
	}()
	fn()
}

// Do runs fn on the loop and waits for it. It must not be called from a
// task already running on the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	var perr error
	task := func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				perr = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return perr
	case <-l.stopped:
		// the loop may have stopped right after finishing the task
		select {
		case <-done:
			return perr
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. It reports false when the loop has
// stopped or its buffer is full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	default:
		return false
	}
}
