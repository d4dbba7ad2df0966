// Package syncqueue is a bounded, sharded work queue for outbound sync. Jobs
// submitted under the same key (an entry id) run one at a time in FIFO order;
// different keys may run in parallel. Failed jobs are retried with
// exponential backoff while Config.Retryable allows it.
//
// Submit must not be called concurrently for the same key, otherwise FIFO
// order between those calls is undefined.
package syncqueue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// Executor runs jobs on one worker per shard.
type Executor struct {
	cfg    Config
	queues []chan queuedJob

	done   chan struct{}
	closed atomic.Bool

	wg sync.WaitGroup
}

// NewExecutor applies defaults to zero-valued fields and starts the workers.
func NewExecutor(cfg Config) *Executor {
	cfg.applyDefaults()

	e := &Executor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := range e.queues {
		ch := make(chan queuedJob, cfg.QueueSize)
		e.queues[i] = ch
		e.wg.Add(1)
		go e.runWorker(i, ch)
	}
	return e
}

// Submit enqueues job on the shard owning key. It returns ErrExecutorClosed
// after Stop, a *QueueFullError when the shard stays full for
// EnqueueTimeout, or ctx.Err() when ctx ends first.
func (e *Executor) Submit(ctx context.Context, key string, job Job) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	shard := e.shardFor(key)
	ch := e.queues[shard]

	timer := time.NewTimer(e.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-e.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Barrier waits until every job submitted for key before the call has run.
func (e *Executor) Barrier(ctx context.Context, key string) error {
	reached := make(chan struct{})
	err := e.Submit(ctx, key, JobFunc(func(context.Context) error {
		close(reached)
		return nil
	}))
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-reached:
		return nil
	}
}

// Stop rejects new work, lets every worker drain its queue with a single
// attempt per job, and waits for them. Safe to call more than once.
func (e *Executor) Stop() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.cfg.Logger.Debug(context.Background(), "syncqueue: stopping", "shards", e.cfg.Shards)
	close(e.done)
	e.wg.Wait()
	e.cfg.Logger.Debug(context.Background(), "syncqueue: stopped")
}

// Close implements io.Closer.
func (e *Executor) Close() error {
	e.Stop()
	return nil
}

func (e *Executor) runWorker(idx int, ch <-chan queuedJob) {
	defer e.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job != nil {
				if stopped := e.runWithRetry(label, qj); stopped {
					e.drain(idx, ch)
					return
				}
			}
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-e.done:
			e.drain(idx, ch)
			return
		}
	}
}

// runWithRetry runs one job until it succeeds, gives up, or the executor
// stops while waiting between attempts (reported as stopped).
func (e *Executor) runWithRetry(label string, qj queuedJob) (stopped bool) {
	if err := qj.ctx.Err(); err != nil {
		e.handleError(err)
		return false
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = e.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = e.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := e.runOnce(qj)
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if err == nil {
			return false
		}

		if !e.retryable(err) || attempt >= e.cfg.MaxAttempts {
			e.handleError(err)
			return false
		}

		retriesTotal.WithLabelValues(label).Inc()
		wait := time.NewTimer(exp.NextBackOff())
		select {
		case <-wait.C:
		case <-e.done:
			wait.Stop()
			e.handleError(err)
			return true
		case <-qj.ctx.Done():
			wait.Stop()
			e.handleError(qj.ctx.Err())
			return false
		}
	}
}

// runOnce converts a panicking job into an error so the shard survives.
func (e *Executor) runOnce(qj queuedJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("syncqueue: job panic: %v", r)
		}
	}()
	return qj.job.Run(qj.ctx)
}

func (e *Executor) drain(idx int, ch <-chan queuedJob) {
	label := labelFor(idx)
	drained := 0
	for {
		select {
		case qj := <-ch:
			if qj.job == nil {
				continue
			}
			if err := e.runOnce(qj); err != nil {
				e.handleError(err)
			}
			drained++
		default:
			if drained > 0 {
				e.cfg.Logger.Debug(context.Background(), "syncqueue: drained shard", "shard", idx, "jobs", drained)
			}
			queueDepth.WithLabelValues(label).Set(0)
			return
		}
	}
}

func (e *Executor) retryable(err error) bool {
	if e.cfg.Retryable == nil {
		return true
	}
	return e.cfg.Retryable(err)
}

func (e *Executor) handleError(err error) {
	if err == nil || e.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.cfg.Logger.Error(context.Background(), "syncqueue: error handler panic", "panic", r)
		}
	}()
	e.cfg.ErrorHandler(err)
}

func (e *Executor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(e.cfg.Shards))
}
