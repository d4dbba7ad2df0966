package syncqueue

import (
	"errors"
	"fmt"
)

// ErrQueueFull is returned when an entry's shard stayed full for the whole
// enqueue timeout. The caller may retry later.
var ErrQueueFull = errors.New("sync queue full")

// ErrExecutorClosed is returned once Stop has been called.
var ErrExecutorClosed = errors.New("sync queue closed")

// QueueFullError satisfies errors.Is(err, ErrQueueFull) and carries the
// shard state at the time of the timeout.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("sync queue shard %d full (len=%d cap=%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
