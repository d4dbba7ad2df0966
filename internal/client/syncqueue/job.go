package syncqueue

import "context"

// Job is one unit of outbound sync work, e.g. pushing a resolved entry.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a plain function to Job.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }
