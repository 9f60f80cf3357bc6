package port

import (
	"context"
	"time"
)

// Task is one background job: a stable type name plus opaque payload
// bytes. The offline-notification path JSON-encodes its payload; the port
// itself stays serialization-agnostic.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error triggers a retry per the
// enqueue options, so handlers must be idempotent (re-saving the same
// notification is acceptable; double side effects are not).
type Handler func(ctx context.Context, task Task) error

// EnqueueOption tunes one enqueue. Zero values mean "unspecified";
// adapters map what the backend supports and ignore the rest.
type EnqueueOption struct {
	Queue     string        // logical queue name
	ProcessIn time.Duration // delay before processing
	ProcessAt time.Time     // absolute schedule time, wins over ProcessIn
	MaxRetry  int           // retry budget
	UniqueTTL time.Duration // dedupe window, if the backend supports it
	Retention time.Duration // how long to keep result metadata
	Deadline  time.Time     // hard processing deadline
}

// Client enqueues tasks for background processing. The delivery
// coordinator holds one to park notifications for offline receivers.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs the workers. Run blocks until the context is canceled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}
