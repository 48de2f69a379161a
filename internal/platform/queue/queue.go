// Package queue holds the durable job queue contract between the submission
// API (producer) and the judge worker (consumer). The queue is an explicit
// dependency passed in at construction time so tests can substitute the
// in-memory implementation.
package queue

import (
	"context"
	"time"

	"algoarena/internal/domain/model"
)

// JobQueue is a single-producer/multiple-consumer durable queue of judge
// jobs. Enqueue returns once the job is durably queued; it never waits for
// grading. Dequeue returns (nil, nil) when the wait times out with no job.
type JobQueue interface {
	Enqueue(ctx context.Context, job *model.JudgeJob) error
	Dequeue(ctx context.Context, timeout time.Duration) (*model.JudgeJob, error)
}

// RunResultStore keeps short-lived run-code outcomes for the client to poll.
type RunResultStore interface {
	Put(ctx context.Context, jobID string, results []model.RunResult) error
	// Get returns (nil, false, nil) when no result exists yet.
	Get(ctx context.Context, jobID string) ([]model.RunResult, bool, error)
}
