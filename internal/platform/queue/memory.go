package queue

import (
	"context"
	"sync"
	"time"

	"algoarena/internal/domain/model"
)

// MemoryQueue is the in-process JobQueue used by tests.
type MemoryQueue struct {
	jobs chan *model.JudgeJob
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{jobs: make(chan *model.JudgeJob, capacity)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job *model.JudgeJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*model.JudgeJob, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case job := <-q.jobs:
		return job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// MemoryRunResultStore is the in-process RunResultStore used by tests.
type MemoryRunResultStore struct {
	mu      sync.Mutex
	results map[string][]model.RunResult
}

func NewMemoryRunResultStore() *MemoryRunResultStore {
	return &MemoryRunResultStore{results: make(map[string][]model.RunResult)}
}

func (s *MemoryRunResultStore) Put(_ context.Context, jobID string, results []model.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[jobID] = results
	return nil
}

func (s *MemoryRunResultStore) Get(_ context.Context, jobID string) ([]model.RunResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[jobID]
	return r, ok, nil
}
