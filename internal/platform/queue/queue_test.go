package queue

import (
	"context"
	"testing"
	"time"

	"algoarena/internal/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisQueueRoundTrip(t *testing.T) {
	q := NewRedisQueue(newMiniredisClient(t), "judge_jobs_queue")
	ctx := context.Background()

	job := &model.JudgeJob{
		ID:        "job-1",
		Type:      model.JobTypeSubmission,
		UserID:    "user-1",
		ProblemID: "problem-1",
		Language:  "javascript",
		Code:      "function f() {}",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.Code, got.Code)
	assert.Equal(t, job.Language, got.Language)
}

func TestRedisQueueFIFOOrder(t *testing.T) {
	q := NewRedisQueue(newMiniredisClient(t), "judge_jobs_queue")
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, &model.JudgeJob{ID: id}))
	}
	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got.ID)
	}
}

func TestRedisRunResultStore(t *testing.T) {
	s := NewRedisRunResultStore(newMiniredisClient(t), time.Minute)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	actual := "3"
	results := []model.RunResult{{Input: "a = 1, b = 2", Actual: &actual, Verdict: model.VerdictAccepted}}
	require.NoError(t, s.Put(ctx, "job-9", results))

	got, ok, err := s.Get(ctx, "job-9")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, model.VerdictAccepted, got[0].Verdict)
	assert.Equal(t, "3", *got[0].Actual)
}

func TestMemoryQueueTimeout(t *testing.T) {
	q := NewMemoryQueue(1)
	got, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, &model.JudgeJob{ID: "m-1"}))
	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "m-1", got.ID)
}
