package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"algoarena/internal/domain/model"
	"algoarena/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis dials the configured Redis instance and verifies it.
func ConnectRedis() *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
	return rdb
}

// RedisQueue carries whole JSON job payloads on a Redis list: LPUSH on
// enqueue, BRPOP on dequeue.
type RedisQueue struct {
	rdb  *redis.Client
	name string
}

func NewRedisQueue(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *model.JudgeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal judge job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to push job to Redis queue '%s': %w", q.name, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*model.JudgeJob, error) {
	result, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Timed out with no job.
		}
		return nil, fmt.Errorf("failed to BRPop from Redis queue '%s': %w", q.name, err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
	}

	var job model.JudgeJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal judge job: %w", err)
	}
	return &job, nil
}

// RedisRunResultStore keeps run-code results under a TTL'd key per job.
type RedisRunResultStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRunResultStore(rdb *redis.Client, ttl time.Duration) *RedisRunResultStore {
	return &RedisRunResultStore{rdb: rdb, ttl: ttl}
}

func (s *RedisRunResultStore) key(jobID string) string {
	return "run_result:" + jobID
}

func (s *RedisRunResultStore) Put(ctx context.Context, jobID string, results []model.RunResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal run results: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(jobID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store run results for job %s: %w", jobID, err)
	}
	return nil
}

func (s *RedisRunResultStore) Get(ctx context.Context, jobID string) ([]model.RunResult, bool, error) {
	data, err := s.rdb.Get(ctx, s.key(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load run results for job %s: %w", jobID, err)
	}
	var results []model.RunResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal run results for job %s: %w", jobID, err)
	}
	return results, true, nil
}
