package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnalysisProgress is the snapshot a status-polling caller reads.
type AnalysisProgress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Coordinator provides the per-job mutual exclusion, cooperative
// cancellation, and progress reporting shared by every process that can
// run a bulk analysis.
type Coordinator interface {
	// AcquireLock returns true iff this call won the per-job lock. A store
	// error is returned as an error, never as a silent false/true: the
	// at-most-one-run guarantee depends on failing closed.
	AcquireLock(ctx context.Context, jobID string, ttl time.Duration) (bool, error)
	// ReleaseLock deletes the lock. Releasing an absent or expired lock is
	// a no-op.
	ReleaseLock(ctx context.Context, jobID string) error
	RequestCancellation(ctx context.Context, jobID string, ttl time.Duration) error
	IsCancellationRequested(ctx context.Context, jobID string) (bool, error)
	UpdateProgress(ctx context.Context, jobID string, processed, total int) error
	// GetProgress returns nil when no progress has been recorded for the job.
	GetProgress(ctx context.Context, jobID string) (*AnalysisProgress, error)
}

type redisCoordinator struct {
	client *redis.Client
}

func NewRedisCoordinator(client *redis.Client) Coordinator {
	return &redisCoordinator{client: client}
}

func lockKey(jobID string) string {
	return "lock:analysis:" + jobID
}

func cancelKey(jobID string) string {
	return "cancel:analysis:" + jobID
}

func progressProcessedKey(jobID string) string {
	return "progress:analysis:" + jobID + ":processed"
}

func progressTotalKey(jobID string) string {
	return "progress:analysis:" + jobID + ":total"
}

// AcquireLock implements Coordinator.
func (c *redisCoordinator) AcquireLock(ctx context.Context, jobID string, ttl time.Duration) (bool, error) {
	acquired, err := c.client.SetNX(ctx, lockKey(jobID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire analysis lock: %w", err)
	}

	return acquired, nil
}

// ReleaseLock implements Coordinator.
func (c *redisCoordinator) ReleaseLock(ctx context.Context, jobID string) error {
	if err := c.client.Del(ctx, lockKey(jobID)).Err(); err != nil {
		return fmt.Errorf("failed to release analysis lock: %w", err)
	}

	return nil
}

// RequestCancellation implements Coordinator. Fire-and-forget: the short
// TTL keeps a stale flag from cancelling a later run.
func (c *redisCoordinator) RequestCancellation(ctx context.Context, jobID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, cancelKey(jobID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cancellation flag: %w", err)
	}

	return nil
}

// IsCancellationRequested implements Coordinator.
func (c *redisCoordinator) IsCancellationRequested(ctx context.Context, jobID string) (bool, error) {
	n, err := c.client.Exists(ctx, cancelKey(jobID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cancellation flag: %w", err)
	}

	return n > 0, nil
}

// UpdateProgress implements Coordinator. Last write wins; only the lock
// holder writes, so no ordering beyond that is needed.
func (c *redisCoordinator) UpdateProgress(ctx context.Context, jobID string, processed, total int) error {
	err := c.client.MSet(ctx,
		progressProcessedKey(jobID), processed,
		progressTotalKey(jobID), total,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	return nil
}

// GetProgress implements Coordinator.
func (c *redisCoordinator) GetProgress(ctx context.Context, jobID string) (*AnalysisProgress, error) {
	values, err := c.client.MGet(ctx, progressProcessedKey(jobID), progressTotalKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}

	if len(values) != 2 || values[0] == nil || values[1] == nil {
		return nil, nil
	}

	processed, err := parseCounter(values[0])
	if err != nil {
		return nil, fmt.Errorf("malformed processed counter: %w", err)
	}

	total, err := parseCounter(values[1])
	if err != nil {
		return nil, fmt.Errorf("malformed total counter: %w", err)
	}

	return &AnalysisProgress{Processed: processed, Total: total}, nil
}

func parseCounter(value interface{}) (int, error) {
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter type %T", value)
	}

	return strconv.Atoi(s)
}
