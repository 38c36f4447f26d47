// internal/store/lock.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	approvalLockPrefix = "approval:lock:"
	DefaultApprovalTTL = 5 * time.Minute
)

// ApprovalLock is a short-lived claim that serializes resolution of a
// single turn across requests and replicas.
type ApprovalLock struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewApprovalLock(rdb redis.Cmdable, ttl time.Duration) *ApprovalLock {
	if ttl <= 0 {
		ttl = DefaultApprovalTTL
	}
	return &ApprovalLock{rdb: rdb, ttl: ttl}
}

// Acquire reports false when another request already holds the claim.
func (l *ApprovalLock) Acquire(ctx context.Context, turnID string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, approvalLockPrefix+turnID, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire approval lock: %w", err)
	}
	return ok, nil
}

// Hold drops the expiry so the claim outlives the TTL. Used once the
// executor has been called for turnID.
func (l *ApprovalLock) Hold(ctx context.Context, turnID string) error {
	if err := l.rdb.Set(ctx, approvalLockPrefix+turnID, time.Now().UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("hold approval lock: %w", err)
	}
	return nil
}

func (l *ApprovalLock) Release(ctx context.Context, turnID string) error {
	if err := l.rdb.Del(ctx, approvalLockPrefix+turnID).Err(); err != nil {
		return fmt.Errorf("release approval lock: %w", err)
	}
	return nil
}
