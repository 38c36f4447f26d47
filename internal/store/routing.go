// internal/store/routing.go
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	routingKeyPrefix = "routing:"
	routingTotal     = "total"
	routingTTL       = 7 * 24 * time.Hour
)

// RoutingStats counts which classifier model handled each message of a
// session.
type RoutingStats struct {
	rdb redis.Cmdable
}

func NewRoutingStats(rdb redis.Cmdable) *RoutingStats {
	return &RoutingStats{rdb: rdb}
}

func (s *RoutingStats) Record(ctx context.Context, sessionID, primaryModel string) error {
	if primaryModel == "" {
		primaryModel = "unknown"
	}
	key := routingKeyPrefix + sessionID

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, primaryModel, 1)
		pipe.HIncrBy(ctx, key, routingTotal, 1)
		pipe.Expire(ctx, key, routingTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record routing: %w", err)
	}
	return nil
}

// Get returns per-model counts plus a "total" entry. Unknown sessions
// return an empty map.
func (s *RoutingStats) Get(ctx context.Context, sessionID string) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, routingKeyPrefix+sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("get routing stats: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}
