package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const logRetention = 30 * 24 * time.Hour

// RedisLog keeps each user's recent transactions in a capped redis list.
type RedisLog struct {
	client *redis.Client
}

func NewRedisLog(client *redis.Client) *RedisLog {
	return &RedisLog{client: client}
}

func logKey(userID string) string {
	return "payments:recent:" + userID
}

func (l *RedisLog) Record(ctx context.Context, payment Payment) error {
	raw, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("marshal payment: %w", err)
	}

	key := logKey(payment.UserID)
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, recentLimit-1)
	pipe.Expire(ctx, key, logRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrLogUnavailable, err)
	}
	return nil
}

func (l *RedisLog) Recent(ctx context.Context, userID string, limit int) ([]Payment, error) {
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}

	raws, err := l.client.LRange(ctx, logKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogUnavailable, err)
	}

	out := make([]Payment, 0, len(raws))
	for _, raw := range raws {
		var p Payment
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			// Skip entries written by an incompatible version.
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
