package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const insightsKey = "payments:insights:v1"

// InsightsCache stores the insights rollup as one JSON value with a TTL.
type InsightsCache struct {
	client redis.Cmdable
	key    string
}

func NewInsightsCache(client redis.Cmdable) *InsightsCache {
	return &InsightsCache{client: client, key: insightsKey}
}

func (c *InsightsCache) Get(ctx context.Context) (*domain.Insights, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	var out domain.Insights
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode cached insights: %w", err)
	}
	return &out, nil
}

func (c *InsightsCache) Put(ctx context.Context, insights domain.Insights, ttl time.Duration) error {
	raw, err := json.Marshal(insights)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}
