package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "taskpulse:plans:"

// RedisPlanCache stores each user's plan map as a Redis hash keyed by task
// id, replaced wholesale on every save.
type RedisPlanCache struct {
	client *redis.Client
}

func NewRedisPlanCache(client *redis.Client) *RedisPlanCache {
	return &RedisPlanCache{client: client}
}

func (c *RedisPlanCache) key(userID string) string {
	return redisKeyPrefix + userID
}

func (c *RedisPlanCache) Load(ctx context.Context, userID string) (map[string]Plan, error) {
	fields, err := c.client.HGetAll(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load plan cache: %w", err)
	}

	plans := make(map[string]Plan, len(fields))
	for taskID, raw := range fields {
		var p Plan
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			// A corrupt entry is dropped; the scheduler recomputes it.
			continue
		}
		plans[taskID] = p
	}
	return plans, nil
}

func (c *RedisPlanCache) Save(ctx context.Context, userID string, plans map[string]Plan) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key(userID))

	if len(plans) > 0 {
		fields := make(map[string]interface{}, len(plans))
		for taskID, p := range plans {
			raw, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode plan %s: %w", taskID, err)
			}
			fields[taskID] = raw
		}
		pipe.HSet(ctx, c.key(userID), fields)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save plan cache: %w", err)
	}
	return nil
}
