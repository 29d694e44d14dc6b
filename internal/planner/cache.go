package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrPlanNotFound = errors.New("plan not found")

type Plan struct {
	UserID    string    `json:"userId"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlanCache keeps the last completed plan per user. Entries expire,
// the agent remains the source of truth.
type PlanCache interface {
	StoreLatest(ctx context.Context, plan Plan) error
	Latest(ctx context.Context, userID string) (*Plan, error)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func latestPlanKey(userID string) string {
	return "plan::latest::" + userID
}

func (c *RedisCache) StoreLatest(ctx context.Context, plan Plan) error {
	planJson, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := c.client.Set(ctx, latestPlanKey(plan.UserID), planJson, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set latest plan: %w", err)
	}
	return nil
}

func (c *RedisCache) Latest(ctx context.Context, userID string) (*Plan, error) {
	planJson, err := c.client.Get(ctx, latestPlanKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("redis get latest plan: %w", err)
	}

	plan := &Plan{}
	if err := json.Unmarshal(planJson, plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	return plan, nil
}
