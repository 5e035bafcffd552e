package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ownership/internal/domain"
)

const identityKeyPrefix = "ownership:identity:"

// IdentityCache keeps registry identities for ttl.
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{client: client, ttl: ttl}
}

func (c *IdentityCache) Get(ctx context.Context, siren string) (domain.Company, bool, error) {
	var out domain.Company
	b, err := c.client.Get(ctx, identityKeyPrefix+siren).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("identity cache get: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return domain.Company{}, false, nil
	}
	return out, true, nil
}

func (c *IdentityCache) Set(ctx context.Context, company domain.Company) error {
	b, err := json.Marshal(company)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, identityKeyPrefix+company.SIREN, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("identity cache set: %w", err)
	}
	return nil
}
