// Package cache wraps the optional redis instance. Everything here
// degrades: a nil *Cache means "no redis" and callers fall back to the
// database or to in-process state.
package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ganamos/backend/internal/models"
)

type Cache struct {
	rdb *goredis.Client
}

// New connects and pings; an empty addr returns (nil, nil) so the caller
// can wire the no-cache path without special-casing.
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Cache{rdb: rdb}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

const priceKey = "price:latest:"

func (c *Cache) SetPrice(ctx context.Context, p models.BitcoinPrice) {
	if c == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, priceKey+p.Currency, b, 15*time.Minute).Err()
}

func (c *Cache) GetPrice(ctx context.Context, currency string) (models.BitcoinPrice, bool) {
	if c == nil {
		return models.BitcoinPrice{}, false
	}
	b, err := c.rdb.Get(ctx, priceKey+currency).Bytes()
	if err != nil {
		return models.BitcoinPrice{}, false
	}
	var p models.BitcoinPrice
	if err := json.Unmarshal(b, &p); err != nil {
		return models.BitcoinPrice{}, false
	}
	return p, true
}
