package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solar-analytics/parquet-gate/pkg/config"
)

// connectTimeout bounds the ping New does before handing out a client
const connectTimeout = 3 * time.Second

// Client is the optional Redis behind the latest-run cache and the run
// lock. A disabled client (REDIS_ENABLED=false, or a nil *Client) makes
// cache reads miss, drops cache writes and always grants the lock, so
// the gate behaves the same on a single host without Redis.
// ⭐ SSOT: Redis connections are managed here only
type Client struct {
	rdb  *redis.Client
	addr string
}

// Disabled returns a client that never talks to Redis
func Disabled() *Client {
	return &Client{}
}

// New connects to REDIS_HOST:REDIS_PORT, or returns Disabled() when
// REDIS_ENABLED is false. An enabled Redis that does not answer is an error.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return Disabled(), nil
	}

	addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
	c := &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}),
		addr: addr,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// Ping checks the connection. A disabled client is always reachable.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", c.addr, err)
	}
	return nil
}

// Close closes the connection
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// Enabled reports whether the client talks to Redis
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Addr is host:port, empty when disabled
func (c *Client) Addr() string {
	if !c.Enabled() {
		return ""
	}
	return c.addr
}

// Redis returns the underlying client, nil when disabled
func (c *Client) Redis() *redis.Client {
	if !c.Enabled() {
		return nil
	}
	return c.rdb
}
