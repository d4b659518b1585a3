// Package rds provides a small redis key value client
package rds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the redis client
type Config struct {
	URL          string // redis://[:password@]host:port/db
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client wraps go-redis with the byte oriented surface the cache layer needs
type Client struct {
	c redis.UniversalClient
}

// ParseConfig turns Config into go-redis options
func ParseConfig(cfg Config) (*redis.Options, error) {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		return nil, errors.New("rds: empty url")
	}
	opt, err := redis.ParseURL(u)
	if err != nil {
		return nil, fmt.Errorf("rds: parse url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opt.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opt.WriteTimeout = cfg.WriteTimeout
	}
	return opt, nil
}

// Open connects and pings once
func Open(ctx context.Context, cfg Config) (*Client, error) {
	opt, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("rds: ping: %w", err)
	}
	return &Client{c: c}, nil
}

// New wraps an existing go-redis client, mostly for tests
func New(c redis.UniversalClient) *Client { return &Client{c: c} }

// Get returns the value and whether the key existed
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores value with ttl, zero ttl means no expiry
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.c.Set(ctx, key, value, ttl).Err()
}

// Del removes keys, missing keys are not an error
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.c.Del(ctx, keys...).Err()
}

// Ping checks the server is reachable
func (c *Client) Ping(ctx context.Context) error { return c.c.Ping(ctx).Err() }

// Close closes the pool
func (c *Client) Close() error { return c.c.Close() }
