// Package redisutil connects to Redis and wraps the client with the small
// set of operations the catalog's read-through cache needs.
package redisutil

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect dials Redis from either a bare host:port or a redis:// URL,
// pinging once to fail fast at startup rather than on first use.
func Connect(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is empty")
	}

	var client *redis.Client
	if !strings.Contains(redisURL, "://") {
		log.Printf("🔄 connecting to redis: %s", redisURL)
		client = redis.NewClient(&redis.Options{
			Addr:         redisURL,
			PoolSize:     50,
			MinIdleConns: 5,
			MaxRetries:   3,
		})
	} else {
		parsed, err := url.Parse(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}

		addr := parsed.Host
		if parsed.Port() == "" {
			if parsed.Scheme == "rediss" {
				addr = parsed.Hostname() + ":6380"
			} else {
				addr = parsed.Hostname() + ":6379"
			}
		}

		password, _ := parsed.User.Password()
		db := 0
		if len(parsed.Path) > 1 {
			if n, err := strconv.Atoi(parsed.Path[1:]); err == nil {
				db = n
			}
		}

		log.Printf("🔄 connecting to redis: %s, db=%d", addr, db)
		client = redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     50,
			MinIdleConns: 5,
			MaxRetries:   3,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Println("✅ redis connected")
	return client, nil
}

// Client is the thin wrapper the catalog cache depends on instead of the
// bare *redis.Client. The catalog accepts a nil *Client, which disables the
// cache tier; tests use that rather than a fake.
type Client struct {
	raw *redis.Client
}

func New(raw *redis.Client) *Client {
	return &Client{raw: raw}
}

// SetJSON marshals value and stores it with the given TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.raw.Set(ctx, key, data, ttl).Err()
}

// GetJSON fetches key and unmarshals it into dest. Returns an error
// (redis.Nil on a plain cache miss) that callers treat as "fall through to
// the authoritative store".
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.raw.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *Client) Delete(ctx context.Context, key string) error {
	return c.raw.Del(ctx, key).Err()
}

func (c *Client) Close() error {
	return c.raw.Close()
}
