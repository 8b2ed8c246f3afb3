// Package cache mirrors live game snapshots into redis so that state
// reads can survive an engine restart or an idle-session sweep.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nelhage/fourline/game"
)

const keyPrefix = "fourline:game:"

const DefaultTTL = 24 * time.Hour

type Cache struct {
	client *redis.Client
	ttl    time.Duration

	Debug int
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Dial connects to addr and verifies the server answers before
// returning a cache around the connection.
func Dial(ctx context.Context, addr, password string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return New(client, ttl), nil
}

// Key returns the redis key a game's snapshot lives under.
func Key(id string) string {
	return keyPrefix + id
}

// RecordMove refreshes the cached snapshot on every transition. Write
// failures are logged and dropped; the cache is advisory and must not
// fail a move.
func (c *Cache) RecordMove(snap game.Snapshot, mv game.Move) {
	if err := c.Put(context.Background(), snap); err != nil {
		log.Printf("[cache] put %s: %v", snap.GameID, err)
	} else if c.Debug > 1 {
		log.Printf("[cache] put %s move=%d", snap.GameID, mv.Number)
	}
}

func (c *Cache) Put(ctx context.Context, snap game.Snapshot) error {
	raw, err := json.Marshal(&snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(snap.GameID), raw, c.ttl).Err()
}

// Get loads a cached snapshot. A miss surfaces as redis.Nil.
func (c *Cache) Get(ctx context.Context, id string) (game.Snapshot, error) {
	raw, err := c.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		return game.Snapshot{}, err
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("cache: decode %s: %w", id, err)
	}
	return snap, nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, Key(id)).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
