package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by a ProjectionCache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ProjectionCache stores serialized projections.
type ProjectionCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Queue hands payloads to background workers.
type Queue interface {
	Push(ctx context.Context, queue string, payload []byte) error
}

// PushJSON encodes v and pushes it onto the named queue. Nothing is pushed when v
// cannot be encoded.
func PushJSON(ctx context.Context, q Queue, queue string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", queue, err)
	}
	return q.Push(ctx, queue, payload)
}

// Broadcaster fans payloads out to live subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, channel string, payload []byte) error
}

// RedisBus implements ProjectionCache, Queue, Broadcaster and Subscriber on one Redis client.
type RedisBus struct {
	rdb *redis.Client
}

// NewRedisBus creates a new RedisBus.
func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (b *RedisBus) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBus) Push(ctx context.Context, queue string, payload []byte) error {
	return b.rdb.RPush(ctx, queue, payload).Err()
}

func (b *RedisBus) Broadcast(ctx context.Context, channel string, payload []byte) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

// Subscriber streams the payloads published on a channel until the returned close
// function is called.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error)
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error) {
	sub := b.rdb.Subscribe(ctx, channel)
	out := make(chan []byte)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close
}

// QueueLengths reports the backlog of each queue in one pipelined round trip.
func (b *RedisBus) QueueLengths(ctx context.Context, queues ...string) (map[string]int64, error) {
	pipe := b.rdb.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(queues))
	for _, q := range queues {
		cmds[q] = pipe.LLen(ctx, q)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	lengths := make(map[string]int64, len(queues))
	for q, cmd := range cmds {
		lengths[q] = cmd.Val()
	}
	return lengths, nil
}

// Ping checks the Redis connection.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}
