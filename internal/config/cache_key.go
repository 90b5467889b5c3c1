package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ProjectionKey returns the cache key for a projected spec.
// kind is "public" or "model_solution"; fingerprint identifies the private spec.
func (r *CacheKeyStruct) ProjectionKey(kind, fingerprint string) string {
	return fmt.Sprintf("projection:%s:%s", kind, fingerprint)
}

// GradingChannel returns the Redis PubSub channel name for live grading events.
func (r *CacheKeyStruct) GradingChannel() string {
	return "gradings:stream"
}

var CacheKey = NewCacheKeyStruct()
