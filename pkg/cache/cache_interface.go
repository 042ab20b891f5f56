package cache

import (
	"context"
	"time"
)

// Cache interface định nghĩa contract cho cache layer
// Cho phép swap implementation (Redis, no-op)
type Cache interface {
	// Get lấy data từ cache và unmarshal vào dest
	// Returns: (found bool, error)
	// - found = true: cache hit, data đã unmarshal vào dest
	// - found = false: cache miss, dest không bị thay đổi
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set marshals value to JSON and stores it with TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete xóa các keys khỏi cache
	Delete(ctx context.Context, keys ...string) error

	// Incr tăng counter và reset TTL của nó, trả về giá trị mới
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Ping kiểm tra connection
	Ping(ctx context.Context) error
}

// Noop is used when Redis is disabled. Every lookup misses.
type Noop struct{}

func NewNoop() Cache { return Noop{} }

func (Noop) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                       { return nil }
func (Noop) Incr(context.Context, string, time.Duration) (int64, error)    { return 0, nil }
func (Noop) Ping(context.Context) error                                    { return nil }
