package ports

import "context"

// StateStore is the durable namespaced key/value store the engine persists
// into. Values are JSON-encoded whole-value overwrites; there are no
// partial updates. Implementations must treat missing or malformed data as
// absent rather than failing.
type StateStore interface {
	// Get decodes the value stored under key into out and reports whether
	// a usable value was found.
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
