package port

import (
	"context"
)

// Store is the persisted key-value collaborator holding the session token and
// the cart. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error

	// CompareAndSwap stores next under key only if the current value still
	// equals old. A nil old means the key must be absent, a nil next removes
	// the key. It reports whether the swap happened.
	CompareAndSwap(ctx context.Context, key string, old, next *string) (bool, error)
}
