// Package session provides the keyed blob store backing in-progress booking
// journeys. One value per (user, flow) key, JSON-encoded by the caller,
// expiring after a TTL so abandoned wizards clean themselves up.
package session

import "context"

// Store is a session-scoped key-value store with TTL semantics.
type Store interface {
	// Get returns the stored blob and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores the blob, resetting the TTL.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
