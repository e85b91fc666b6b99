// Package presence tracks which live connections belong to which game room.
//
// The in-memory registry is the single-instance default; the redis-backed
// registry survives restarts and can be shared by multiple instances.
// Membership is a plain set, so Join and Leave are idempotent.
package presence

import "context"

type Registry interface {
	// Join records a connection as a member of a game room.
	Join(ctx context.Context, gameID, connectionID string) error
	// Leave removes a connection from a room. Removing an absent
	// connection is not an error.
	Leave(ctx context.Context, gameID, connectionID string) error
	// Members returns the connection ids currently in a room.
	Members(ctx context.Context, gameID string) ([]string, error)
	// Count returns the number of connections in a room.
	Count(ctx context.Context, gameID string) (int, error)
	Close() error
}
