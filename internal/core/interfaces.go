package core

import (
	"context"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// Conn abstracts one member's transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	ID() domain.ConnectionID
	TrySend(Frame) error
	Close()
	Closed() bool
}

// RoomTransport exposes the transport layer's own view of room
// membership. Capacity checks run against this live view rather than
// the application registry, so entries that lag a socket teardown
// cannot hold a seat.
type RoomTransport interface {
	// RoomSize reports the number of open connections joined to the
	// room. An error means introspection failed, not that the room is
	// full; callers fail open on it.
	RoomSize(room domain.RoomID) (int, error)
	Join(room domain.RoomID, conn domain.ConnectionID)
	Leave(room domain.RoomID, conn domain.ConnectionID)
}

// FileStore is the persistence bridge for a room's durable file set.
// Implementations own storage entirely; this process only loads on
// join and overwrites on explicit save.
type FileStore interface {
	// LoadOrCreate returns the room's file set, seeding a default one
	// if the room has never been saved. Safe to call concurrently for
	// the same room without creating duplicates.
	LoadOrCreate(ctx context.Context, room domain.RoomID) ([]domain.RoomFile, error)
	// Upsert replaces the room's file set wholesale and stamps the
	// update time. A missing room is created.
	Upsert(ctx context.Context, room domain.RoomID, files []domain.RoomFile) error
}
