package domain

// RoomID is the opaque room key chosen by clients.
type RoomID string

// ConnectionID identifies one live transport connection. A reconnect
// produces a fresh ConnectionID; nothing survives across it.
type ConnectionID string
