package app

import "errors"

var (
	// ErrRoomFull and ErrDuplicateIdentity are admission-time outcomes
	// reported back to the requesting client.
	ErrRoomFull          = errors.New("room full")
	ErrDuplicateIdentity = errors.New("duplicate identity in room")

	// ErrMemberNotFound and ErrRoomNotFound are relay-time conditions.
	// They are absorbed and logged, never surfaced to any client.
	ErrMemberNotFound = errors.New("member not found")
	ErrRoomNotFound   = errors.New("room not found")
)
