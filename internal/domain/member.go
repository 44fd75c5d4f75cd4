package domain

// ConnectionStatus mirrors the client visibility signal, not the
// transport state: a member with a hidden tab is "offline" while its
// socket stays open.
type ConnectionStatus string

const (
	StatusOnline  ConnectionStatus = "online"
	StatusOffline ConnectionStatus = "offline"
)

// Member is one participant's presence record inside a room for the
// lifetime of a single connection.
type Member struct {
	ConnectionID   ConnectionID     `json:"socketId"`
	Identity       string           `json:"userId"`
	Username       string           `json:"username"`
	RoomID         RoomID           `json:"roomId"`
	Status         ConnectionStatus `json:"status"`
	CursorPosition int              `json:"cursorPosition"`
	Typing         bool             `json:"typing"`
	CurrentFile    *string          `json:"currentFile"`
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(connID ConnectionID, identity, username string, room RoomID) *Member {
	return &Member{
		ConnectionID:   connID,
		Identity:       identity,
		Username:       username,
		RoomID:         room,
		Status:         StatusOnline,
		CursorPosition: 0,
		Typing:         false,
		CurrentFile:    nil,
	}
}
