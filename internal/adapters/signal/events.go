package signal

import (
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// Wire event names. Inbound and outbound structural events share the
// same name; the relay forwards them under the type they arrived with.
const (
	EventJoinRequest      = "join-request"
	EventLeave            = "leave"
	EventJoinAccepted     = "join-accepted"
	EventUserJoined       = "user-joined"
	EventUserDisconnected = "user-disconnected"
	EventUsernameExists   = "username-exists"
	EventRoomFull         = "room-full"

	EventSyncFileStructure = "sync-file-structure"
	EventDirectoryCreated  = "directory-created"
	EventDirectoryUpdated  = "directory-updated"
	EventDirectoryRenamed  = "directory-renamed"
	EventDirectoryDeleted  = "directory-deleted"
	EventFileCreated       = "file-created"
	EventFileUpdated       = "file-updated"
	EventFileRenamed       = "file-renamed"
	EventFileDeleted       = "file-deleted"

	EventSaveRoomFiles    = "save-room-files"
	EventRoomFiles        = "room-files"
	EventRoomFilesUpdated = "room-files-updated"

	EventTypingStart = "typing-start"
	EventTypingPause = "typing-pause"
	EventUserOnline  = "user-online"
	EventUserOffline = "user-offline"

	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"

	EventRequestDrawing = "request-drawing"
	EventSyncDrawing    = "sync-drawing"
	EventDrawingUpdate  = "drawing-update"

	EventError = "error"
)

// userEvent carries a full member record, used for join/disconnect and
// typing broadcasts where peers need the post-mutation state.
type userEvent struct {
	Type string        `json:"type"`
	User domain.Member `json:"user"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func errEvent(msg string) errorEvent {
	return errorEvent{Type: EventError, Error: msg}
}
