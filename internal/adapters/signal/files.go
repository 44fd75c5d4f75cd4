package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// handleSyncFileStructure relays one peer's full tree to exactly the
// connection that asked for it. The sender names the target; no one
// else sees the event.
func (ctl *Controller) handleSyncFileStructure(_ context.Context, c *WsConn, data []byte) {
	var p struct {
		FileStructure json.RawMessage     `json:"fileStructure"`
		OpenFiles     json.RawMessage     `json:"openFiles"`
		ActiveFile    json.RawMessage     `json:"activeFile"`
		Target        domain.ConnectionID `json:"socketId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("bad sync-file-structure payload")
		return
	}
	ctl.sendTo(p.Target, struct {
		Type          string          `json:"type"`
		FileStructure json.RawMessage `json:"fileStructure"`
		OpenFiles     json.RawMessage `json:"openFiles"`
		ActiveFile    json.RawMessage `json:"activeFile"`
	}{EventSyncFileStructure, p.FileStructure, p.OpenFiles, p.ActiveFile})
}

// handleSaveRoomFiles overwrites the room's durable snapshot and tells
// the rest of the room about the new set. A failed save is logged and
// not acknowledged; no fabricated success.
func (ctl *Controller) handleSaveRoomFiles(ctx context.Context, c *WsConn, data []byte) {
	var p struct {
		RoomID domain.RoomID     `json:"roomId"`
		Files  []domain.RoomFile `json:"files"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("bad save-room-files payload")
		return
	}
	if err := ctl.Orch.SaveFiles(ctx, p.RoomID, p.Files); err != nil {
		return
	}
	ctl.broadcastRoom(p.RoomID, c.id, struct {
		Type  string            `json:"type"`
		Files []domain.RoomFile `json:"files"`
	}{EventRoomFilesUpdated, p.Files})
}
