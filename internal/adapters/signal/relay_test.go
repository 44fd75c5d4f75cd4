package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// threeInRoom joins alice, bob and carol into r1 and drains their
// join-time frames.
func threeInRoom(t *testing.T, f *fixture) (c1, c2, c3 *WsConn) {
	t.Helper()
	c1 = f.connect("c1", "u1")
	c2 = f.connect("c2", "u2")
	c3 = f.connect("c3", "u3")
	f.join(t, c1, "r1", "alice")
	f.join(t, c2, "r1", "bob")
	f.join(t, c3, "r1", "carol")
	recvEvent(t, c1) // bob joined
	recvEvent(t, c1) // carol joined
	recvEvent(t, c2) // carol joined
	return c1, c2, c3
}

func TestScenarioDFileUpdateExcludesSender(t *testing.T) {
	f := newFixture(5)
	c1, c2, c3 := threeInRoom(t, f)

	f.send(c1, EventFileUpdated, map[string]any{"fileId": "f1", "newContent": "x"})

	for _, peer := range []*WsConn{c2, c3} {
		ev := recvEvent(t, peer)
		assert.Equal(t, EventFileUpdated, ev["type"])
		assert.Equal(t, "f1", ev["fileId"])
		assert.Equal(t, "x", ev["newContent"])
	}
	recvNone(t, c1)
}

func TestStructuralRelayPreservesPayload(t *testing.T) {
	f := newFixture(5)
	c1, c2, _ := threeInRoom(t, f)

	f.send(c1, EventDirectoryCreated, map[string]any{
		"parentDirId":  "root",
		"newDirectory": map[string]any{"id": "d1", "name": "src"},
	})
	ev := recvEvent(t, c2)
	assert.Equal(t, EventDirectoryCreated, ev["type"])
	assert.Equal(t, "root", ev["parentDirId"])
	assert.Equal(t, "src", ev["newDirectory"].(map[string]any)["name"])
}

func TestRelayFromUnknownSenderIsDropped(t *testing.T) {
	f := newFixture(5)
	_, c2, _ := threeInRoom(t, f)

	stranger := f.connect("cx", "ux") // never joined a room
	f.send(stranger, EventFileDeleted, map[string]any{"fileId": "f1"})

	recvNone(t, c2)
	recvNone(t, stranger)
}

func TestTypingBroadcastCarriesMutatedMember(t *testing.T) {
	f := newFixture(5)
	c1, c2, _ := threeInRoom(t, f)

	f.send(c1, EventTypingStart, map[string]any{"cursorPosition": 17})
	ev := recvEvent(t, c2)
	require.Equal(t, EventTypingStart, ev["type"])
	user := ev["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, true, user["typing"])
	assert.Equal(t, float64(17), user["cursorPosition"])

	f.send(c1, EventTypingPause, nil)
	ev = recvEvent(t, c2)
	require.Equal(t, EventTypingPause, ev["type"])
	assert.Equal(t, false, ev["user"].(map[string]any)["typing"])
	recvNone(t, c1)
}

func TestUserOfflineUpdatesStatusAndRelays(t *testing.T) {
	f := newFixture(5)
	c1, c2, _ := threeInRoom(t, f)

	f.send(c1, EventUserOffline, map[string]any{"socketId": "c1"})
	ev := recvEvent(t, c2)
	assert.Equal(t, EventUserOffline, ev["type"])
	assert.Equal(t, "c1", ev["socketId"])

	m, ok := f.ctl.Orch.Registry.MemberByConn("c1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusOffline, m.Status)

	f.send(c1, EventUserOnline, map[string]any{"socketId": "c1"})
	recvEvent(t, c2)
	m, _ = f.ctl.Orch.Registry.MemberByConn("c1")
	assert.Equal(t, domain.StatusOnline, m.Status)
}

func TestChatInjectsSenderIdentity(t *testing.T) {
	f := newFixture(5)
	c1, c2, _ := threeInRoom(t, f)

	f.send(c1, EventSendMessage, map[string]any{
		"message": map[string]any{"message": "hi there"},
	})
	ev := recvEvent(t, c2)
	require.Equal(t, EventReceiveMessage, ev["type"])
	msg := ev["message"].(map[string]any)
	assert.Equal(t, "hi there", msg["message"])
	assert.Equal(t, "alice", msg["username"])
	assert.Equal(t, "u1", msg["userId"])
	assert.Equal(t, "c1", msg["socketId"])
	recvNone(t, c1)
}

func TestSyncFileStructureReachesOnlyTarget(t *testing.T) {
	f := newFixture(5)
	c1, c2, c3 := threeInRoom(t, f)

	f.send(c1, EventSyncFileStructure, map[string]any{
		"fileStructure": map[string]any{"id": "root"},
		"openFiles":     []any{"f1"},
		"activeFile":    "f1",
		"socketId":      "c3",
	})
	ev := recvEvent(t, c3)
	assert.Equal(t, EventSyncFileStructure, ev["type"])
	assert.Equal(t, "root", ev["fileStructure"].(map[string]any)["id"])
	assert.Equal(t, "f1", ev["activeFile"])
	recvNone(t, c2)
	recvNone(t, c1)
}

func TestDrawingRequestAndTargetedSync(t *testing.T) {
	f := newFixture(5)
	c1, c2, c3 := threeInRoom(t, f)

	f.send(c1, EventRequestDrawing, nil)
	for _, peer := range []*WsConn{c2, c3} {
		ev := recvEvent(t, peer)
		assert.Equal(t, EventRequestDrawing, ev["type"])
		assert.Equal(t, "c1", ev["socketId"])
	}
	recvNone(t, c1)

	f.send(c2, EventSyncDrawing, map[string]any{
		"drawingData": map[string]any{"shapes": []any{"rect"}},
		"socketId":    "c1",
	})
	ev := recvEvent(t, c1)
	assert.Equal(t, EventSyncDrawing, ev["type"])
	assert.NotNil(t, ev["drawingData"])
	recvNone(t, c3)
}

func TestDrawingUpdateBroadcast(t *testing.T) {
	f := newFixture(5)
	c1, c2, c3 := threeInRoom(t, f)

	f.send(c1, EventDrawingUpdate, map[string]any{"snapshot": map[string]any{"v": 2}})
	for _, peer := range []*WsConn{c2, c3} {
		ev := recvEvent(t, peer)
		assert.Equal(t, EventDrawingUpdate, ev["type"])
	}
	recvNone(t, c1)
}

func TestSaveRoomFilesReplacesSnapshotAndNotifiesRoom(t *testing.T) {
	f := newFixture(5)
	c1, c2, _ := threeInRoom(t, f)

	files := []any{
		map[string]any{"name": "main.go", "content": "package main", "language": "go"},
	}
	f.send(c1, EventSaveRoomFiles, map[string]any{"roomId": "r1", "files": files})

	ev := recvEvent(t, c2)
	require.Equal(t, EventRoomFilesUpdated, ev["type"])
	got := ev["files"].([]any)
	require.Len(t, got, 1)
	assert.Equal(t, "main.go", got[0].(map[string]any)["name"])
	recvNone(t, c1)

	// Replace-all semantics: a reload returns the saved set verbatim,
	// with no merge against the seeded default.
	loaded, err := f.store.LoadOrCreate(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "main.go", loaded[0].Name)
}

func TestSaveRoomFilesFailureIsNotAcknowledged(t *testing.T) {
	f := newFixture(5)
	c1, c2, _ := threeInRoom(t, f)

	f.store.saveErr = assert.AnError
	f.send(c1, EventSaveRoomFiles, map[string]any{
		"roomId": "r1",
		"files":  []any{map[string]any{"name": "a.txt"}},
	})
	recvNone(t, c2)
	recvNone(t, c1)
}

func TestUnknownEventIsIgnored(t *testing.T) {
	f := newFixture(5)
	c1, c2, _ := threeInRoom(t, f)

	f.send(c1, "warp-drive", nil)
	f.ctl.handleEvent(context.Background(), c1, []byte("{not json"))
	recvNone(t, c2)
	recvNone(t, c1)
}
