package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomID_UnmarshalJSON_String(t *testing.T) {
	var id RoomID
	require.NoError(t, json.Unmarshal([]byte(`"abc-123"`), &id))
	require.Equal(t, RoomID("abc-123"), id)
}

func TestRoomID_UnmarshalJSON_Number(t *testing.T) {
	var id RoomID
	require.NoError(t, json.Unmarshal([]byte(`42`), &id))
	require.Equal(t, RoomID("42"), id)
}

func TestRoomID_UnmarshalJSON_LargeNumberKeepsPrecision(t *testing.T) {
	var id RoomID
	require.NoError(t, json.Unmarshal([]byte(`9007199254740993`), &id))
	require.Equal(t, RoomID("9007199254740993"), id)
}

func TestRoomID_UnmarshalJSON_Null(t *testing.T) {
	var id RoomID
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	require.True(t, id.IsZero())
}

func TestRoomID_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var id RoomID
	require.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
}

func TestNewRoomKey(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		key := NewRoomKey()
		require.True(t, strings.HasPrefix(key, "room_"))
		require.Len(t, key, len("room_")+12)

		_, dup := seen[key]
		require.False(t, dup, "duplicate room key %s", key)
		seen[key] = struct{}{}
	}
}

func TestRoomDescriptor_DecodeNumericID(t *testing.T) {
	raw := []byte(`{"id": 42, "roomKey": "room_abc", "createdAt": "2024-05-01T10:00:00Z"}`)

	var desc RoomDescriptor
	require.NoError(t, json.Unmarshal(raw, &desc))
	require.Equal(t, RoomID("42"), desc.ID)
	require.Equal(t, "room_abc", desc.RoomKey)
	require.False(t, desc.CreatedAt.IsZero())
}

func TestNewMessage_DefaultsSenderToUser(t *testing.T) {
	msg := NewMessage("", "u-1", "hola")
	require.Equal(t, SenderUser, msg.Sender)
	require.Equal(t, "u-1", msg.SenderID)
	require.Equal(t, "hola", msg.Content)
}

func TestIsActionEvent(t *testing.T) {
	require.True(t, IsActionEvent(ActionCheckoutInitiated))
	require.True(t, IsActionEvent(ActionOrderPaid))
	require.False(t, IsActionEvent("send_message"))
	require.False(t, IsActionEvent(""))
}
