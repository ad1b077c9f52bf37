package ws

import (
	"encoding/json"
	"time"

	"github.com/storelink/relay/internal/domain"
)

// WSMessage is the framed outbound event written to clients.
type WSMessage struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId,omitempty"`
	Data   any           `json:"data,omitempty"`
}

// InboundEvent is the framed inbound shape; Data stays raw until the relay
// knows which payload to decode.
type InboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound payloads
type CreateOrSendPayload struct {
	UserName string        `json:"userName"`
	Content  string        `json:"content"`
	Sender   domain.Sender `json:"sender"`
	SenderID string        `json:"senderId"`
}

type SendMessagePayload struct {
	RoomID   domain.RoomID `json:"roomId"`
	RoomKey  string        `json:"roomKey"`
	Content  string        `json:"content"`
	Sender   domain.Sender `json:"sender"`
	SenderID string        `json:"senderId"`
}

type JoinRoomPayload struct {
	RoomID  domain.RoomID `json:"roomId"`
	RoomKey string        `json:"roomKey"`
}

type TypingPayload struct {
	RoomID   domain.RoomID `json:"roomId"`
	RoomKey  string        `json:"roomKey"`
	UserID   string        `json:"userId"`
	UserName string        `json:"userName,omitempty"`
}

// roomRef extracts just the room reference from an otherwise open payload.
type roomRef struct {
	RoomID  domain.RoomID `json:"roomId"`
	RoomKey string        `json:"roomKey"`
}

// Outbound payloads
type RoomCreatedPayload struct {
	RoomID    domain.RoomID `json:"roomId"`
	RoomKey   string        `json:"roomKey"`
	CreatedAt string        `json:"createdAt"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type JoinedRoomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type TypingBroadcastPayload struct {
	RoomID    domain.RoomID `json:"roomId"`
	UserID    string        `json:"userId"`
	UserName  string        `json:"userName,omitempty"`
	StoppedAt string        `json:"stoppedAt,omitempty"`
}

type HeartbeatPayload struct {
	Time string `json:"time"`
}

func NewRoomCreated(desc domain.RoomDescriptor) *WSMessage {
	return &WSMessage{
		Type:   RoomCreated,
		RoomID: desc.ID,
		Data: RoomCreatedPayload{
			RoomID:    desc.ID,
			RoomKey:   desc.RoomKey,
			CreatedAt: desc.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
}

func NewErrorCreatingRoom(message string) *WSMessage {
	return &WSMessage{
		Type: ErrorCreatingRoom,
		Data: ErrorPayload{Message: message},
	}
}

func NewMessageEvent(roomID domain.RoomID, msg domain.Message) *WSMessage {
	return &WSMessage{
		Type:   NewMessage,
		RoomID: roomID,
		Data:   msg,
	}
}

func NewError(message string) *WSMessage {
	return &WSMessage{
		Type: ErrorEvent,
		Data: ErrorPayload{Message: message},
	}
}

func NewJoinedRoom(roomID domain.RoomID) *WSMessage {
	return &WSMessage{
		Type:   JoinedRoom,
		RoomID: roomID,
		Data:   JoinedRoomPayload{RoomID: roomID},
	}
}

func NewTypingEvent(eventType string, roomID domain.RoomID, p TypingPayload, stoppedAt string) *WSMessage {
	return &WSMessage{
		Type:   eventType,
		RoomID: roomID,
		Data: TypingBroadcastPayload{
			RoomID:    roomID,
			UserID:    p.UserID,
			UserName:  p.UserName,
			StoppedAt: stoppedAt,
		},
	}
}

func NewActionEvent(name string, roomID domain.RoomID, payload map[string]any) *WSMessage {
	return &WSMessage{
		Type:   name,
		RoomID: roomID,
		Data:   payload,
	}
}

func NewHeartbeat(now time.Time) *WSMessage {
	return &WSMessage{
		Type: Heartbeat,
		Data: HeartbeatPayload{Time: now.UTC().Format(time.RFC3339)},
	}
}
