package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const roomKeyPrefix = "room_"

// RoomID is the backend-assigned room identifier. Some backend versions hand
// out numeric ids, others strings; both decode into the same opaque value.
type RoomID string

func (id RoomID) String() string {
	return string(id)
}

func (id RoomID) IsZero() bool {
	return id == ""
}

func (id *RoomID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case string:
		*id = RoomID(t)
	case json.Number:
		*id = RoomID(t.String())
	case nil:
		*id = ""
	default:
		return fmt.Errorf("room id must be a string or number, got %T", v)
	}

	return nil
}

// NewRoomKey generates the client-visible key handed out before the backend
// id is known. Collisions are not retried; the token space makes them
// negligible.
func NewRoomKey() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return roomKeyPrefix + token
}

// RoomDescriptor is the backend's view of a freshly created room.
type RoomDescriptor struct {
	ID        RoomID    `json:"id"`
	RoomKey   string    `json:"roomKey"`
	CreatedAt time.Time `json:"createdAt"`
}
