package ws

// Inbound event names (client → relay).
const (
	CreateOrSend   = "create_or_send"
	SendMessage    = "send_message"
	JoinRoom       = "join_room"
	UserTyping     = "user_typing"
	UserStopTyping = "user_stop_typing"
)

// Outbound event names (relay → client). Action events are re-emitted under
// their inbound names.
const (
	RoomCreated       = "room_created"
	ErrorCreatingRoom = "error_creating_room"
	NewMessage        = "new_message"
	JoinedRoom        = "joined_room"
	ErrorEvent        = "error"
	Heartbeat         = "heartbeat"
)

// Resolution failure messages, verbatim from the protocol.
const (
	ErrRoomRefRequired     = "room_id o room_key requerido"
	ErrRoomRefRequiredJoin = "room_id o room_key requerido para unirse"
	ErrCreatingRoomMessage = "no se pudo crear la sala"
)
