package messaging

const (
	ActionsQueue = "relay_actions"

	// Routing keys are "action.<event name>"
	ActionRoutingPrefix = "action."
	ActionRoutingAll    = "action.#"
)

// ActionEnvelope is the wire shape mirrored onto the broker for every
// commerce lifecycle event the relay fans out.
type ActionEnvelope struct {
	Event   string         `json:"event"`
	RoomID  string         `json:"roomId,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}
