package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/metrics"
)

// Client is one live transport session. It holds no room state of its own;
// group memberships live in the Manager and are dropped on disconnect.
type Client struct {
	ID string

	conn   *connWrapper
	send   chan *WSMessage
	logger logging.Logger
}

func NewClient(conn *websocket.Conn, id string, logger logging.Logger) *Client {
	return &Client{
		ID:     id,
		conn:   newConnWrapper(conn),
		send:   make(chan *WSMessage, 64), // buffered to avoid dead-locks on slow clients
		logger: logger,
	}
}

// TrySend queues an outbound event without blocking. A full buffer drops the
// message; slow consumers never stall a broadcast.
func (c *Client) TrySend(msg *WSMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		metrics.DroppedMessagesTotal.Inc()
		return false
	}
}

// ReadEvents pumps inbound frames into the relay until the connection dies.
// Runs on its own goroutine, one per connection.
func (c *Client) ReadEvents(relay *Relay) {
	defer func() {
		relay.Disconnect(c)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn(logging.WebSocket, logging.ExternalService, "ws read error", map[logging.ExtraKey]any{
					logging.ConnectionId: c.ID,
					logging.ErrorMessage: err.Error(),
				})
			}
			break
		}

		var evt InboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.logger.Debug(logging.WebSocket, logging.Broadcast, "malformed inbound frame", map[logging.ExtraKey]any{
				logging.ConnectionId: c.ID,
				logging.ErrorMessage: err.Error(),
			})
			continue
		}

		relay.Dispatch(c, evt)
	}
}

// WriteEvents drains the send buffer onto the wire.
func (c *Client) WriteEvents() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn(logging.WebSocket, logging.ExternalService, "ws write error", map[logging.ExtraKey]any{
				logging.ConnectionId: c.ID,
				logging.ErrorMessage: err.Error(),
			})
			break
		}
	}
}
