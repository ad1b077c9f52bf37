package socket

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/ws"
)

type Handler struct {
	rooms    *ws.Manager
	relay    *ws.Relay
	upgrader websocket.Upgrader
	logger   logging.Logger
}

func NewHandler(rooms *ws.Manager, relay *ws.Relay, logger logging.Logger) *Handler {
	return &Handler{
		rooms: rooms,
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser storefront widgets connect from arbitrary shop domains
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeWS upgrades the HTTP handshake and hands the connection to the relay.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.WebSocket, logging.ExternalService, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ClientIp:     r.RemoteAddr,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, uuid.NewString(), h.logger)
	h.rooms.Register(client)

	h.logger.Info(logging.WebSocket, logging.ExternalService, "client connected", map[logging.ExtraKey]any{
		logging.ConnectionId: client.ID,
		logging.ClientIp:     r.RemoteAddr,
	})

	go client.WriteEvents()
	go client.ReadEvents(h.relay)
}
