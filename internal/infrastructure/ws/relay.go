package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/storelink/relay/internal/domain"
	"github.com/storelink/relay/internal/infrastructure/backend"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/metrics"
	"github.com/storelink/relay/internal/infrastructure/registry"
	"github.com/storelink/relay/internal/infrastructure/tasks"
)

// Backend is the outbound commerce API surface the relay needs. CreateRoom
// errors reach the requesting client; the other two only ever reach the log.
type Backend interface {
	CreateRoom(ctx context.Context, req backend.CreateRoomRequest) (domain.RoomDescriptor, error)
	AppendMessage(ctx context.Context, roomID domain.RoomID, msg domain.Message) error
	RecordAction(ctx context.Context, payload map[string]any) error
}

// ActionPublisher mirrors commerce events onto a broker for analytics.
// Optional; a nil publisher disables the mirror.
type ActionPublisher interface {
	PublishAction(ctx context.Context, name string, roomID domain.RoomID, payload map[string]any) error
}

// Relay is the core engine: resolves room identifiers, fans events out to
// groups, and detaches persistence so it can never block delivery.
type Relay struct {
	registry *registry.Registry
	rooms    *Manager
	backend  Backend
	runner   *tasks.Runner
	actions  ActionPublisher
	logger   logging.Logger

	createTimeout time.Duration
}

func NewRelay(
	reg *registry.Registry,
	rooms *Manager,
	be Backend,
	runner *tasks.Runner,
	actions ActionPublisher,
	logger logging.Logger,
) *Relay {
	return &Relay{
		registry:      reg,
		rooms:         rooms,
		backend:       be,
		runner:        runner,
		actions:       actions,
		logger:        logger,
		createTimeout: 10 * time.Second,
	}
}

// Dispatch routes one inbound event to its handler. Handlers run on the
// connection's read goroutine; only the room index and registry are shared,
// and both carry their own locks.
func (r *Relay) Dispatch(cl *Client, evt InboundEvent) {
	switch evt.Type {
	case CreateOrSend:
		r.handleCreateOrSend(cl, evt.Data)
	case SendMessage:
		r.handleSendMessage(cl, evt.Data)
	case JoinRoom:
		r.handleJoinRoom(cl, evt.Data)
	case UserTyping:
		r.handleTyping(cl, evt.Data, false)
	case UserStopTyping:
		r.handleTyping(cl, evt.Data, true)
	default:
		if domain.IsActionEvent(evt.Type) {
			r.handleAction(cl, evt.Type, evt.Data)
			return
		}

		r.logger.Debug(logging.WebSocket, logging.Broadcast, "unknown event type", map[logging.ExtraKey]any{
			logging.EventName:    evt.Type,
			logging.ConnectionId: cl.ID,
		})
	}
}

// Disconnect drops the connection's group memberships. No registry cleanup:
// key → id entries live for the process lifetime.
func (r *Relay) Disconnect(cl *Client) {
	r.rooms.Unregister(cl)
}

func (r *Relay) handleCreateOrSend(cl *Client, raw json.RawMessage) {
	var p CreateOrSendPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cl.TrySend(NewError(err.Error()))
		return
	}

	roomKey := domain.NewRoomKey()

	ctx, cancel := context.WithTimeout(context.Background(), r.createTimeout)
	defer cancel()

	desc, err := r.backend.CreateRoom(ctx, backend.CreateRoomRequest{
		RoomKey:  roomKey,
		UserName: p.UserName,
		Status:   "open",
	})
	if err != nil {
		r.logger.Error(logging.Backend, logging.ExternalService, "room creation failed", map[logging.ExtraKey]any{
			logging.RoomKey:      roomKey,
			logging.ErrorMessage: err.Error(),
		})
		cl.TrySend(NewErrorCreatingRoom(ErrCreatingRoomMessage))
		return
	}

	r.registry.Insert(roomKey, desc.ID)
	r.rooms.Subscribe(cl, desc.ID)
	metrics.RoomsCreatedTotal.Inc()

	cl.TrySend(NewRoomCreated(desc))

	msg := domain.NewMessage(p.Sender, p.SenderID, p.Content)
	r.rooms.BroadcastToRoom(desc.ID, NewMessageEvent(desc.ID, msg), "")

	r.persistMessage(desc.ID, msg)
}

func (r *Relay) handleSendMessage(cl *Client, raw json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cl.TrySend(NewError(err.Error()))
		return
	}

	roomID, ok := r.registry.Resolve(p.RoomID, p.RoomKey)
	if !ok {
		cl.TrySend(NewError(ErrRoomRefRequired))
		return
	}

	msg := domain.NewMessage(p.Sender, p.SenderID, p.Content)
	r.rooms.BroadcastToRoom(roomID, NewMessageEvent(roomID, msg), "")

	r.persistMessage(roomID, msg)
}

func (r *Relay) handleJoinRoom(cl *Client, raw json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cl.TrySend(NewError(err.Error()))
		return
	}

	roomID, ok := r.registry.Resolve(p.RoomID, p.RoomKey)
	if !ok {
		cl.TrySend(NewError(ErrRoomRefRequiredJoin))
		return
	}

	r.rooms.Subscribe(cl, roomID)
	cl.TrySend(NewJoinedRoom(roomID))
}

func (r *Relay) handleTyping(cl *Client, raw json.RawMessage, stop bool) {
	var p TypingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}

	// Typing indicators are best-effort: unresolved rooms are a silent no-op
	roomID, ok := r.registry.Resolve(p.RoomID, p.RoomKey)
	if !ok {
		return
	}

	eventType := UserTyping
	stoppedAt := ""
	if stop {
		eventType = UserStopTyping
		stoppedAt = time.Now().UTC().Format(time.RFC3339)
	}

	r.rooms.BroadcastToRoom(roomID, NewTypingEvent(eventType, roomID, p, stoppedAt), cl.ID)
}

func (r *Relay) handleAction(cl *Client, name string, raw json.RawMessage) {
	var ref roomRef
	_ = json.Unmarshal(raw, &ref)

	payload := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			cl.TrySend(NewError(err.Error()))
			return
		}
	}
	delete(payload, "roomId")
	delete(payload, "roomKey")

	roomID, ok := r.registry.Resolve(ref.RoomID, ref.RoomKey)

	// The broadcast always happens, whatever the persistence mirror does
	if ok {
		r.rooms.BroadcastToRoom(roomID, NewActionEvent(name, roomID, payload), "")
	} else {
		// No room context: deliberate global fallback for anonymous
		// browsing events
		r.rooms.BroadcastAll(NewActionEvent(name, "", payload))
	}

	if name == domain.ActionCheckoutInitiated {
		record := map[string]any{"event": name}
		for k, v := range payload {
			record[k] = v
		}
		if ok {
			record["roomId"] = roomID.String()
		}

		r.runner.Go("record_action", func(ctx context.Context) error {
			if err := r.backend.RecordAction(ctx, record); err != nil {
				metrics.PersistenceFailuresTotal.WithLabelValues("record_action").Inc()
				return err
			}
			return nil
		})
	}

	if r.actions != nil {
		mirror := make(map[string]any, len(payload))
		for k, v := range payload {
			mirror[k] = v
		}

		r.runner.Go("publish_action", func(ctx context.Context) error {
			return r.actions.PublishAction(ctx, name, roomID, mirror)
		})
	}
}

func (r *Relay) persistMessage(roomID domain.RoomID, msg domain.Message) {
	r.runner.Go("append_message", func(ctx context.Context) error {
		if err := r.backend.AppendMessage(ctx, roomID, msg); err != nil {
			metrics.PersistenceFailuresTotal.WithLabelValues("append_message").Inc()
			return err
		}
		return nil
	})
}
