package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storelink/relay/internal/domain"
	"github.com/storelink/relay/internal/infrastructure/backend"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/registry"
	"github.com/storelink/relay/internal/infrastructure/tasks"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Logger:   "zerolog",
		Encoding: "json",
		Level:    "fatal",
	})
}

type appendCall struct {
	RoomID  domain.RoomID
	Message domain.Message
}

type fakeBackend struct {
	mu sync.Mutex

	createErr  error
	createResp domain.RoomDescriptor

	appendErr error

	creates []backend.CreateRoomRequest
	appends []appendCall
	actions []map[string]any
}

func (f *fakeBackend) CreateRoom(ctx context.Context, req backend.CreateRoomRequest) (domain.RoomDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creates = append(f.creates, req)
	if f.createErr != nil {
		return domain.RoomDescriptor{}, f.createErr
	}

	desc := f.createResp
	if desc.RoomKey == "" {
		desc.RoomKey = req.RoomKey
	}
	return desc, nil
}

func (f *fakeBackend) AppendMessage(ctx context.Context, roomID domain.RoomID, msg domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.appends = append(f.appends, appendCall{RoomID: roomID, Message: msg})
	return f.appendErr
}

func (f *fakeBackend) RecordAction(ctx context.Context, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.actions = append(f.actions, payload)
	return nil
}

func (f *fakeBackend) appendCalls() []appendCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]appendCall, len(f.appends))
	copy(out, f.appends)
	return out
}

func (f *fakeBackend) actionCalls() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]map[string]any, len(f.actions))
	copy(out, f.actions)
	return out
}

type relayFixture struct {
	relay    *Relay
	rooms    *Manager
	registry *registry.Registry
	backend  *fakeBackend
	runner   *tasks.Runner
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	logger := testLogger()
	be := &fakeBackend{
		createResp: domain.RoomDescriptor{ID: "42", CreatedAt: time.Now()},
	}
	reg := registry.New()
	rooms := NewManager()
	runner := tasks.NewRunner(logger, time.Second)

	return &relayFixture{
		relay:    NewRelay(reg, rooms, be, runner, nil, logger),
		rooms:    rooms,
		registry: reg,
		backend:  be,
		runner:   runner,
	}
}

func newTestClient(id string) *Client {
	return &Client{
		ID:   id,
		send: make(chan *WSMessage, 64),
	}
}

func drain(cl *Client) []*WSMessage {
	var out []*WSMessage
	for {
		select {
		case m := <-cl.send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func event(t *testing.T, eventType string, payload any) InboundEvent {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	return InboundEvent{Type: eventType, Data: raw}
}

func TestCreateOrSend_HappyPath(t *testing.T) {
	f := newRelayFixture(t)

	a := newTestClient("a")
	f.rooms.Register(a)

	f.relay.Dispatch(a, event(t, CreateOrSend, map[string]any{
		"userName": "bob",
		"content":  "hi",
		"sender":   "user",
	}))
	f.runner.Wait()

	got := drain(a)
	require.Len(t, got, 2)

	require.Equal(t, RoomCreated, got[0].Type)
	created := got[0].Data.(RoomCreatedPayload)
	require.Equal(t, domain.RoomID("42"), created.RoomID)
	require.True(t, len(created.RoomKey) > len("room_"))

	require.Equal(t, NewMessage, got[1].Type)
	msg := got[1].Data.(domain.Message)
	require.Equal(t, domain.SenderUser, msg.Sender)
	require.Equal(t, "hi", msg.Content)

	// The generated key now resolves to the backend id for good
	id, ok := f.registry.Resolve("", created.RoomKey)
	require.True(t, ok)
	require.Equal(t, domain.RoomID("42"), id)

	// The requester was subscribed to the new room's group
	require.Equal(t, 1, f.rooms.RoomSize("42"))

	// And the message was persisted against the resolved room
	appends := f.backend.appendCalls()
	require.Len(t, appends, 1)
	require.Equal(t, domain.RoomID("42"), appends[0].RoomID)
	require.Equal(t, "hi", appends[0].Message.Content)
}

func TestCreateOrSend_BackendFailure(t *testing.T) {
	f := newRelayFixture(t)
	f.backend.createErr = errors.New("backend unreachable")

	a := newTestClient("a")
	f.rooms.Register(a)

	f.relay.Dispatch(a, event(t, CreateOrSend, map[string]any{
		"userName": "bob",
		"content":  "hi",
	}))
	f.runner.Wait()

	got := drain(a)
	require.Len(t, got, 1)
	require.Equal(t, ErrorCreatingRoom, got[0].Type)

	// No partial state: registry untouched, no group joined, nothing persisted
	require.Equal(t, 0, f.registry.Len())
	require.Equal(t, 0, f.rooms.RoomSize("42"))
	require.Empty(t, f.backend.appendCalls())
}

func TestSendMessage_BroadcastsToWholeGroupIncludingSender(t *testing.T) {
	f := newRelayFixture(t)
	f.registry.Insert("room_xyz", "7")

	a := newTestClient("a")
	b := newTestClient("b")
	outsider := newTestClient("c")
	for _, cl := range []*Client{a, b, outsider} {
		f.rooms.Register(cl)
	}
	f.rooms.Subscribe(a, "7")
	f.rooms.Subscribe(b, "7")

	f.relay.Dispatch(a, event(t, SendMessage, map[string]any{
		"roomKey": "room_xyz",
		"content": "hola",
	}))
	f.runner.Wait()

	for _, cl := range []*Client{a, b} {
		got := drain(cl)
		require.Len(t, got, 1, "client %s", cl.ID)
		require.Equal(t, NewMessage, got[0].Type)
		require.Equal(t, domain.RoomID("7"), got[0].RoomID)
	}

	require.Empty(t, drain(outsider))

	appends := f.backend.appendCalls()
	require.Len(t, appends, 1)
	require.Equal(t, domain.RoomID("7"), appends[0].RoomID)
}

func TestSendMessage_NumericRoomIDTakesPrecedence(t *testing.T) {
	f := newRelayFixture(t)

	a := newTestClient("a")
	f.rooms.Register(a)
	f.rooms.Subscribe(a, "42")

	f.relay.Dispatch(a, event(t, SendMessage, map[string]any{
		"roomId":  42,
		"roomKey": "room_never_created",
		"content": "hola",
	}))
	f.runner.Wait()

	got := drain(a)
	require.Len(t, got, 1)
	require.Equal(t, NewMessage, got[0].Type)
	require.Equal(t, domain.RoomID("42"), got[0].RoomID)
}

func TestSendMessage_Unresolved(t *testing.T) {
	f := newRelayFixture(t)

	a := newTestClient("a")
	b := newTestClient("b")
	f.rooms.Register(a)
	f.rooms.Register(b)

	f.relay.Dispatch(a, event(t, SendMessage, map[string]any{
		"roomKey": "room_never_created",
		"content": "hola",
	}))
	f.runner.Wait()

	got := drain(a)
	require.Len(t, got, 1)
	require.Equal(t, ErrorEvent, got[0].Type)
	require.Equal(t, ErrRoomRefRequired, got[0].Data.(ErrorPayload).Message)

	// Zero broadcasts, nothing persisted
	require.Empty(t, drain(b))
	require.Empty(t, f.backend.appendCalls())
}

func TestSendMessage_PersistenceFailureNeverReachesClients(t *testing.T) {
	f := newRelayFixture(t)
	f.registry.Insert("room_xyz", "7")
	f.backend.appendErr = errors.New("backend 500")

	a := newTestClient("a")
	f.rooms.Register(a)
	f.rooms.Subscribe(a, "7")

	f.relay.Dispatch(a, event(t, SendMessage, map[string]any{
		"roomKey": "room_xyz",
		"content": "hola",
	}))
	f.runner.Wait()

	// The broadcast happened exactly once; the failure stayed in the log
	got := drain(a)
	require.Len(t, got, 1)
	require.Equal(t, NewMessage, got[0].Type)
}

func TestJoinRoom_UnknownKey(t *testing.T) {
	f := newRelayFixture(t)

	b := newTestClient("b")
	f.rooms.Register(b)

	f.relay.Dispatch(b, event(t, JoinRoom, map[string]any{
		"roomKey": "room_xyz",
	}))

	got := drain(b)
	require.Len(t, got, 1)
	require.Equal(t, ErrorEvent, got[0].Type)
	require.Equal(t, "room_id o room_key requerido para unirse", got[0].Data.(ErrorPayload).Message)
}

func TestJoinRoom_ByKey(t *testing.T) {
	f := newRelayFixture(t)
	f.registry.Insert("room_xyz", "9")

	a := newTestClient("a")
	b := newTestClient("b")
	f.rooms.Register(a)
	f.rooms.Register(b)
	f.rooms.Subscribe(a, "9")

	f.relay.Dispatch(b, event(t, JoinRoom, map[string]any{
		"roomKey": "room_xyz",
	}))

	got := drain(b)
	require.Len(t, got, 1)
	require.Equal(t, JoinedRoom, got[0].Type)
	require.Equal(t, domain.RoomID("9"), got[0].Data.(JoinedRoomPayload).RoomID)

	// Confirmation goes to the requester only
	require.Empty(t, drain(a))
	require.Equal(t, 2, f.rooms.RoomSize("9"))
}

func TestTyping_ExcludesSender(t *testing.T) {
	f := newRelayFixture(t)
	f.registry.Insert("room_xyz", "9")

	a := newTestClient("a")
	b := newTestClient("b")
	f.rooms.Register(a)
	f.rooms.Register(b)
	f.rooms.Subscribe(a, "9")
	f.rooms.Subscribe(b, "9")

	f.relay.Dispatch(a, event(t, UserTyping, map[string]any{
		"roomKey":  "room_xyz",
		"userId":   "u-1",
		"userName": "bob",
	}))

	require.Empty(t, drain(a))

	got := drain(b)
	require.Len(t, got, 1)
	require.Equal(t, UserTyping, got[0].Type)
	payload := got[0].Data.(TypingBroadcastPayload)
	require.Equal(t, domain.RoomID("9"), payload.RoomID)
	require.Equal(t, "u-1", payload.UserID)
	require.Empty(t, payload.StoppedAt)
}

func TestStopTyping_CarriesServerTimestamp(t *testing.T) {
	f := newRelayFixture(t)
	f.registry.Insert("room_xyz", "9")

	a := newTestClient("a")
	b := newTestClient("b")
	f.rooms.Register(a)
	f.rooms.Register(b)
	f.rooms.Subscribe(a, "9")
	f.rooms.Subscribe(b, "9")

	f.relay.Dispatch(a, event(t, UserStopTyping, map[string]any{
		"roomKey": "room_xyz",
		"userId":  "u-1",
	}))

	got := drain(b)
	require.Len(t, got, 1)
	require.Equal(t, UserStopTyping, got[0].Type)

	stoppedAt := got[0].Data.(TypingBroadcastPayload).StoppedAt
	require.NotEmpty(t, stoppedAt)
	_, err := time.Parse(time.RFC3339, stoppedAt)
	require.NoError(t, err)
}

func TestTyping_UnresolvedIsSilent(t *testing.T) {
	f := newRelayFixture(t)

	a := newTestClient("a")
	f.rooms.Register(a)

	f.relay.Dispatch(a, event(t, UserTyping, map[string]any{
		"roomKey": "room_never_created",
		"userId":  "u-1",
	}))

	require.Empty(t, drain(a))
}

func TestAction_WithRoomGoesToGroupOnly(t *testing.T) {
	f := newRelayFixture(t)
	f.registry.Insert("room_xyz", "9")

	member := newTestClient("member")
	outsider := newTestClient("outsider")
	f.rooms.Register(member)
	f.rooms.Register(outsider)
	f.rooms.Subscribe(member, "9")

	f.relay.Dispatch(member, event(t, domain.ActionUserViewingProduct, map[string]any{
		"roomKey":   "room_xyz",
		"productId": "sku-1",
	}))
	f.runner.Wait()

	got := drain(member)
	require.Len(t, got, 1)
	require.Equal(t, domain.ActionUserViewingProduct, got[0].Type)

	payload := got[0].Data.(map[string]any)
	require.Equal(t, "sku-1", payload["productId"])
	// The room reference is stripped before re-emission
	require.NotContains(t, payload, "roomKey")
	require.NotContains(t, payload, "roomId")

	require.Empty(t, drain(outsider))
}

func TestAction_WithoutRoomGoesGlobal(t *testing.T) {
	f := newRelayFixture(t)

	a := newTestClient("a")
	b := newTestClient("b")
	f.rooms.Register(a)
	f.rooms.Register(b)

	f.relay.Dispatch(a, event(t, domain.ActionUserViewingProduct, map[string]any{
		"productId": "sku-1",
	}))
	f.runner.Wait()

	for _, cl := range []*Client{a, b} {
		got := drain(cl)
		require.Len(t, got, 1, "client %s", cl.ID)
		require.Equal(t, domain.ActionUserViewingProduct, got[0].Type)
	}
}

func TestAction_CheckoutInitiatedIsRecorded(t *testing.T) {
	f := newRelayFixture(t)
	f.registry.Insert("room_xyz", "9")

	a := newTestClient("a")
	f.rooms.Register(a)
	f.rooms.Subscribe(a, "9")

	f.relay.Dispatch(a, event(t, domain.ActionCheckoutInitiated, map[string]any{
		"roomKey": "room_xyz",
		"cartId":  "cart-1",
	}))
	f.runner.Wait()

	// Broadcast happened regardless of what the recorder did
	require.Len(t, drain(a), 1)

	actions := f.backend.actionCalls()
	require.Len(t, actions, 1)
	require.Equal(t, domain.ActionCheckoutInitiated, actions[0]["event"])
	require.Equal(t, "9", actions[0]["roomId"])
	require.Equal(t, "cart-1", actions[0]["cartId"])
}

func TestAction_OtherActionsAreNotRecorded(t *testing.T) {
	f := newRelayFixture(t)

	a := newTestClient("a")
	f.rooms.Register(a)

	f.relay.Dispatch(a, event(t, domain.ActionOrderPaid, map[string]any{
		"orderId": "o-1",
	}))
	f.runner.Wait()

	require.Len(t, drain(a), 1)
	require.Empty(t, f.backend.actionCalls())
}

func TestDispatch_UnknownEventIsIgnored(t *testing.T) {
	f := newRelayFixture(t)

	a := newTestClient("a")
	f.rooms.Register(a)

	f.relay.Dispatch(a, event(t, "made_up_event", map[string]any{}))

	require.Empty(t, drain(a))
}
