package ws

import (
	"sync"

	"github.com/storelink/relay/internal/domain"
	"github.com/storelink/relay/internal/infrastructure/metrics"
)

// Manager is the group-subscription index: which connections are live, and
// which rooms each one has joined. Memberships are removed on disconnect so
// long-running deployments don't leak.
type Manager struct {
	mu         sync.RWMutex
	clients    map[string]*Client                       // connection id → client
	rooms      map[domain.RoomID]map[string]*Client     // room id → members
	membership map[string]map[domain.RoomID]struct{}    // connection id → joined rooms
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[domain.RoomID]map[string]*Client),
		membership: make(map[string]map[domain.RoomID]struct{}),
	}
}

func (m *Manager) Register(cl *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients[cl.ID] = cl
	metrics.ActiveConnections.Inc()
}

// Unregister drops the client from every group it joined and closes its send
// buffer. Safe to call once per connection.
func (m *Manager) Unregister(cl *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[cl.ID]; !ok {
		return
	}

	delete(m.clients, cl.ID)

	for roomID := range m.membership[cl.ID] {
		if members, ok := m.rooms[roomID]; ok {
			delete(members, cl.ID)
			if len(members) == 0 {
				delete(m.rooms, roomID)
			}
		}
	}
	delete(m.membership, cl.ID)

	close(cl.send)
	metrics.ActiveConnections.Dec()
}

func (m *Manager) Subscribe(cl *Client, roomID domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[cl.ID]; !ok {
		return // disconnected while the handler was suspended
	}

	members, ok := m.rooms[roomID]
	if !ok {
		members = make(map[string]*Client)
		m.rooms[roomID] = members
	}
	members[cl.ID] = cl

	joined, ok := m.membership[cl.ID]
	if !ok {
		joined = make(map[domain.RoomID]struct{})
		m.membership[cl.ID] = joined
	}
	joined[roomID] = struct{}{}
}

// BroadcastToRoom fans msg out to every member of the room. exceptID skips
// one connection (typing indicators exclude their sender).
func (m *Manager) BroadcastToRoom(roomID domain.RoomID, msg *WSMessage, exceptID string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, cl := range m.rooms[roomID] {
		if id == exceptID {
			continue
		}
		cl.TrySend(msg)
	}

	metrics.BroadcastsTotal.WithLabelValues(msg.Type).Inc()
}

// BroadcastAll delivers to every connected client regardless of rooms. Used
// for heartbeats and for action events with no room affiliation.
func (m *Manager) BroadcastAll(msg *WSMessage) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, cl := range m.clients {
		cl.TrySend(msg)
	}

	metrics.BroadcastsTotal.WithLabelValues(msg.Type).Inc()
}

func (m *Manager) RoomSize(roomID domain.RoomID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms[roomID])
}

func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}
