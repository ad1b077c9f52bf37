// Package registry holds the process-lifetime mapping from relay-generated
// room keys to backend-assigned room ids. It is the only shared mutable
// state in the relay core.
package registry

import (
	"sync"

	"github.com/storelink/relay/internal/domain"
)

type Registry struct {
	mu    sync.RWMutex
	rooms map[string]domain.RoomID // roomKey → roomID
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]domain.RoomID),
	}
}

// Resolve translates a client-supplied identifier pair into the canonical
// backend room id. A non-zero roomID wins unconditionally; callers that
// already know the backend id bypass the key lookup entirely.
func (r *Registry) Resolve(roomID domain.RoomID, roomKey string) (domain.RoomID, bool) {
	if !roomID.IsZero() {
		return roomID, true
	}

	if roomKey == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.rooms[roomKey]
	return id, ok
}

// Insert records a key → id pairing. Re-inserting the same key overwrites
// silently; entries are never removed.
func (r *Registry) Insert(roomKey string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[roomKey] = roomID
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
