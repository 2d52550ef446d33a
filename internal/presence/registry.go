// Package presence tracks which users currently hold a live connection.
package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is the minimal handle the registry keeps per user. Send must not
// block; implementations drop the payload when the peer cannot keep up.
type Conn interface {
	Send(data []byte)
}

// Registry maps a user to at most one live connection. A later connection
// from the same user silently replaces the earlier one. State is process
// memory only and is rebuilt from scratch after a restart.
type Registry struct {
	mu       sync.RWMutex
	conns    map[uuid.UUID]Conn
	onChange func()
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]Conn)}
}

// SetOnChange installs the hook fired after every successful register or
// unregister. Set once at wiring time, before any connection arrives.
func (r *Registry) SetOnChange(fn func()) {
	r.onChange = fn
}

// Register stores conn as the user's live connection and returns the
// connection it displaced, if any, so the caller can shut it down.
func (r *Registry) Register(userID uuid.UUID, conn Conn) Conn {
	r.mu.Lock()
	displaced := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	r.fireChange()
	return displaced
}

// Unregister removes the mapping only if conn is still the stored handle.
// A disconnect event from a connection that has already been replaced must
// not clobber its successor.
func (r *Registry) Unregister(userID uuid.UUID, conn Conn) bool {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if !ok || current != conn {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, userID)
	r.mu.Unlock()

	r.fireChange()
	return true
}

func (r *Registry) Lookup(userID uuid.UUID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// Online returns the ids of all currently connected users.
func (r *Registry) Online() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Connections returns a snapshot of the current user→connection table.
func (r *Registry) Connections() map[uuid.UUID]Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[uuid.UUID]Conn, len(r.conns))
	for id, conn := range r.conns {
		snapshot[id] = conn
	}
	return snapshot
}

// fireChange runs outside the lock so the hook may read the registry.
func (r *Registry) fireChange() {
	if r.onChange != nil {
		r.onChange()
	}
}
