package realtime

import "sync"

// Registry is the concurrency-safe bidirectional mapping between a user
// identity and the identifier of that user's currently-live connection.
// A user is single-session: a new registration silently replaces a prior
// connection for the same user.
type Registry struct {
	mu     sync.RWMutex
	byUser map[int64]string
	byConn map[string]int64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[int64]string),
		byConn: make(map[string]int64),
	}
}

// Register inserts or replaces the mapping for userID. When a registration
// replaces an earlier connection, the superseded connection's reverse entry
// is dropped so that its own eventual disconnect resolves to "not found"
// instead of removing the new entry.
func (r *Registry) Register(userID int64, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok && old != connID {
		delete(r.byConn, old)
	}
	r.byUser[userID] = connID
	r.byConn[connID] = userID
}

// UnregisterConnection removes whichever entry currently holds connID and
// returns the removed user. Disconnect events carry only the connection
// identity, so removal is keyed by it.
func (r *Registry) UnregisterConnection(connID string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return 0, false
	}
	delete(r.byConn, connID)
	delete(r.byUser, userID)
	return userID, true
}

// Lookup returns the live connection for userID, or false if the user is
// offline.
func (r *Registry) Lookup(userID int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.byUser[userID]
	return connID, ok
}

// OnlineUsers returns the users that currently have a live connection.
func (r *Registry) OnlineUsers() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]int64, 0, len(r.byUser))
	for id := range r.byUser {
		users = append(users, id)
	}
	return users
}
