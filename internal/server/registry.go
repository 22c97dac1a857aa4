package server

import (
	"sync"
)

// ClientRecord is the server's view of one connected, handshaken peer.
// It owns the per-connection outbound queue: every goroutine that wants to
// send this client a frame (the reader's command responses, the Router's
// fan-out) submits to Outbound rather than writing the socket directly, so
// the connection's writer goroutine is the only one that ever touches it.
type ClientRecord struct {
	Username   string
	UserID     string
	SessionKey []byte

	// Outbound carries anything WriteFrame can encode: wire.Packet for
	// routed messages, wire.ServerResponse for command replies. It is
	// unbounded (§5) so a slow recipient never makes the Router or another
	// connection's reader block.
	Outbound *outbox

	mu     sync.Mutex
	DMs    []string
	Groups []string
}

// HasDM reports whether a dm_id is already registered for this client.
func (c *ClientRecord) HasDM(dmID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.DMs {
		if id == dmID {
			return true
		}
	}
	return false
}

// AddDM registers a dm_id, ignoring duplicates.
func (c *ClientRecord) AddDM(dmID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.DMs {
		if id == dmID {
			return
		}
	}
	c.DMs = append(c.DMs, dmID)
}

// HasGroup reports whether a group_id is already registered for this client.
func (c *ClientRecord) HasGroup(groupID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.Groups {
		if id == groupID {
			return true
		}
	}
	return false
}

// AddGroup registers a group_id, ignoring duplicates.
func (c *ClientRecord) AddGroup(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.Groups {
		if id == groupID {
			return
		}
	}
	c.Groups = append(c.Groups, groupID)
}

// Send enqueues a frame for the connection's writer goroutine.
func (c *ClientRecord) Send(frame interface{}) {
	c.Outbound.push(frame)
}

// ClientRegistry is the server's presence table: every currently connected,
// handshaken client, keyed by user_id.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*ClientRecord
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]*ClientRecord)}
}

// Register adds a freshly-handshaken client, replacing any prior connection
// under the same user_id (a reconnect).
func (r *ClientRegistry) Register(userID, username string, sessionKey []byte) *ClientRecord {
	rec := &ClientRecord{
		Username:   username,
		UserID:     userID,
		SessionKey: sessionKey,
		Outbound:   newOutbox(),
	}
	r.mu.Lock()
	r.clients[userID] = rec
	r.mu.Unlock()
	return rec
}

// Unregister removes a client, but only if rec is still the record on file —
// guards against a slow teardown racing a reconnect's Register.
func (r *ClientRegistry) Unregister(userID string, rec *ClientRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.clients[userID]; ok && current == rec {
		delete(r.clients, userID)
	}
}

// Get returns the online client record for userID, if any.
func (r *ClientRegistry) Get(userID string) (*ClientRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.clients[userID]
	return rec, ok
}

// IsOnline reports whether userID currently has a live connection.
func (r *ClientRegistry) IsOnline(userID string) bool {
	_, ok := r.Get(userID)
	return ok
}
