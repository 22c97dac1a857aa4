// Package client implements the chat client's half of the system: the
// connector, the handshake-then-command-response dispatcher, per-conversation
// session bookkeeping, and the encrypt/decrypt pipeline that moves plaintext
// in and out of DirectMessage/GroupMessage packets (§4.6).
//
// Grounded on (*ClientConn) in massiveart-go.crypto/ssh, and on
// ZenonEl-OwlWhisper's sessionService for the mutex-protected map[id]*state
// registry shape.
package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// Mode discriminates a Session between a DM and a group conversation.
type Mode uint8

const (
	ModeDM Mode = iota
	ModeGroup
)

// Session is the client's record of one conversation it can send/receive
// on: a stable id, the AEAD it was provisioned with, the symmetric key, and
// the running plaintext log the UI replays when the conversation is opened.
type Session struct {
	Name string
	ID   string
	Mode Mode
	Algo wire.Algo
	Key  []byte

	mu  sync.Mutex
	Log []LoggedMessage
}

// LoggedMessage is one decrypted message appended to a Session's history,
// or one the user sent themselves (for local echo).
type LoggedMessage struct {
	SenderID   string
	Username   string
	Content    string
	Timestamps uint64
}

func (s *Session) append(msg LoggedMessage) {
	s.mu.Lock()
	s.Log = append(s.Log, msg)
	s.mu.Unlock()
}

// History returns a snapshot of the session's message log.
func (s *Session) History() []LoggedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LoggedMessage, len(s.Log))
	copy(out, s.Log)
	return out
}

// SessionRegistry tracks every Session the client has opened and which one
// is active. Mirrors the registry shape ZenonEl-OwlWhisper's sessionService
// uses for its map[contextID]*SessionState: one RWMutex over a plain map,
// no finer-grained locking, since critical sections never do I/O.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	activeID string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Put inserts or replaces a session by id and leaves the active session
// untouched.
func (r *SessionRegistry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get looks up a session by its conversation id (dm_id or group_id).
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops a session (the client's "rmc" verb).
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	if r.activeID == id {
		r.activeID = ""
	}
}

// SetActive marks id as the active session; returns an error if no such
// session is registered.
func (r *SessionRegistry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("client: no such session %q", id)
	}
	r.activeID = id
	return nil
}

// Active returns the currently active session, if any.
func (r *SessionRegistry) Active() (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeID == "" {
		return nil, false
	}
	s, ok := r.sessions[r.activeID]
	return s, ok
}

// List returns every known session, for the UI's conversation picker.
func (r *SessionRegistry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
