package server

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/ByteMaster2003/null-talk/internal/cryptoaead"
)

// hashString hex-encodes sha256(s). Grounded on the original's
// hash_string helper (server/src/handlers/cmd.rs), which derives a
// dm_id from the concatenation of the two participants' user_ids and a
// group_id from a fresh UUID the same way. Plain sha256/hex, like
// identity.UserID, doesn't warrant pulling in a third-party hash library.
func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DmChat is one direct-message conversation between two clients.
type DmChat struct {
	DmID       string
	SessionKey []byte
	Members    map[string]bool
}

// ConversationStore tracks every DM conversation the server has brokered.
// A dm_id is derived deterministically from the two participants' user_ids,
// but the two participants can ask for it in either order
// (hash(a+b) from a's connection, hash(b+a) from b's), so GetOrCreate checks
// both canonical orderings before minting a new conversation.
type ConversationStore struct {
	mu    sync.Mutex
	byID  map[string]*DmChat
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{byID: make(map[string]*DmChat)}
}

// GetOrCreate returns the conversation between requester and peer,
// creating one with a freshly generated session key if neither canonical
// ordering already exists.
func (s *ConversationStore) GetOrCreate(requester, peer string) (*DmChat, error) {
	primary := hashString(requester + peer)
	secondary := hashString(peer + requester)

	s.mu.Lock()
	defer s.mu.Unlock()

	if dm, ok := s.byID[primary]; ok {
		return dm, nil
	}
	if dm, ok := s.byID[secondary]; ok {
		return dm, nil
	}

	key, err := cryptoaead.GenerateKey()
	if err != nil {
		return nil, err
	}
	dm := &DmChat{
		DmID:       primary,
		SessionKey: key,
		Members:    map[string]bool{requester: true, peer: true},
	}
	s.byID[primary] = dm
	return dm, nil
}

// Get looks up a conversation by its dm_id.
func (s *ConversationStore) Get(dmID string) (*DmChat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dm, ok := s.byID[dmID]
	return dm, ok
}

// Disconnect clears userID's presence bit on dmID and, once every member's
// bit is false, removes the conversation entirely (§4.5: a DM does not
// outlive the last online participant).
func (s *ConversationStore) Disconnect(dmID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.byID[dmID]
	if !ok {
		return
	}
	dm.Members[userID] = false
	if allAbsent(dm.Members) {
		delete(s.byID, dmID)
	}
}

func allAbsent(presence map[string]bool) bool {
	for _, online := range presence {
		if online {
			return false
		}
	}
	return true
}
