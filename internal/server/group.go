package server

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ByteMaster2003/null-talk/internal/cryptoaead"
)

// GroupChat is one group conversation. Members maps user_id to a presence
// bit: true while that member has joined and is online, false for a member
// who was only added and hasn't opened the session yet, or who has since
// disconnected. mkgp adds the listed members as false; addgpm adds an
// online member as true and an offline one as false; the member's own
// "new" command flips the bit to true, and Disconnect clears it.
type GroupChat struct {
	GroupName  string
	GroupID    string
	SessionKey []byte
	Admin      string
	Members    map[string]bool
}

// GroupStore tracks every group the server knows about.
type GroupStore struct {
	mu     sync.Mutex
	groups map[string]*GroupChat
}

func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[string]*GroupChat)}
}

// Get looks up a group by id.
func (s *GroupStore) Get(groupID string) (*GroupChat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	return g, ok
}

// Create makes a new group, or — if groupID names one that already exists
// and admin is its admin — returns the existing group with its original
// session key instead of generating a new one, so a repeated "mkgp" for
// the same group_id is idempotent instead of rotating the key.
func (s *GroupStore) Create(name string, groupID *string, admin string, members []string) (*GroupChat, error) {
	memberSet := make(map[string]bool, len(members)+1)
	for _, m := range members {
		memberSet[m] = false
	}
	memberSet[admin] = true

	id := ""
	if groupID != nil && *groupID != "" {
		id = *groupID
	} else {
		id = hashString(uuid.New().String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.groups[id]; ok {
		if existing.Admin != admin {
			return nil, fmt.Errorf("group with id %s already exists", id)
		}
		return existing, nil
	}

	key, err := cryptoaead.GenerateKey()
	if err != nil {
		return nil, err
	}
	g := &GroupChat{
		GroupName:  name,
		GroupID:    id,
		SessionKey: key,
		Admin:      admin,
		Members:    memberSet,
	}
	s.groups[id] = g
	return g, nil
}

// Join marks clientID as an active (joined) member of an existing group
// the caller is already at least invited to.
func (s *GroupStore) Join(groupID, clientID string) (*GroupChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("Group not found")
	}
	if _, isMember := g.Members[clientID]; !isMember {
		return nil, fmt.Errorf("You are not a member of this group")
	}
	g.Members[clientID] = true
	return g, nil
}

// AddMember adds memberID to groupID on behalf of admin. joined controls
// the membership flag used when memberID is not already a member: true if
// the caller already knows memberID is online, false for a pending invite
// the member must later accept with its own "new" command. An existing
// membership entry is left untouched either way. Only the group's admin
// may do this.
func (s *GroupStore) AddMember(groupID, admin, memberID string, joined bool) (*GroupChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("Group not found")
	}
	if g.Admin != admin {
		return nil, fmt.Errorf("Only group admin can add members")
	}
	if _, already := g.Members[memberID]; !already {
		g.Members[memberID] = joined
	}
	return g, nil
}

// Disconnect clears userID's presence bit on groupID and, once no member
// is online, removes the group outright — offline-but-registered members
// do not keep it alive (§4.5; a deliberate simplification since there is
// no persistent storage to revive it from later).
func (s *GroupStore) Disconnect(groupID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return
	}
	g.Members[userID] = false
	if allAbsent(g.Members) {
		delete(s.groups, groupID)
	}
}
