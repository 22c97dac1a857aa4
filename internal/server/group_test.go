package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupCreateGeneratesIDWhenNoneGiven(t *testing.T) {
	store := NewGroupStore()
	group, err := store.Create("friends", nil, "alice", []string{"bob", "carol"})
	require.NoError(t, err)
	require.NotEmpty(t, group.GroupID)
	require.True(t, group.Members["alice"])
	require.False(t, group.Members["bob"])
	require.False(t, group.Members["carol"])
}

func TestGroupCreateWithExplicitIDIsIdempotentForAdmin(t *testing.T) {
	store := NewGroupStore()
	id := "fixed-id"

	g1, err := store.Create("friends", &id, "alice", []string{"bob"})
	require.NoError(t, err)

	g2, err := store.Create("friends", &id, "alice", []string{"carol"})
	require.NoError(t, err)

	require.Equal(t, g1.SessionKey, g2.SessionKey, "recreating under the same id must not rotate the key")
}

func TestGroupCreateWithExplicitIDRejectsNonAdmin(t *testing.T) {
	store := NewGroupStore()
	id := "fixed-id"

	_, err := store.Create("friends", &id, "alice", nil)
	require.NoError(t, err)

	_, err = store.Create("friends", &id, "mallory", nil)
	require.Error(t, err)
}

func TestGroupJoinRequiresExistingMembership(t *testing.T) {
	store := NewGroupStore()
	group, err := store.Create("friends", nil, "alice", []string{"bob"})
	require.NoError(t, err)

	_, err = store.Join(group.GroupID, "mallory")
	require.Error(t, err)

	joined, err := store.Join(group.GroupID, "bob")
	require.NoError(t, err)
	require.True(t, joined.Members["bob"])
}

func TestGroupAddMemberOnlyAdmin(t *testing.T) {
	store := NewGroupStore()
	group, err := store.Create("friends", nil, "alice", nil)
	require.NoError(t, err)

	_, err = store.AddMember(group.GroupID, "bob", "carol", false)
	require.Error(t, err)

	got, err := store.AddMember(group.GroupID, "alice", "carol", false)
	require.NoError(t, err)
	require.False(t, got.Members["carol"])
}

func TestGroupAddMemberDoesNotDowngradeExistingMember(t *testing.T) {
	store := NewGroupStore()
	group, err := store.Create("friends", nil, "alice", []string{"bob"})
	require.NoError(t, err)
	_, err = store.Join(group.GroupID, "bob")
	require.NoError(t, err)

	got, err := store.AddMember(group.GroupID, "alice", "bob", false)
	require.NoError(t, err)
	require.True(t, got.Members["bob"], "re-adding an already-joined member must not mark them pending")
}

func TestGroupDisconnectSurvivesWhileAnyMemberOnline(t *testing.T) {
	store := NewGroupStore()
	group, err := store.Create("friends", nil, "alice", []string{"bob"})
	require.NoError(t, err)
	_, err = store.Join(group.GroupID, "bob")
	require.NoError(t, err)

	store.Disconnect(group.GroupID, "alice")

	got, ok := store.Get(group.GroupID)
	require.True(t, ok, "group must survive while bob is still online")
	require.False(t, got.Members["alice"])
	require.True(t, got.Members["bob"])
}

func TestGroupDisconnectRemovesGroupOnceAllMembersGone(t *testing.T) {
	store := NewGroupStore()
	group, err := store.Create("friends", nil, "alice", []string{"bob"})
	require.NoError(t, err)
	_, err = store.Join(group.GroupID, "bob")
	require.NoError(t, err)

	store.Disconnect(group.GroupID, "alice")
	store.Disconnect(group.GroupID, "bob")

	_, ok := store.Get(group.GroupID)
	require.False(t, ok, "group must be gone once every member has disconnected")
}

func TestGroupDisconnectIgnoresOfflinePendingMembers(t *testing.T) {
	store := NewGroupStore()
	group, err := store.Create("friends", nil, "alice", []string{"bob", "carol"})
	require.NoError(t, err)

	// bob and carol were only invited, never joined (presence=false), so
	// alice disconnecting should still tear the group down.
	store.Disconnect(group.GroupID, "alice")

	_, ok := store.Get(group.GroupID)
	require.False(t, ok, "a group with only offline invitees left must not outlive its last online member")
}

func TestGroupDisconnectOnUnknownGroupIsNoop(t *testing.T) {
	store := NewGroupStore()
	require.NotPanics(t, func() {
		store.Disconnect("does-not-exist", "alice")
	})
}
