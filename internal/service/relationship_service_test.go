package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proximity-service/internal/models"
	"proximity-service/internal/store"
	"proximity-service/pkg/logger"
)

func newRelationshipFixture(t *testing.T, uids ...string) (*RelationshipService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	for _, uid := range uids {
		require.NoError(t, st.Create(context.Background(), &models.User{
			UID:          uid,
			FirstName:    uid,
			EmailAddress: uid + "@example.com",
			PhoneNumber:  "+1" + uid,
		}))
	}
	return NewRelationshipService(st, logger.NewNop()), st
}

func TestSendFriendRequest(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"bob"}, alice.SentFriendRequests)
	assert.Equal(t, []string{"alice"}, bob.FriendRequests)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	svc, _ := newRelationshipFixture(t, "alice")

	err := svc.SendFriendRequest(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)
}

func TestSendFriendRequestIdempotent(t *testing.T) {
	ctx := context.Background()

	t.Run("already pending", func(t *testing.T) {
		svc, st := newRelationshipFixture(t, "alice", "bob")
		require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
		require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))

		bob, _ := st.Get(ctx, "bob")
		assert.Equal(t, []string{"alice"}, bob.FriendRequests)
	})

	t.Run("pending in other direction", func(t *testing.T) {
		svc, st := newRelationshipFixture(t, "alice", "bob")
		require.NoError(t, svc.SendFriendRequest(ctx, "bob", "alice"))
		require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))

		alice, _ := st.Get(ctx, "alice")
		assert.Empty(t, alice.SentFriendRequests)
		assert.Equal(t, []string{"bob"}, alice.FriendRequests)
	})

	t.Run("already friends", func(t *testing.T) {
		svc, st := newRelationshipFixture(t, "alice", "bob")
		require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
		require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))
		require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))

		alice, _ := st.Get(ctx, "alice")
		assert.Empty(t, alice.SentFriendRequests)
	})

	t.Run("recipient blocked sender", func(t *testing.T) {
		svc, st := newRelationshipFixture(t, "alice", "bob")
		require.NoError(t, svc.BlockUser(ctx, "bob", "alice"))
		require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))

		bob, _ := st.Get(ctx, "bob")
		assert.Empty(t, bob.FriendRequests)
	})
}

func TestAcceptFriendRequest(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"bob"}, alice.FriendsList)
	assert.Equal(t, []string{"alice"}, bob.FriendsList)
	assert.Empty(t, alice.SentFriendRequests)
	assert.Empty(t, bob.FriendRequests)
}

func TestAcceptFriendRequestRedundant(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))

	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"alice"}, bob.FriendsList)
}

func TestAcceptFriendRequestWithoutPending(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))

	bob, _ := st.Get(ctx, "bob")
	assert.Empty(t, bob.FriendsList)
}

func TestDeleteFriendRequest(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.DeleteFriendRequest(ctx, "bob", "alice"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Empty(t, bob.FriendRequests)
	assert.Empty(t, alice.SentFriendRequests)
}

func TestDeleteFriendRequestPartialFailure(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))

	boom := errors.New("write timed out")
	st.FailNextUpdate("alice", boom)

	err := svc.DeleteFriendRequest(ctx, "bob", "alice")
	require.ErrorIs(t, err, boom)

	// The first removal has committed, the second has not.
	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Empty(t, bob.FriendRequests)
	assert.Equal(t, []string{"bob"}, alice.SentFriendRequests)
}

func TestDeleteFriend(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.DeleteFriend(ctx, "alice", "bob"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Empty(t, alice.FriendsList)
	assert.Empty(t, bob.FriendsList)
}

func TestDeleteFriendFailureLeavesBothSides(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))

	boom := errors.New("write timed out")
	st.FailNextUpdate("bob", boom)

	err := svc.DeleteFriend(ctx, "alice", "bob")
	require.ErrorIs(t, err, boom)

	// Transactional, so the failed attempt changed nothing.
	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"bob"}, alice.FriendsList)
	assert.Equal(t, []string{"alice"}, bob.FriendsList)
}

func TestBlockUser(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.BlockUser(ctx, "alice", "bob"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"bob"}, alice.BlockedList)
	assert.Empty(t, alice.FriendsList)
	assert.Empty(t, bob.FriendsList)
	assert.Empty(t, bob.BlockedList)
}

func TestBlockUserClearsPendingRequests(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.BlockUser(ctx, "alice", "bob"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Empty(t, alice.FriendRequests)
	assert.Empty(t, bob.SentFriendRequests)
}

func TestUnblockUserDoesNotRestoreFriendship(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.BlockUser(ctx, "alice", "bob"))
	require.NoError(t, svc.UnblockUser(ctx, "alice", "bob"))

	alice, _ := st.Get(ctx, "alice")
	assert.Empty(t, alice.BlockedList)
	assert.Empty(t, alice.FriendsList)
}

func TestShareLocation(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.ShareLocation(ctx, "alice", "bob"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"bob"}, alice.LocationSharedWith)
	assert.Equal(t, []string{"alice"}, bob.LocationSharedBy)

	err := svc.ShareLocation(ctx, "alice", "bob")
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)
}

func TestShareLocationPartialFailure(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	boom := errors.New("write timed out")
	st.FailNextUpdate("bob", boom)

	err := svc.ShareLocation(ctx, "alice", "bob")
	require.ErrorIs(t, err, boom)

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"bob"}, alice.LocationSharedWith)
	assert.Empty(t, bob.LocationSharedBy)
}

func TestStopSharingLocation(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.ShareLocation(ctx, "alice", "bob"))
	require.NoError(t, svc.StopSharingLocation(ctx, "alice", "bob"))

	alice, _ := st.Get(ctx, "alice")
	bob, _ := st.Get(ctx, "bob")
	assert.Empty(t, alice.LocationSharedWith)
	assert.Empty(t, bob.LocationSharedBy)

	err := svc.StopSharingLocation(ctx, "alice", "bob")
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)
}

func TestTransactionRetriesOnConflict(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	st.InjectConflicts(2)
	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	assert.Equal(t, 3, st.TxAttempts)

	bob, _ := st.Get(ctx, "bob")
	assert.Equal(t, []string{"alice"}, bob.FriendRequests)
}

func TestUnknownErrorPassesThrough(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	st.FailNextUpdate("alice", errors.New("disk quota exhausted"))

	err := svc.SendFriendRequest(ctx, "alice", "bob")
	require.EqualError(t, err, "disk quota exhausted")
}

func TestFriendsSkipsVanishedRecords(t *testing.T) {
	svc, st := newRelationshipFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))

	// Point alice at a friend whose record no longer exists.
	alice, _ := st.Get(ctx, "alice")
	require.NoError(t, st.UpdateField(ctx, "alice", store.FieldFriendsList,
		models.Add(alice.FriendsList, "ghost")))

	friends, err := svc.Friends(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].UID)
}

func TestRecommendedFriends(t *testing.T) {
	svc, _ := newRelationshipFixture(t, "alice", "bob", "carol", "dave", "erin")
	ctx := context.Background()

	// bob is already a friend, carol is blocked by alice, dave blocks alice.
	require.NoError(t, svc.SendFriendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.BlockUser(ctx, "alice", "carol"))
	require.NoError(t, svc.BlockUser(ctx, "dave", "alice"))

	recommended, err := svc.RecommendedFriends(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recommended, 1)
	assert.Equal(t, "erin", recommended[0].UID)
}
