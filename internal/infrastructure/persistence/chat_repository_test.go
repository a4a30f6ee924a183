package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/chat"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, repo *GormChatRepository, room *chat.Room, sender account.Actor, body string, at time.Time) *chat.Message {
	t.Helper()
	msg, evt, err := room.Post(sender, body, at)
	require.NoError(t, err)
	require.NoError(t, repo.AppendMessage(context.Background(), msg, []shared.DomainEvent{evt}))
	return msg
}

func TestGormChatRepository_CreateAndFind(t *testing.T) {
	repo := NewGormChatRepository(setupTestDB(t))
	ctx := context.Background()
	orderID, clientID, cookID := uuid.New(), uuid.New(), uuid.New()

	room := chat.NewRoom(orderID, "ORD-20260314-00001", clientID, cookID, testNow)
	require.NoError(t, repo.Create(ctx, room))

	found, err := repo.FindByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, found.ID)
	assert.ElementsMatch(t, []uuid.UUID{clientID, cookID}, found.ActiveParticipants())

	err = repo.Create(ctx, chat.NewRoom(orderID, "ORD-20260314-00001", clientID, cookID, testNow))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormChatRepository_SaveWithLock(t *testing.T) {
	repo := NewGormChatRepository(setupTestDB(t))
	ctx := context.Background()
	room := chat.NewRoom(uuid.New(), "ORD-20260314-00001", uuid.New(), uuid.New(), testNow)
	require.NoError(t, repo.Create(ctx, room))

	driverID := uuid.New()
	added, err := room.AddParticipant(driverID, account.RoleDriver, testNow.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, repo.SaveWithLock(ctx, room))

	stale, err := repo.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, stale.IsParticipant(driverID))

	require.True(t, room.RemoveParticipant(driverID, testNow.Add(2*time.Minute)))
	require.NoError(t, repo.SaveWithLock(ctx, room))

	stale.Close(testNow.Add(3 * time.Minute))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

	reloaded, err := repo.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsParticipant(driverID))
	assert.False(t, reloaded.IsClosed())
	assert.Len(t, reloaded.Participants, 3)
}

func TestGormChatRepository_MessagesAndUnread(t *testing.T) {
	repo := NewGormChatRepository(setupTestDB(t))
	ctx := context.Background()
	clientID, cookID := uuid.New(), uuid.New()
	client := account.Actor{ID: clientID, Role: account.RoleClient}
	cook := account.Actor{ID: cookID, Role: account.RoleCook}

	room := chat.NewRoom(uuid.New(), "ORD-20260314-00001", clientID, cookID, testNow)
	require.NoError(t, repo.Create(ctx, room))

	post(t, repo, room, client, "Is it spicy?", testNow.Add(time.Minute))
	post(t, repo, room, cook, "Mildly", testNow.Add(2*time.Minute))
	third := post(t, repo, room, cook, "I can make it mild", testNow.Add(3*time.Minute))

	t.Run("newest first with cursor", func(t *testing.T) {
		msgs, err := repo.ListMessages(ctx, room.ID, nil, 2)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, third.ID, msgs[0].ID)

		cursor := msgs[1].CreatedAt
		older, err := repo.ListMessages(ctx, room.ID, &cursor, 10)
		require.NoError(t, err)
		require.Len(t, older, 1)
		assert.Equal(t, "Is it spicy?", older[0].Body)
	})

	t.Run("unread excludes own messages", func(t *testing.T) {
		counts, err := repo.UnreadCounts(ctx, clientID)
		require.NoError(t, err)
		require.Len(t, counts, 1)
		assert.Equal(t, room.ID, counts[0].RoomID)
		assert.Equal(t, int64(2), counts[0].Unread)

		cookCounts, err := repo.UnreadCounts(ctx, cookID)
		require.NoError(t, err)
		require.Len(t, cookCounts, 1)
		assert.Equal(t, int64(1), cookCounts[0].Unread)
	})

	t.Run("reading clears the count", func(t *testing.T) {
		require.NoError(t, repo.SaveParticipantRead(ctx, room.ID, clientID, testNow.Add(4*time.Minute)))

		counts, err := repo.UnreadCounts(ctx, clientID)
		require.NoError(t, err)
		assert.NotNil(t, counts)
		assert.Empty(t, counts)
	})

	t.Run("read marker for a stranger", func(t *testing.T) {
		err := repo.SaveParticipantRead(ctx, room.ID, uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
