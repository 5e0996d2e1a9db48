package implementation

import (
	"context"
	"errors"
	"testing"
	"time"

	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/model"
	"intellius-chat-be/internal/repository/specification"
	"intellius-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemorySQLite(uuid.NewString())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()
	u := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "alice")
	assert.NotEqual(t, uuid.Nil, u.Id)
	assert.False(t, u.CreatedAt.IsZero())

	byName, err := repo.FindOne(ctx, specification.ByUsername{Username: "alice"})
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.Id, byName.Id)
	assert.True(t, byName.IsActive)

	byID, err := repo.FindOne(ctx, specification.ByID{ID: u.Id})
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice@example.com", byID.Email)

	missing, err := repo.FindOne(ctx, specification.ByUsername{Username: "nobody"})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "alice")

	tests := []struct {
		name string
		user *entity.User
	}{
		{"same username", &entity.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"}},
		{"same email", &entity.User{Username: "other", Email: "alice@example.com", PasswordHash: "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
		})
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestChatSessionRepository_OwnershipAndOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatSessionRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		s := &entity.ChatSession{UserId: alice.Id, Title: "s", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, s))
		ids = append(ids, s.Id)
	}
	bobSession := &entity.ChatSession{UserId: bob.Id, Title: "b", CreatedAt: base}
	require.NoError(t, repo.Create(ctx, bobSession))

	sessions, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: alice.Id}, specification.NewestFirst{})
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, ids[2], sessions[0].Id)
	assert.Equal(t, ids[0], sessions[2].Id)

	foreign, err := repo.FindOne(ctx, specification.ByID{ID: bobSession.Id}, specification.UserOwnedBy{UserID: alice.Id})
	require.NoError(t, err)
	assert.Nil(t, foreign)

	own, err := repo.FindOne(ctx, specification.ByID{ID: bobSession.Id}, specification.UserOwnedBy{UserID: bob.Id})
	require.NoError(t, err)
	require.NotNil(t, own)
	assert.Equal(t, "b", own.Title)
}

func TestChatSessionRepository_Touch(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatSessionRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	s := &entity.ChatSession{UserId: alice.Id, Title: "t"}
	require.NoError(t, repo.Create(ctx, s))

	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Touch(ctx, s.Id, at))

	got, err := repo.FindOne(ctx, specification.ByID{ID: s.Id})
	require.NoError(t, err)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, at.Equal(*got.UpdatedAt))
}

func TestChatMessageRepository_ListAndCascade(t *testing.T) {
	db := newTestDB(t)
	sessions := NewChatSessionRepository(db)
	messages := NewChatMessageRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	s := &entity.ChatSession{UserId: alice.Id, Title: "t"}
	require.NoError(t, sessions.Create(ctx, s))

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	// Inserted out of order on purpose.
	for _, offset := range []int{2, 0, 1} {
		m := &entity.ChatMessage{
			UserId:        alice.Id,
			ChatSessionId: s.Id,
			Role:          entity.ChatRoleUser,
			Content:       string(rune('a' + offset)),
			CreatedAt:     base.Add(time.Duration(offset) * time.Second),
		}
		require.NoError(t, messages.Create(ctx, m))
	}
	reply := &entity.ChatMessage{
		UserId:        alice.Id,
		ChatSessionId: s.Id,
		Role:          entity.ChatRoleAssistant,
		Content:       "d",
		Metadata:      &entity.ReplyMetadata{CatalogIndex: 4, DelayMs: 1500},
		CreatedAt:     base.Add(3 * time.Second),
	}
	require.NoError(t, messages.Create(ctx, reply))

	list, err := messages.FindAll(ctx, specification.ByChatSessionID{ChatSessionID: s.Id}, specification.OldestFirst{})
	require.NoError(t, err)
	require.Len(t, list, 4)
	var contents []string
	for _, m := range list {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, contents)
	assert.Nil(t, list[0].Metadata)
	require.NotNil(t, list[3].Metadata)
	assert.Equal(t, 4, list[3].Metadata.CatalogIndex)
	assert.Equal(t, int64(1500), list[3].Metadata.DelayMs)
	assert.Equal(t, entity.ChatRoleAssistant, list[3].Role)

	require.NoError(t, sessions.Delete(ctx, s.Id))

	remaining, err := messages.Count(ctx, specification.ByChatSessionID{ChatSessionID: s.Id})
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestChatMessageRepository_DeleteByChatSessionId(t *testing.T) {
	db := newTestDB(t)
	sessions := NewChatSessionRepository(db)
	messages := NewChatMessageRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	keep := &entity.ChatSession{UserId: alice.Id, Title: "keep"}
	drop := &entity.ChatSession{UserId: alice.Id, Title: "drop"}
	require.NoError(t, sessions.Create(ctx, keep))
	require.NoError(t, sessions.Create(ctx, drop))

	for _, s := range []*entity.ChatSession{keep, drop} {
		require.NoError(t, messages.Create(ctx, &entity.ChatMessage{
			UserId: alice.Id, ChatSessionId: s.Id, Role: entity.ChatRoleUser, Content: "hi",
		}))
	}

	require.NoError(t, messages.DeleteByChatSessionId(ctx, drop.Id))

	n, err := messages.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := messages.FindOne(ctx, specification.ByChatSessionID{ChatSessionID: keep.Id})
	require.NoError(t, err)
	require.NotNil(t, left)
}

func TestChatMessageRepository_RequiresSession(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")

	err := NewChatMessageRepository(db).Create(context.Background(), &entity.ChatMessage{
		UserId: alice.Id, ChatSessionId: uuid.New(), Role: entity.ChatRoleUser, Content: "orphan",
	})
	assert.Error(t, err)
}
