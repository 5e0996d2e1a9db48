package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/model"
	"intellius-chat-be/internal/repository/unitofwork"
	"intellius-chat-be/pkg/database"
	"intellius-chat-be/pkg/events"

	"github.com/google/uuid"
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

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	return unitofwork.NewRepositoryFactory(newTestDB(t))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

type recordingMessages struct {
	mu       sync.Mutex
	messages []*entity.ChatMessage
	err      error
}

func (r *recordingMessages) PublishMessageCreated(ctx context.Context, msg *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.err
}

func (r *recordingMessages) Roles() []entity.ChatRole {
	r.mu.Lock()
	defer r.mu.Unlock()
	roles := make([]entity.ChatRole, 0, len(r.messages))
	for _, m := range r.messages {
		roles = append(roles, m.Role)
	}
	return roles
}

func seedUser(t *testing.T, factory unitofwork.RepositoryFactory, username string) *entity.User {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		IsActive:     true,
	}
	require.NoError(t, factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, u))
	return u
}
