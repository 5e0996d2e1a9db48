package unitofwork

import (
	"context"
	"testing"

	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/model"
	"intellius-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactory(t *testing.T) RepositoryFactory {
	t.Helper()
	db, err := database.NewInMemorySQLite(uuid.NewString())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return NewRepositoryFactory(db)
}

func TestUnitOfWork_CommitPersists(t *testing.T) {
	ctx := context.Background()
	factory := newFactory(t)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().Create(ctx, &entity.User{Username: "a", Email: "a@x.io", PasswordHash: "h"}))
	require.NoError(t, uow.Commit())

	count, err := factory.NewUnitOfWork(ctx).UserRepository().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	factory := newFactory(t)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().Create(ctx, &entity.User{Username: "a", Email: "a@x.io", PasswordHash: "h"}))
	require.NoError(t, uow.Rollback())

	count, err := factory.NewUnitOfWork(ctx).UserRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnitOfWork_StateErrors(t *testing.T) {
	ctx := context.Background()
	uow := newFactory(t).NewUnitOfWork(ctx)

	assert.ErrorIs(t, uow.Commit(), ErrNoTransaction)
	assert.ErrorIs(t, uow.Rollback(), ErrNoTransaction)

	require.NoError(t, uow.Begin(ctx))
	assert.ErrorIs(t, uow.Begin(ctx), ErrTxAlreadyStarted)
	require.NoError(t, uow.Commit())
	// Deferred rollback after commit is harmless.
	assert.ErrorIs(t, uow.Rollback(), ErrNoTransaction)
}
