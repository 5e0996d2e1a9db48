package contract

import (
	"context"

	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/repository/specification"
)

type UserRepository interface {
	// Create fails with gorm.ErrDuplicatedKey when the username or email is taken.
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
