package service

import (
	"context"

	"intellius-chat-be/internal/dto"
	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/repository/specification"
	"intellius-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetById(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	FindActiveByUsername(ctx context.Context, username string) (*entity.User, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (s *userService) GetById(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return toUserResponse(user), nil
}

// FindActiveByUsername returns nil when the user is gone or deactivated.
func (s *userService) FindActiveByUsername(ctx context.Context, username string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx,
		specification.ByUsername{Username: username},
		specification.ActiveUsers{},
	)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}
