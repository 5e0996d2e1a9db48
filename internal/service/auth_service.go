package service

import (
	"context"
	"errors"
	"strings"

	"intellius-chat-be/internal/constant"
	"intellius-chat-be/internal/dto"
	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/pkg/credential"
	"intellius-chat-be/internal/pkg/logger"
	"intellius-chat-be/internal/pkg/mailer"
	"intellius-chat-be/internal/repository/specification"
	"intellius-chat-be/internal/repository/unitofwork"
	"intellius-chat-be/pkg/events"

	"gorm.io/gorm"
)

const tokenTypeBearer = "bearer"

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	credentials  credential.IService
	emailService mailer.IEmailService
	publisher    events.Publisher
	logger       logger.ILogger
	now          Clock
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	credentials credential.IService,
	emailService mailer.IEmailService,
	publisher events.Publisher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		credentials:  credentials,
		emailService: emailService,
		publisher:    publisher,
		logger:       log,
		now:          systemClock,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Friendly message for the common case; the unique indexes settle races.
	existing, err := uow.UserRepository().FindOne(ctx, specification.UsernameOrEmail{Username: username, Email: email})
	if err != nil {
		return nil, storeError(err)
	}
	if existing != nil {
		if existing.Username == username {
			return nil, apperror.Conflict("Username already taken")
		}
		return nil, apperror.Conflict("Email already registered")
	}

	hash, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    s.now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Username or email already registered")
		}
		return nil, storeError(err)
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{
		"user_id":  user.Id,
		"username": user.Username,
	})

	go func() {
		if err := s.emailService.SendWelcome(user.Email, user.Username); err != nil {
			s.logger.Warn("AUTH", "Failed to send welcome email", map[string]interface{}{
				"user_id": user.Id,
				"error":   err.Error(),
			})
		}
	}()

	publishAsync(s.publisher, s.logger, events.NewEvent(constant.EventUserRegistered, map[string]interface{}{
		"user_id":  user.Id.String(),
		"username": user.Username,
	}, s.now()))

	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: strings.TrimSpace(req.Username)})
	if err != nil {
		return nil, storeError(err)
	}

	// One answer for every failure so usernames can't be probed.
	if user == nil || !user.IsActive || !s.credentials.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	token, err := s.credentials.IssueToken(user.Username)
	if err != nil {
		return nil, err
	}

	publishAsync(s.publisher, s.logger, events.NewEvent(constant.EventUserLogin, map[string]interface{}{
		"user_id":  user.Id.String(),
		"username": user.Username,
	}, s.now()))

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
	}, nil
}
