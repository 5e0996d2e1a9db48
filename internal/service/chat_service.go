package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"intellius-chat-be/internal/constant"
	"intellius-chat-be/internal/dto"
	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/pkg/logger"
	"intellius-chat-be/internal/repository/specification"
	"intellius-chat-be/internal/repository/unitofwork"
	"intellius-chat-be/pkg/counselor"
	"intellius-chat-be/pkg/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// CounselorResponder produces the canned assistant reply, delay included.
type CounselorResponder interface {
	Respond(ctx context.Context) (*counselor.Reply, error)
}

type IChatService interface {
	ListSessions(ctx context.Context, userId uuid.UUID) (*dto.ChatSessionListResponse, error)
	ListMessages(ctx context.Context, userId, sessionId uuid.UUID) (*dto.ChatMessageListResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	responder  CounselorResponder
	messages   IPublisherService
	publisher  events.Publisher
	logger     logger.ILogger
	tracer     trace.Tracer
	now        Clock
}

type ChatServiceOption func(*chatService)

func WithChatClock(now Clock) ChatServiceOption {
	return func(s *chatService) {
		s.now = now
	}
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	responder CounselorResponder,
	messages IPublisherService,
	publisher events.Publisher,
	log logger.ILogger,
	opts ...ChatServiceOption,
) IChatService {
	s := &chatService{
		uowFactory: uowFactory,
		responder:  responder,
		messages:   messages,
		publisher:  publisher,
		logger:     log,
		tracer:     otel.Tracer("chat-service"),
		now:        systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func toSessionResponse(s *entity.ChatSession) *dto.ChatSessionResponse {
	return &dto.ChatSessionResponse{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func sessionNotFound() error {
	return apperror.NotFound("Chat session not found")
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID) (*dto.ChatSessionListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NewestFirst{},
	)
	if err != nil {
		return nil, storeError(err)
	}

	res := &dto.ChatSessionListResponse{Sessions: make([]*dto.ChatSessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		res.Sessions = append(res.Sessions, toSessionResponse(session))
	}
	return res, nil
}

func (s *chatService) ListMessages(ctx context.Context, userId, sessionId uuid.UUID) (*dto.ChatMessageListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, storeError(err)
	}
	if session == nil {
		return nil, sessionNotFound()
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OldestFirst{},
	)
	if err != nil {
		return nil, storeError(err)
	}

	res := &dto.ChatMessageListResponse{Messages: make([]*dto.ChatMessageResponse, 0, len(messages))}
	for _, m := range messages {
		res.Messages = append(res.Messages, toMessageResponse(m))
	}
	return res, nil
}

func validateSend(req *dto.SendMessageRequest) (string, error) {
	role := entity.ChatRoleUser
	if req.Role != "" {
		role = entity.ChatRole(req.Role)
	}
	if !role.Valid() {
		return "", apperror.Validation("unknown role " + req.Role)
	}
	if role != entity.ChatRoleUser {
		return "", apperror.Validation("role must be user")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apperror.Validation("content is required")
	}
	return content, nil
}

// SendMessage stores the caller's turn, waits for the counselor and stores the
// reply. The user turn (and a new session) commit before the wait so no
// connection is held while sleeping; the reply commits in its own transaction.
func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.SendMessage")
	defer span.End()

	content, err := validateSend(req)
	if err != nil {
		return nil, err
	}

	session, userMsg, created, err := s.storeUserTurn(ctx, userId, req.SessionId, content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("chat.session_id", session.Id.String()),
		attribute.Bool("chat.session_created", created),
	)

	if created {
		publishAsync(s.publisher, s.logger, events.NewEvent(constant.EventChatSessionCreated, map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": session.Id.String(),
		}, session.CreatedAt))
	}
	s.notify(ctx, userMsg)

	reply, err := s.responder.Respond(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("chat.reply_index", reply.CatalogIndex),
		attribute.Int64("chat.reply_delay_ms", reply.Delay.Milliseconds()),
	)

	assistantMsg, err := s.storeAssistantTurn(ctx, session, userMsg.CreatedAt, reply)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.notify(ctx, assistantMsg)

	return toMessageResponse(assistantMsg), nil
}

func (s *chatService) storeUserTurn(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID, content string) (*entity.ChatSession, *entity.ChatMessage, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, false, storeError(err)
	}
	defer uow.Rollback()

	now := s.now()
	created := false

	var session *entity.ChatSession
	if sessionId != nil {
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *sessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, nil, false, storeError(err)
		}
		if found == nil {
			return nil, nil, false, sessionNotFound()
		}
		session = found
	} else {
		session = &entity.ChatSession{
			UserId:    userId,
			Title:     now.Format(constant.ChatSessionTitleLayout),
			CreatedAt: now,
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return nil, nil, false, storeError(err)
		}
		created = true
	}

	msg := &entity.ChatMessage{
		UserId:        session.UserId,
		ChatSessionId: session.Id,
		Role:          entity.ChatRoleUser,
		Content:       content,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, nil, false, storeError(err)
	}
	if err := uow.ChatSessionRepository().Touch(ctx, session.Id, now); err != nil {
		return nil, nil, false, storeError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, false, storeError(err)
	}
	return session, msg, created, nil
}

func (s *chatService) storeAssistantTurn(ctx context.Context, session *entity.ChatSession, after time.Time, reply *counselor.Reply) (*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storeError(err)
	}
	defer uow.Rollback()

	// Replies must sort after the turn they answer even on coarse clocks.
	at := s.now()
	if !at.After(after) {
		at = after.Add(time.Millisecond)
	}

	msg := &entity.ChatMessage{
		UserId:        session.UserId,
		ChatSessionId: session.Id,
		Role:          entity.ChatRoleAssistant,
		Content:       reply.Content,
		Metadata: &entity.ReplyMetadata{
			CatalogIndex: reply.CatalogIndex,
			DelayMs:      reply.Delay.Milliseconds(),
		},
		CreatedAt: at,
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		// The owner deleted the session while the counselor was thinking.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, sessionNotFound()
		}
		return nil, storeError(err)
	}
	if err := uow.ChatSessionRepository().Touch(ctx, session.Id, at); err != nil {
		return nil, storeError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storeError(err)
	}
	return msg, nil
}

// notify fans a stored message out to realtime listeners. Failures never fail the
// request; the message is already persisted.
func (s *chatService) notify(ctx context.Context, msg *entity.ChatMessage) {
	if s.messages == nil {
		return
	}
	if err := s.messages.PublishMessageCreated(ctx, msg); err != nil {
		s.logger.Warn("CHAT", "Failed to publish chat message event", map[string]interface{}{
			"message_id": msg.Id,
			"error":      err.Error(),
		})
	}
}

func (s *chatService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "ChatService.DeleteSession",
		trace.WithAttributes(attribute.String("chat.session_id", sessionId.String())),
	)
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storeError(err)
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return storeError(err)
	}
	if session == nil {
		return sessionNotFound()
	}

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return storeError(err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return storeError(err)
	}

	if err := uow.Commit(); err != nil {
		return storeError(err)
	}

	s.logger.Info("CHAT", "Chat session deleted", map[string]interface{}{
		"user_id":    userId,
		"session_id": session.Id,
	})
	publishAsync(s.publisher, s.logger, events.NewEvent(constant.EventChatSessionDeleted, map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": session.Id.String(),
	}, s.now()))

	return nil
}
