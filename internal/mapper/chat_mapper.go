package mapper

import (
	"encoding/json"
	"time"

	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/model"

	"gorm.io/datatypes"
)

// Messages without reply provenance store an empty object so the column never holds NULL.
const emptyMetadata = "{}"

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) ChatSessionsToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ChatSessionToEntity(s)
	}
	return entities
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var meta *entity.ReplyMetadata
	if len(msg.Metadata) > 0 && string(msg.Metadata) != emptyMetadata {
		var decoded entity.ReplyMetadata
		// Unreadable metadata is dropped rather than failing the whole read.
		if err := json.Unmarshal(msg.Metadata, &decoded); err == nil {
			meta = &decoded
		}
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		UserId:        msg.UserId,
		ChatSessionId: msg.ChatSessionId,
		Role:          entity.ChatRole(msg.Role),
		Content:       msg.Content,
		Metadata:      meta,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) (*model.ChatMessage, error) {
	if msg == nil {
		return nil, nil
	}

	meta := datatypes.JSON(emptyMetadata)
	if msg.Metadata != nil {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return nil, err
		}
		meta = datatypes.JSON(raw)
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		UserId:        msg.UserId,
		ChatSessionId: msg.ChatSessionId,
		Role:          string(msg.Role),
		Content:       msg.Content,
		Metadata:      meta,
		CreatedAt:     msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) ChatMessagesToEntities(messages []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(messages))
	for i, msg := range messages {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
