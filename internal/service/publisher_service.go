package service

import (
	"context"
	"encoding/json"

	"intellius-chat-be/internal/dto"
	"intellius-chat-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const chatEventMessageCreated = "chat.message"

type IPublisherService interface {
	PublishMessageCreated(ctx context.Context, msg *entity.ChatMessage) error
}

type publisherService struct {
	pub   message.Publisher
	topic string
}

func NewPublisherService(pub message.Publisher, topic string) IPublisherService {
	return &publisherService{
		pub:   pub,
		topic: topic,
	}
}

func toMessageResponse(m *entity.ChatMessage) *dto.ChatMessageResponse {
	return &dto.ChatMessageResponse{
		Id:        m.Id,
		UserId:    m.UserId,
		SessionId: m.ChatSessionId,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func (p *publisherService) PublishMessageCreated(ctx context.Context, msg *entity.ChatMessage) error {
	payload, err := json.Marshal(dto.ChatMessageEvent{
		Type:    chatEventMessageCreated,
		Message: toMessageResponse(msg),
	})
	if err != nil {
		return err
	}

	m := message.NewMessage(watermill.NewUUID(), payload)
	m.SetContext(ctx)
	return p.pub.Publish(p.topic, m)
}
