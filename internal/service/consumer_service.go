package service

import (
	"context"
	"encoding/json"

	"intellius-chat-be/internal/dto"
	"intellius-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// MessageDelivery pushes a serialized event to every live connection of a user.
type MessageDelivery interface {
	SendToUser(userID uuid.UUID, payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	sub       message.Subscriber
	topicName string
	delivery  MessageDelivery
	logger    logger.ILogger
}

func NewConsumerService(
	sub message.Subscriber,
	topicName string,
	delivery MessageDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		sub:       sub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

// Consume subscribes and returns; delivery runs until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.sub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event dto.ChatMessageEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil || event.Message == nil {
		cs.logger.Warn("CONSUMER", "Dropping malformed chat event", map[string]interface{}{
			"message_id": msg.UUID,
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// Push is best effort; offline users read history over HTTP.
	cs.delivery.SendToUser(event.Message.UserId, msg.Payload)
	msg.Ack()
}
