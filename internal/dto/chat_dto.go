package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatSessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	UserId    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ChatSessionListResponse struct {
	Sessions []*ChatSessionResponse `json:"sessions"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	SessionId uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessageListResponse struct {
	Messages []*ChatMessageResponse `json:"messages"`
}

// SendMessageRequest omits SessionId to open a new session. Role may be left
// out; callers can only speak as the user.
type SendMessageRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	Role      string     `json:"role" validate:"omitempty,oneof=user"`
	Content   string     `json:"content" validate:"required,max=4000"`
}

// ChatMessageEvent is pushed to websocket clients when a message is stored.
type ChatMessageEvent struct {
	Type    string               `json:"type"`
	Message *ChatMessageResponse `json:"message"`
}
