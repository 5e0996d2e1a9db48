package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

func (r ChatRole) Valid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}

// ChatMessage is immutable once stored. UserId is the session owner for both roles.
type ChatMessage struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	ChatSessionId uuid.UUID
	Role          ChatRole
	Content       string
	Metadata      *ReplyMetadata
	CreatedAt     time.Time
}

// ReplyMetadata records how an assistant reply was drawn.
type ReplyMetadata struct {
	CatalogIndex int   `json:"catalog_index"`
	DelayMs      int64 `json:"delay_ms"`
}
