package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:char(36);primaryKey"`
	UserId        uuid.UUID      `gorm:"type:char(36);not null;index"`
	ChatSessionId uuid.UUID      `gorm:"type:char(36);not null;index:idx_chat_messages_session_created,priority:1"`
	Role          string         `gorm:"type:varchar(20);not null"`
	Content       string         `gorm:"type:text;not null"`
	Metadata      datatypes.JSON `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index:idx_chat_messages_session_created,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	return nil
}
