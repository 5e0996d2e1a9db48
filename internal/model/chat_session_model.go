package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id        uuid.UUID     `gorm:"type:char(36);primaryKey"`
	UserId    uuid.UUID     `gorm:"type:char(36);not null;index"` // Owner, the only principal allowed to see it
	Title     string        `gorm:"type:varchar(255)"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime"`
	User      *User         `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Messages  []ChatMessage `gorm:"foreignKey:ChatSessionId;constraint:OnDelete:CASCADE"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	return nil
}
