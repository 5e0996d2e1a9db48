package specification

import (
	"intellius-chat-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return scope.OrderByCreatedDesc(db)
}

type OldestFirst struct{}

func (s OldestFirst) Apply(db *gorm.DB) *gorm.DB {
	return scope.OrderByCreatedAsc(db)
}
