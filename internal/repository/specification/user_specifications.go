package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// UsernameOrEmail matches a user holding either identifier.
type UsernameOrEmail struct {
	Username string
	Email    string
}

func (s UsernameOrEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ? OR email = ?", s.Username, s.Email)
}

// UserOwnedBy is the ownership predicate for user-scoped rows.
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ActiveUsers struct{}

func (s ActiveUsers) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
