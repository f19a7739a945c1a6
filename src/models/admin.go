package models

import (
	"cafe/src/types"
	"time"
)

type AdminUser struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Name         string     `json:"name,omitempty"`
	Email        string     `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `gorm:"default:'staff'" json:"role,omitempty"`
	LastActive   *time.Time `json:"last_active,omitempty"`

	types.Timestamps
}
