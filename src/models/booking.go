package models

import (
	"cafe/src/types"
	"time"
)

type Booking struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	Name      string              `json:"name,omitempty"`
	Phone     string              `json:"phone,omitempty"`
	Email     string              `json:"email,omitempty"`
	PartySize int                 `json:"party_size"`
	Date      time.Time           `json:"date,omitempty"`
	Status    types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	EventID   *uint               `json:"event_id,omitempty"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`

	types.Timestamps
}
