package models

import (
	"cafe/src/types"
	"time"
)

// Event is a bookable occasion. MaxCapacity nil means unbounded.
// CurrentBookings is only ever mutated through the conditional update in
// utils.CreateBooking and the release in utils.UpdateBookingStatus.
type Event struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	Title           string            `json:"title,omitempty"`
	Slug            string            `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description     string            `json:"description,omitempty"`
	Location        string            `json:"location,omitempty"`
	StartsAt        time.Time         `json:"starts_at,omitempty"`
	EndsAt          time.Time         `json:"ends_at,omitempty"`
	MaxCapacity     *uint             `json:"max_capacity,omitempty"`
	CurrentBookings uint              `json:"current_bookings"`
	Price           int64             `json:"price"`
	Status          types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`

	Bookings []Booking `gorm:"foreignKey:EventID" json:"bookings,omitempty"`

	types.Timestamps
}
