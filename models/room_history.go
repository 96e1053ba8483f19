package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoomHistory is one stay of a guest in a room. EndDate is nil while the
// stay is current; a guest has at most one such open entry.
type RoomHistory struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	GuestID   uint            `gorm:"index;not null" json:"guest_id"`
	RoomID    uint            `gorm:"index;not null" json:"room_id"`
	StartDate datatypes.Date  `gorm:"not null" json:"start_date"`
	EndDate   *datatypes.Date `json:"end_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (RoomHistory) TableName() string { return "room_history" }

func (h *RoomHistory) IsOpen() bool { return h.EndDate == nil }
