package models

import "time"

type Room struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	RoomNumber string     `gorm:"column:room_number;uniqueIndex;type:varchar(50);not null" json:"room_number"`
	Capacity   int        `gorm:"not null" json:"capacity"`
	Status     RoomStatus `gorm:"type:varchar(50);not null;index" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
