package models

import "time"

type Notification struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	GuestID   uint               `gorm:"index;not null" json:"guest_id"`
	PaymentID *uint              `gorm:"index" json:"payment_id"`
	Type      NotificationType   `gorm:"type:varchar(50);not null" json:"type"`
	Message   string             `gorm:"type:text;not null" json:"message"`
	Status    NotificationStatus `gorm:"type:varchar(50);not null;index" json:"status"`
	SentAt    *time.Time         `json:"sent_at"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
