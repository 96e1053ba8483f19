package models

import (
	"time"

	"gorm.io/datatypes"
)

type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	GuestID     uint            `gorm:"not null;uniqueIndex:idx_payment_guest_due" json:"guest_id"`
	Amount      float64         `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate *datatypes.Date `json:"payment_date"`
	PaymentType PaymentType     `gorm:"type:varchar(50);not null" json:"payment_type"`
	Status      PaymentStatus   `gorm:"type:varchar(50);not null;index" json:"status"`
	DueDate     datatypes.Date  `gorm:"not null;uniqueIndex:idx_payment_guest_due;index" json:"due_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
