package models

import (
	"time"

	"gorm.io/datatypes"
)

type Guest struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName      string          `gorm:"size:255;not null" json:"full_name"`
	ContactNumber string          `gorm:"size:50;not null" json:"contact_number"`
	Email         string          `gorm:"size:150" json:"email,omitempty"`
	IDProofURL    string          `gorm:"column:id_proof_url;size:255;not null" json:"id_proof_url"`
	RoomID        uint            `gorm:"index;not null" json:"room_id"`
	CheckInDate   datatypes.Date  `gorm:"not null" json:"check_in_date"`
	CheckOutDate  *datatypes.Date `json:"check_out_date"`
	RentAmount    float64         `gorm:"type:decimal(10,2);not null" json:"rent_amount"`
	Status        GuestStatus     `gorm:"type:varchar(50);not null;index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (g *Guest) IsActive() bool { return g.Status == GuestActive }
