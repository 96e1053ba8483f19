package models

import "fmt"

type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomOccupied  RoomStatus = "occupied"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied:
		return true
	}
	return false
}

func ParseRoomStatus(s string) (RoomStatus, error) {
	st := RoomStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid room status %q", s)
	}
	return st, nil
}

type GuestStatus string

const (
	GuestActive   GuestStatus = "active"
	GuestInactive GuestStatus = "inactive"
)

func (s GuestStatus) Valid() bool {
	switch s {
	case GuestActive, GuestInactive:
		return true
	}
	return false
}

func ParseGuestStatus(s string) (GuestStatus, error) {
	st := GuestStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid guest status %q", s)
	}
	return st, nil
}

type PaymentType string

const (
	PaymentFull    PaymentType = "full"
	PaymentPartial PaymentType = "partial"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentFull, PaymentPartial:
		return true
	}
	return false
}

func ParsePaymentType(s string) (PaymentType, error) {
	t := PaymentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid payment type %q", s)
	}
	return t, nil
}

type PaymentStatus string

const (
	PaymentPaid          PaymentStatus = "paid"
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partial"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPartiallyPaid:
		return true
	}
	return false
}

// Outstanding reports whether money is still owed on the payment.
func (s PaymentStatus) Outstanding() bool {
	switch s {
	case PaymentUnpaid, PaymentPartiallyPaid:
		return true
	}
	return false
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid payment status %q", s)
	}
	return st, nil
}

// OutstandingPaymentStatuses is the set used in "status IN ?" filters.
var OutstandingPaymentStatuses = []PaymentStatus{PaymentUnpaid, PaymentPartiallyPaid}

type NotificationType string

const (
	NotificationSMS   NotificationType = "sms"
	NotificationEmail NotificationType = "email"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationSMS, NotificationEmail:
		return true
	}
	return false
}

func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid notification type %q", s)
	}
	return t, nil
}

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationPending, NotificationSent, NotificationFailed:
		return true
	}
	return false
}

func ParseNotificationStatus(s string) (NotificationStatus, error) {
	st := NotificationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid notification status %q", s)
	}
	return st, nil
}

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	}
	return false
}

func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}
