package services

import (
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidState
	KindInvalid
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	}
	return "internal"
}

// Error is a failure the API boundary can show to the client as-is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return strings.ToLower(e.Code) }

// Is matches on Code so a message-customised copy still equals its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg}
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrRoomNotFound         = newError(KindNotFound, "ROOM_NOT_FOUND", "Room not found")
	ErrGuestNotFound        = newError(KindNotFound, "GUEST_NOT_FOUND", "Guest not found")
	ErrPaymentNotFound      = newError(KindNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
	ErrNotificationNotFound = newError(KindNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found")
	ErrUserNotFound         = newError(KindNotFound, "USER_NOT_FOUND", "User not found")

	ErrRoomAtCapacity         = newError(KindConflict, "ROOM_FULL", "Room is at full capacity")
	ErrRoomExists             = newError(KindConflict, "ROOM_EXISTS", "Room number already exists")
	ErrRoomOccupied           = newError(KindConflict, "ROOM_OCCUPIED", "Cannot delete room with active guests")
	ErrCapacityBelowOccupancy = newError(KindConflict, "CAPACITY_BELOW_OCCUPANCY", "Capacity cannot be lower than the number of active guests")
	ErrEmailExists            = newError(KindConflict, "EMAIL_EXISTS", "Email already exists")
	ErrGuestHasPayments       = newError(KindConflict, "GUEST_HAS_PAYMENTS", "Cannot delete guest with payment records. Consider marking as inactive instead.")
	ErrPaymentExists          = newError(KindConflict, "PAYMENT_EXISTS", "A payment with this due date already exists for the guest")
	ErrSetupDone              = newError(KindConflict, "ALREADY_SETUP", "Initial setup has already been completed")

	ErrAlreadyCheckedOut   = newError(KindInvalidState, "ALREADY_CHECKED_OUT", "Guest has already checked out")
	ErrAlreadyActive       = newError(KindInvalidState, "ALREADY_ACTIVE", "Guest is already active")
	ErrInvalidMonth        = newError(KindInvalidState, "INVALID_MONTH", "Month must be between 1 and 12")
	ErrInvalidStatus       = newError(KindInvalidState, "INVALID_STATUS", "Invalid status value")
	ErrCheckOutBeforeCheck = newError(KindInvalidState, "CHECK_OUT_BEFORE_CHECK_IN", "Check-out date cannot be before the check-in date")
	ErrRoomStatusMismatch  = newError(KindInvalidState, "INVALID_STATUS", "Room status must match its occupancy")

	ErrMissingFields      = newError(KindInvalid, "MISSING_FIELDS", "Required fields are missing")
	ErrInvalidDate        = newError(KindInvalid, "INVALID_DATE_FORMAT", "Date format should be YYYY-MM-DD")
	ErrInvalidPaymentType = newError(KindInvalid, "INVALID_PAYMENT_TYPE", "Payment type must be either full or partial")
	ErrInvalidType        = newError(KindInvalid, "INVALID_TYPE", "Type must be either sms or email")
	ErrInvalidRole        = newError(KindInvalid, "INVALID_ROLE", "Role must be either admin or manager")
	ErrInvalidDaysBefore  = newError(KindInvalid, "INVALID_DAYS_BEFORE", "days_before cannot be negative")
	ErrInvalidYear        = newError(KindInvalid, "INVALID_YEAR", "Year must be an integer")
	ErrInvalidPassword    = newError(KindInvalid, "INVALID_PASSWORD", "Current password is incorrect")
	ErrInvalidOperation   = newError(KindInvalid, "INVALID_OPERATION", "You cannot delete your own account")

	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrInvalidToken       = newError(KindUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	ErrForbidden          = newError(KindForbidden, "UNAUTHORIZED", "You are not allowed to perform this action")
)

// KindOf reports the kind of err, KindInternal for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique constraint")
}
