package services

import (
	"strings"
	"time"

	"guesthouse-backend/models"

	"gorm.io/datatypes"
)

func timeOf(d datatypes.Date) time.Time { return time.Time(d) }

func isZeroDate(d datatypes.Date) bool { return time.Time(d).IsZero() }

// parseOptionalDate parses a YYYY-MM-DD pointer; nil or blank yields nil.
func parseOptionalDate(s *string) (*datatypes.Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := models.ParseDate(*s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}

// ParseDateParam is parseOptionalDate for callers holding a plain string.
func ParseDateParam(s string) (*datatypes.Date, error) {
	return parseOptionalDate(&s)
}
