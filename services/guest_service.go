package services

import (
	"context"
	"fmt"
	"strings"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"gorm.io/gorm"
)

// GuestService is the read side of guests. Every write goes through
// OccupancyService.
type GuestService struct {
	DB *gorm.DB
}

func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{DB: db}
}

type GuestFilter struct {
	Status        string
	RoomID        uint
	CheckInAfter  string
	CheckInBefore string
}

func (s *GuestService) List(ctx context.Context, f GuestFilter) ([]models.Guest, error) {
	q := s.DB.WithContext(ctx).Model(&models.Guest{})
	if f.Status != "" {
		st, err := models.ParseGuestStatus(f.Status)
		if err != nil {
			return nil, ErrInvalidStatus.WithMessage("Status must be either active or inactive")
		}
		q = q.Where("status = ?", st)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	after, err := ParseDateParam(f.CheckInAfter)
	if err != nil {
		return nil, err
	}
	if after != nil {
		q = q.Where("check_in_date >= ?", *after)
	}
	before, err := ParseDateParam(f.CheckInBefore)
	if err != nil {
		return nil, err
	}
	if before != nil {
		q = q.Where("check_in_date <= ?", *before)
	}

	var guests []models.Guest
	if err := q.Order("id ASC").Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return guests, nil
}

func (s *GuestService) Get(ctx context.Context, id uint) (*models.Guest, error) {
	return findGuest(repositories.New(s.DB.WithContext(ctx)), id)
}

// Search matches query against name and contact number, ignoring case.
func (s *GuestService) Search(ctx context.Context, query string) ([]models.Guest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingFields.WithMessage("Search query is required")
	}
	like := "%" + strings.ToLower(query) + "%"

	var guests []models.Guest
	err := s.DB.WithContext(ctx).
		Where("LOWER(full_name) LIKE ? OR LOWER(contact_number) LIKE ?", like, like).
		Order("id ASC").
		Find(&guests).Error
	if err != nil {
		return nil, fmt.Errorf("search guests: %w", err)
	}
	return guests, nil
}
