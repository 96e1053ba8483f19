package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"gorm.io/gorm"
)

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

type RoomInput struct {
	RoomNumber string `json:"room_number" validate:"required"`
	Capacity   int    `json:"capacity" validate:"gt=0"`
	Notes      string `json:"notes"`
}

type RoomUpdate struct {
	RoomNumber *string `json:"room_number"`
	Capacity   *int    `json:"capacity" validate:"omitempty,gt=0"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
}

// RoomWithGuests is a room plus its active guests.
type RoomWithGuests struct {
	models.Room
	ActiveGuests []models.Guest `json:"active_guests"`
	Occupancy    int            `json:"occupancy"`
}

// ----------------------------------------------------
// 1. List / Get
// ----------------------------------------------------

func (s *RoomService) List(ctx context.Context, status string) ([]models.Room, error) {
	var st models.RoomStatus
	if status != "" {
		parsed, err := models.ParseRoomStatus(status)
		if err != nil {
			return nil, ErrInvalidStatus.WithMessage("Status must be either available or occupied")
		}
		st = parsed
	}
	rooms, err := repositories.New(s.DB.WithContext(ctx)).FindRooms(st)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (*RoomWithGuests, error) {
	repo := repositories.New(s.DB.WithContext(ctx))
	room, err := findRoom(repo, id)
	if err != nil {
		return nil, err
	}
	guests, err := repo.FindGuestsByRoom(room.ID)
	if err != nil {
		return nil, fmt.Errorf("find guests of room %d: %w", id, err)
	}
	active := []models.Guest{}
	for _, g := range guests {
		if g.IsActive() {
			active = append(active, g)
		}
	}
	return &RoomWithGuests{Room: *room, ActiveGuests: active, Occupancy: len(active)}, nil
}

// Guests lists every guest ever assigned to the room, active or not.
func (s *RoomService) Guests(ctx context.Context, id uint) ([]models.Guest, error) {
	repo := repositories.New(s.DB.WithContext(ctx))
	if _, err := findRoom(repo, id); err != nil {
		return nil, err
	}
	return repo.FindGuestsByRoom(id)
}

// ----------------------------------------------------
// 2. Create
// ----------------------------------------------------

func (s *RoomService) Create(ctx context.Context, in RoomInput) (*models.Room, error) {
	log.Printf("➡️ RoomService.Create room_number=%q", in.RoomNumber)

	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	repo := repositories.New(s.DB.WithContext(ctx))
	if _, err := repo.FindRoomByNumber(in.RoomNumber); err == nil {
		return nil, ErrRoomExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find room by number: %w", err)
	}

	room := models.Room{
		RoomNumber: in.RoomNumber,
		Capacity:   in.Capacity,
		Status:     models.RoomAvailable,
		Notes:      in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrRoomExists
		}
		log.Printf("❌ RoomService.Create DB error: %v", err)
		return nil, fmt.Errorf("create room: %w", err)
	}

	log.Printf("✅ Room %d (%s) created", room.ID, room.RoomNumber)
	return &room, nil
}

// ----------------------------------------------------
// 3. Update
// ----------------------------------------------------

// Update edits a room under its row lock. Capacity may not drop below the
// current active count and an explicit status must agree with occupancy.
func (s *RoomService) Update(ctx context.Context, id uint, in RoomUpdate) (*models.Room, error) {
	log.Printf("➡️ RoomService.Update room_id=%d", id)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var room *models.Room
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		room, err = lockRoom(repo, id)
		if err != nil {
			return err
		}
		active, err := repo.CountActiveGuests(room.ID)
		if err != nil {
			return fmt.Errorf("count active guests: %w", err)
		}

		if in.RoomNumber != nil {
			number := strings.TrimSpace(*in.RoomNumber)
			if number != "" && number != room.RoomNumber {
				if other, err := repo.FindRoomByNumber(number); err == nil && other.ID != room.ID {
					return ErrRoomExists
				} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("find room by number: %w", err)
				}
				room.RoomNumber = number
			}
		}
		if in.Capacity != nil {
			if int64(*in.Capacity) < active {
				return ErrCapacityBelowOccupancy
			}
			room.Capacity = *in.Capacity
		}
		if in.Status != nil && *in.Status != "" {
			st, err := models.ParseRoomStatus(*in.Status)
			if err != nil {
				return ErrInvalidStatus.WithMessage("Status must be either available or occupied")
			}
			if (st == models.RoomOccupied) != (active > 0) {
				return ErrRoomStatusMismatch
			}
		}
		if in.Notes != nil {
			room.Notes = *in.Notes
		}

		if err := tx.Save(room).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrRoomExists
			}
			return fmt.Errorf("save room: %w", err)
		}
		_, err = repo.SyncRoomStatus(room.ID)
		return err
	})
	if err != nil {
		log.Printf("⬅️ RoomService.Update error: %v", err)
		return nil, err
	}
	return findRoom(repositories.New(s.DB.WithContext(ctx)), id)
}

// ----------------------------------------------------
// 4. Delete
// ----------------------------------------------------

// Delete removes a room nobody is staying in. Inactive guests keep their
// last room_id as a historical reference.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	log.Printf("➡️ RoomService.Delete room_id=%d", id)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		room, err := lockRoom(repo, id)
		if err != nil {
			return err
		}
		active, err := repo.CountActiveGuests(room.ID)
		if err != nil {
			return fmt.Errorf("count active guests: %w", err)
		}
		if active > 0 {
			return ErrRoomOccupied
		}
		if err := tx.Delete(&models.Room{}, room.ID).Error; err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("⬅️ RoomService.Delete error: %v", err)
		return err
	}
	log.Printf("✅ Room ID %d deleted.", id)
	return nil
}

func findRoom(repo *repositories.Repository, id uint) (*models.Room, error) {
	room, err := repo.FindRoom(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room %d: %w", id, err)
	}
	return room, nil
}
