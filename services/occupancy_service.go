package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OccupancyService keeps guest status, room status and the room-history
// ledger consistent across check-in, transfer, check-out and deletion.
//
// Every operation is one transaction. Rows are locked guest first, then
// rooms in ascending id order, so two operations never wait on each other
// in opposite orders.
type OccupancyService struct {
	clock
	DB *gorm.DB
}

func NewOccupancyService(db *gorm.DB) *OccupancyService {
	return &OccupancyService{DB: db}
}

// GuestDraft is the input of CheckIn.
type GuestDraft struct {
	FullName      string         `json:"full_name" validate:"required"`
	ContactNumber string         `json:"contact_number" validate:"required"`
	Email         string         `json:"email" validate:"omitempty,email"`
	IDProofURL    string         `json:"id_proof_url" validate:"required"`
	CheckInDate   datatypes.Date `json:"check_in_date"`
	RentAmount    float64        `json:"rent_amount" validate:"gt=0"`
}

// GuestUpdate carries the optional fields of a guest edit. Status and the
// date/room fields route through the same state transitions as the
// dedicated operations.
type GuestUpdate struct {
	FullName      *string  `json:"full_name"`
	ContactNumber *string  `json:"contact_number"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	IDProofURL    *string  `json:"id_proof_url"`
	RentAmount    *float64 `json:"rent_amount" validate:"omitempty,gt=0"`
	Status        *string  `json:"status"`
	CheckInDate   *string  `json:"check_in_date"`
	CheckOutDate  *string  `json:"check_out_date"`
	RoomID        *uint    `json:"room_id"`
}

func (s *OccupancyService) today() datatypes.Date {
	return models.DateOf(s.now())
}

// CheckIn creates an active guest in roomID and opens its first stay.
func (s *OccupancyService) CheckIn(ctx context.Context, draft GuestDraft, roomID uint) (*models.Guest, error) {
	log.Printf("➡️ OccupancyService.CheckIn room_id=%d name=%q", roomID, draft.FullName)

	if err := validateInput(draft); err != nil {
		return nil, err
	}
	if roomID == 0 {
		return nil, ErrMissingFields.WithMessage("room_id is required")
	}
	if isZeroDate(draft.CheckInDate) {
		return nil, ErrMissingFields.WithMessage("check_in_date is required")
	}

	var guest models.Guest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		room, err := lockRoom(repo, roomID)
		if err != nil {
			return err
		}
		if err := ensureCapacity(repo, room); err != nil {
			return err
		}

		guest = models.Guest{
			FullName:      strings.TrimSpace(draft.FullName),
			ContactNumber: strings.TrimSpace(draft.ContactNumber),
			Email:         strings.TrimSpace(draft.Email),
			IDProofURL:    strings.TrimSpace(draft.IDProofURL),
			RoomID:        room.ID,
			CheckInDate:   models.DateOf(timeOf(draft.CheckInDate)),
			RentAmount:    draft.RentAmount,
			Status:        models.GuestActive,
		}
		if err := tx.Create(&guest).Error; err != nil {
			return fmt.Errorf("create guest: %w", err)
		}
		if _, err := repo.OpenHistory(guest.ID, room.ID, guest.CheckInDate); err != nil {
			return fmt.Errorf("open room history: %w", err)
		}
		_, err = repo.SyncRoomStatus(room.ID)
		return err
	})
	if err != nil {
		log.Printf("⬅️ OccupancyService.CheckIn error: %v", err)
		return nil, err
	}

	log.Printf("⬅️ OccupancyService.CheckIn ok: guest_id=%d room_id=%d", guest.ID, guest.RoomID)
	return &guest, nil
}

// CheckOut marks the guest inactive as of date (today when nil), closes the
// open stay and frees the room once nobody active is left in it.
func (s *OccupancyService) CheckOut(ctx context.Context, guestID uint, date *datatypes.Date) (*models.Guest, error) {
	log.Printf("➡️ OccupancyService.CheckOut guest_id=%d", guestID)

	var guest *models.Guest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		guest, err = lockGuest(repo, guestID)
		if err != nil {
			return err
		}
		if !guest.IsActive() {
			return ErrAlreadyCheckedOut
		}

		out := s.today()
		if date != nil {
			out = models.DateOf(timeOf(*date))
		}
		return checkOut(repo, guest, out)
	})
	if err != nil {
		log.Printf("⬅️ OccupancyService.CheckOut error: %v", err)
		return nil, err
	}
	return guest, nil
}

// TransferRoom moves the guest to newRoomID. For an active guest the current
// stay is closed today and a new one opens today in the new room.
func (s *OccupancyService) TransferRoom(ctx context.Context, guestID, newRoomID uint) (*models.Guest, error) {
	log.Printf("➡️ OccupancyService.TransferRoom guest_id=%d new_room_id=%d", guestID, newRoomID)

	var guest *models.Guest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		guest, err = lockGuest(repo, guestID)
		if err != nil {
			return err
		}
		return transfer(repo, guest, newRoomID, s.today())
	})
	if err != nil {
		log.Printf("⬅️ OccupancyService.TransferRoom error: %v", err)
		return nil, err
	}
	return guest, nil
}

// UpdateGuestStatus switches a guest between active and inactive. Going
// inactive is a check-out today; going active is a Reactivate into the
// guest's current room.
func (s *OccupancyService) UpdateGuestStatus(ctx context.Context, guestID uint, status models.GuestStatus) (*models.Guest, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus.WithMessage("Status must be either active or inactive")
	}

	var guest *models.Guest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		guest, err = lockGuest(repo, guestID)
		if err != nil {
			return err
		}
		switch {
		case guest.Status == status:
			return nil
		case status == models.GuestInactive:
			return checkOut(repo, guest, s.today())
		default:
			return reactivate(repo, guest, guest.RoomID, s.today())
		}
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

// Reactivate brings an inactive guest back through the same checks as a
// fresh check-in: capacity of the target room under lock, a new open stay
// starting today, and the room flipped to occupied. roomID nil keeps the
// guest's last room.
func (s *OccupancyService) Reactivate(ctx context.Context, guestID uint, roomID *uint) (*models.Guest, error) {
	log.Printf("➡️ OccupancyService.Reactivate guest_id=%d", guestID)

	var guest *models.Guest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		guest, err = lockGuest(repo, guestID)
		if err != nil {
			return err
		}
		if guest.IsActive() {
			return ErrAlreadyActive
		}
		target := guest.RoomID
		if roomID != nil && *roomID != 0 {
			target = *roomID
		}
		return reactivate(repo, guest, target, s.today())
	})
	if err != nil {
		log.Printf("⬅️ OccupancyService.Reactivate error: %v", err)
		return nil, err
	}
	return guest, nil
}

// UpdateGuest applies a partial edit in one transaction. Plain fields are
// written first, then status, check-in date, check-out date and room in that
// order, each through its state transition.
func (s *OccupancyService) UpdateGuest(ctx context.Context, guestID uint, in GuestUpdate) (*models.Guest, error) {
	log.Printf("➡️ OccupancyService.UpdateGuest guest_id=%d", guestID)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var status models.GuestStatus
	if in.Status != nil && *in.Status != "" {
		st, err := models.ParseGuestStatus(*in.Status)
		if err != nil {
			return nil, ErrInvalidStatus.WithMessage("Status must be either active or inactive")
		}
		status = st
	}
	checkIn, err := parseOptionalDate(in.CheckInDate)
	if err != nil {
		return nil, err
	}
	checkOutDate, err := parseOptionalDate(in.CheckOutDate)
	if err != nil {
		return nil, err
	}

	today := s.today()
	var guest *models.Guest
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		guest, err = lockGuest(repo, guestID)
		if err != nil {
			return err
		}

		applyString(&guest.FullName, in.FullName)
		applyString(&guest.ContactNumber, in.ContactNumber)
		applyString(&guest.IDProofURL, in.IDProofURL)
		if in.Email != nil {
			guest.Email = strings.TrimSpace(*in.Email)
		}
		if in.RentAmount != nil {
			guest.RentAmount = *in.RentAmount
		}
		if err := repo.SaveGuest(guest); err != nil {
			return fmt.Errorf("save guest: %w", err)
		}

		roomHandled := false
		switch {
		case status == models.GuestInactive && guest.IsActive() && checkOutDate == nil:
			if err := checkOut(repo, guest, today); err != nil {
				return err
			}
		case status == models.GuestActive && !guest.IsActive():
			target := guest.RoomID
			if in.RoomID != nil && *in.RoomID != 0 {
				target = *in.RoomID
				roomHandled = true
			}
			if err := reactivate(repo, guest, target, today); err != nil {
				return err
			}
		}

		if checkIn != nil {
			if guest.CheckOutDate != nil && models.DateBefore(*guest.CheckOutDate, *checkIn) {
				return ErrCheckOutBeforeCheck
			}
			// only a single stay can be re-dated; later stays start where
			// the previous one ended
			stays, err := repo.FindHistoryByGuest(guest.ID)
			if err != nil {
				return fmt.Errorf("find room history: %w", err)
			}
			if len(stays) > 1 {
				return ErrInvalidOperation.WithMessage("Check-in date cannot be changed once the guest has more than one stay")
			}
			guest.CheckInDate = *checkIn
			if err := repo.SaveGuest(guest); err != nil {
				return fmt.Errorf("save guest: %w", err)
			}
			if len(stays) == 1 {
				if err := repo.MoveHistoryStart(stays[0].ID, *checkIn); err != nil {
					return fmt.Errorf("move history start: %w", err)
				}
			}
		}

		if checkOutDate != nil {
			if guest.IsActive() {
				if err := checkOut(repo, guest, *checkOutDate); err != nil {
					return err
				}
			} else {
				if models.DateBefore(*checkOutDate, guest.CheckInDate) {
					return ErrCheckOutBeforeCheck
				}
				guest.CheckOutDate = checkOutDate
				if err := repo.SaveGuest(guest); err != nil {
					return fmt.Errorf("save guest: %w", err)
				}
			}
		}

		if in.RoomID != nil && *in.RoomID != 0 && !roomHandled {
			return transfer(repo, guest, *in.RoomID, today)
		}
		return nil
	})
	if err != nil {
		log.Printf("⬅️ OccupancyService.UpdateGuest error: %v", err)
		return nil, err
	}
	return guest, nil
}

// DeleteGuest hard-deletes a guest without payments together with its stays
// and notifications, then recomputes the room's status.
func (s *OccupancyService) DeleteGuest(ctx context.Context, guestID uint) error {
	log.Printf("➡️ OccupancyService.DeleteGuest guest_id=%d", guestID)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		guest, err := lockGuest(repo, guestID)
		if err != nil {
			return err
		}
		n, err := repo.CountPaymentsByGuest(guest.ID)
		if err != nil {
			return fmt.Errorf("count payments: %w", err)
		}
		if n > 0 {
			return ErrGuestHasPayments
		}

		if err := tx.Where("guest_id = ?", guest.ID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		if err := tx.Where("guest_id = ?", guest.ID).Delete(&models.RoomHistory{}).Error; err != nil {
			return fmt.Errorf("delete room history: %w", err)
		}
		if err := tx.Delete(&models.Guest{}, guest.ID).Error; err != nil {
			return fmt.Errorf("delete guest: %w", err)
		}
		return syncRoom(repo, guest.RoomID)
	})
	if err != nil {
		log.Printf("⬅️ OccupancyService.DeleteGuest error: %v", err)
	}
	return err
}

// GuestHistory lists every stay of the guest, oldest first.
func (s *OccupancyService) GuestHistory(ctx context.Context, guestID uint) ([]models.RoomHistory, error) {
	repo := repositories.New(s.DB.WithContext(ctx))
	if _, err := findGuest(repo, guestID); err != nil {
		return nil, err
	}
	return repo.FindHistoryByGuest(guestID)
}

// ----------------------------------------------------
// transitions (run inside the caller's transaction)
// ----------------------------------------------------

func checkOut(repo *repositories.Repository, guest *models.Guest, out datatypes.Date) error {
	if models.DateBefore(out, guest.CheckInDate) {
		return ErrCheckOutBeforeCheck
	}
	open, err := repo.FindOpenHistory(guest.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("find open room history: %w", err)
	}
	if open != nil && models.DateBefore(out, open.StartDate) {
		return ErrCheckOutBeforeCheck
	}

	guest.Status = models.GuestInactive
	guest.CheckOutDate = models.DatePtr(out)
	if err := repo.SaveGuest(guest); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	if _, err := repo.CloseOpenHistory(guest.ID, out); err != nil {
		return fmt.Errorf("close room history: %w", err)
	}
	return syncRoom(repo, guest.RoomID)
}

func transfer(repo *repositories.Repository, guest *models.Guest, newRoomID uint, today datatypes.Date) error {
	if newRoomID == guest.RoomID {
		return nil
	}
	oldRoomID := guest.RoomID

	rooms, err := lockRooms(repo, oldRoomID, newRoomID)
	if err != nil {
		return err
	}
	newRoom := rooms[newRoomID]
	if newRoom == nil {
		return ErrRoomNotFound.WithMessage("New room not found")
	}

	if guest.IsActive() {
		if err := ensureCapacity(repo, newRoom); err != nil {
			if errors.Is(err, ErrRoomAtCapacity) {
				return ErrRoomAtCapacity.WithMessage("New room is at full capacity")
			}
			return err
		}

		// a stay booked to start in the future is switched on its start day
		switchDay := today
		open, err := repo.FindOpenHistory(guest.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("find open room history: %w", err)
		}
		if open != nil && models.DateBefore(switchDay, open.StartDate) {
			switchDay = open.StartDate
		}
		if _, err := repo.CloseOpenHistory(guest.ID, switchDay); err != nil {
			return fmt.Errorf("close room history: %w", err)
		}
		if _, err := repo.OpenHistory(guest.ID, newRoomID, switchDay); err != nil {
			return fmt.Errorf("open room history: %w", err)
		}
	}

	guest.RoomID = newRoomID
	if err := repo.SaveGuest(guest); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	if err := syncRoom(repo, oldRoomID); err != nil {
		return err
	}
	return syncRoom(repo, newRoomID)
}

func reactivate(repo *repositories.Repository, guest *models.Guest, roomID uint, today datatypes.Date) error {
	oldRoomID := guest.RoomID
	rooms, err := lockRooms(repo, oldRoomID, roomID)
	if err != nil {
		return err
	}
	room := rooms[roomID]
	if room == nil {
		return ErrRoomNotFound
	}
	if err := ensureCapacity(repo, room); err != nil {
		return err
	}
	if _, err := repo.CloseOpenHistory(guest.ID, today); err != nil {
		return fmt.Errorf("close room history: %w", err)
	}

	guest.Status = models.GuestActive
	guest.CheckOutDate = nil
	guest.CheckInDate = today
	guest.RoomID = room.ID
	if err := repo.SaveGuest(guest); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	if _, err := repo.OpenHistory(guest.ID, room.ID, today); err != nil {
		return fmt.Errorf("open room history: %w", err)
	}
	if oldRoomID != room.ID {
		if err := syncRoom(repo, oldRoomID); err != nil {
			return err
		}
	}
	return syncRoom(repo, room.ID)
}

// lockRooms locks the given rooms in ascending id order, once each. Rooms
// that no longer exist are absent from the result.
func lockRooms(repo *repositories.Repository, ids ...uint) (map[uint]*models.Room, error) {
	sorted := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rooms := make(map[uint]*models.Room, len(sorted))
	for _, id := range sorted {
		room, err := repo.LockRoom(id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock room %d: %w", id, err)
		}
		rooms[id] = room
	}
	return rooms, nil
}

// ensureCapacity rejects a new assignment when the room already holds
// capacity active guests. The caller must hold the room lock.
func ensureCapacity(repo *repositories.Repository, room *models.Room) error {
	n, err := repo.CountActiveGuests(room.ID)
	if err != nil {
		return fmt.Errorf("count active guests: %w", err)
	}
	if n >= int64(room.Capacity) {
		return ErrRoomAtCapacity
	}
	return nil
}

// syncRoom locks the room and recomputes its status. A room that no longer
// exists has nothing to recompute.
func syncRoom(repo *repositories.Repository, roomID uint) error {
	if _, err := repo.LockRoom(roomID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lock room %d: %w", roomID, err)
	}
	if _, err := repo.SyncRoomStatus(roomID); err != nil {
		return fmt.Errorf("sync room %d: %w", roomID, err)
	}
	return nil
}

func lockRoom(repo *repositories.Repository, id uint) (*models.Room, error) {
	room, err := repo.LockRoom(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock room %d: %w", id, err)
	}
	return room, nil
}

func lockGuest(repo *repositories.Repository, id uint) (*models.Guest, error) {
	guest, err := repo.LockGuest(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock guest %d: %w", id, err)
	}
	return guest, nil
}

func findGuest(repo *repositories.Repository, id uint) (*models.Guest, error) {
	guest, err := repo.FindGuest(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find guest %d: %w", id, err)
	}
	return guest, nil
}

func applyString(dst *string, v *string) {
	if v == nil {
		return
	}
	if s := strings.TrimSpace(*v); s != "" {
		*dst = s
	}
}
