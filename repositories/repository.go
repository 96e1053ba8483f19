// Package repositories holds the explicit queries the services run against
// the store. A Repository is bound to one *gorm.DB, which is either the root
// handle or the transaction of the current unit of work.
package repositories

import (
	"errors"
	"fmt"

	"guesthouse-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by every Find*/Lock* method when no row matches.
var ErrNotFound = errors.New("record_not_found")

type Repository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ----------------------------------------------------
// Rooms
// ----------------------------------------------------

func (r *Repository) FindRoom(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.DB.First(&room, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// LockRoom reads the room with SELECT ... FOR UPDATE so concurrent capacity
// checks on the same room are serialised until the transaction ends.
func (r *Repository) LockRoom(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (r *Repository) FindRoomByNumber(number string) (*models.Room, error) {
	var room models.Room
	if err := r.DB.Where("room_number = ?", number).First(&room).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (r *Repository) FindRooms(status models.RoomStatus) ([]models.Room, error) {
	var rooms []models.Room
	q := r.DB.Order("room_number ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *Repository) CountActiveGuests(roomID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&models.Guest{}).
		Where("room_id = ? AND status = ?", roomID, models.GuestActive).
		Count(&n).Error
	return n, err
}

// SyncRoomStatus recomputes the room's status from its active-guest count and
// writes it back when it changed.
func (r *Repository) SyncRoomStatus(roomID uint) (models.RoomStatus, error) {
	room, err := r.FindRoom(roomID)
	if err != nil {
		return "", err
	}
	n, err := r.CountActiveGuests(roomID)
	if err != nil {
		return "", fmt.Errorf("count active guests of room %d: %w", roomID, err)
	}
	want := models.RoomAvailable
	if n > 0 {
		want = models.RoomOccupied
	}
	if room.Status == want {
		return want, nil
	}
	if err := r.DB.Model(&models.Room{}).Where("id = ?", roomID).Update("status", want).Error; err != nil {
		return "", fmt.Errorf("update status of room %d: %w", roomID, err)
	}
	return want, nil
}

// ----------------------------------------------------
// Guests
// ----------------------------------------------------

func (r *Repository) FindGuest(id uint) (*models.Guest, error) {
	var guest models.Guest
	if err := r.DB.First(&guest, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &guest, nil
}

func (r *Repository) LockGuest(id uint) (*models.Guest, error) {
	var guest models.Guest
	if err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&guest, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &guest, nil
}

func (r *Repository) FindGuestsByRoom(roomID uint) ([]models.Guest, error) {
	var guests []models.Guest
	err := r.DB.Where("room_id = ?", roomID).Order("id ASC").Find(&guests).Error
	return guests, err
}

func (r *Repository) FindActiveGuests() ([]models.Guest, error) {
	var guests []models.Guest
	err := r.DB.Where("status = ?", models.GuestActive).Order("id ASC").Find(&guests).Error
	return guests, err
}

// FindGuestsByIDs returns the guests keyed by id.
func (r *Repository) FindGuestsByIDs(ids []uint) (map[uint]models.Guest, error) {
	out := make(map[uint]models.Guest, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var guests []models.Guest
	if err := r.DB.Where("id IN ?", ids).Find(&guests).Error; err != nil {
		return nil, err
	}
	for _, g := range guests {
		out[g.ID] = g
	}
	return out, nil
}

func (r *Repository) SaveGuest(g *models.Guest) error {
	return r.DB.Save(g).Error
}

// ----------------------------------------------------
// Room history
// ----------------------------------------------------

func (r *Repository) FindOpenHistory(guestID uint) (*models.RoomHistory, error) {
	var h models.RoomHistory
	err := r.DB.Where("guest_id = ? AND end_date IS NULL", guestID).
		Order("id DESC").
		First(&h).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

func (r *Repository) FindHistoryByGuest(guestID uint) ([]models.RoomHistory, error) {
	var list []models.RoomHistory
	err := r.DB.Where("guest_id = ?", guestID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *Repository) OpenHistory(guestID, roomID uint, start datatypes.Date) (*models.RoomHistory, error) {
	h := models.RoomHistory{GuestID: guestID, RoomID: roomID, StartDate: start}
	if err := r.DB.Create(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// CloseOpenHistory ends every open entry of the guest at end. It reports how
// many entries were closed.
func (r *Repository) CloseOpenHistory(guestID uint, end datatypes.Date) (int64, error) {
	res := r.DB.Model(&models.RoomHistory{}).
		Where("guest_id = ? AND end_date IS NULL", guestID).
		Update("end_date", end)
	return res.RowsAffected, res.Error
}

func (r *Repository) MoveHistoryStart(id uint, start datatypes.Date) error {
	return r.DB.Model(&models.RoomHistory{}).
		Where("id = ?", id).
		Update("start_date", start).Error
}

// ----------------------------------------------------
// Payments
// ----------------------------------------------------

func (r *Repository) CountPaymentsByGuest(guestID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&models.Payment{}).Where("guest_id = ?", guestID).Count(&n).Error
	return n, err
}

func (r *Repository) FindPayment(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Repository) FindPaymentByGuestAndDue(guestID uint, due datatypes.Date) (*models.Payment, error) {
	var p models.Payment
	if err := r.DB.Where("guest_id = ? AND due_date = ?", guestID, due).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindGuestIDsWithPaymentDue returns the guests that already own a payment
// with exactly this due date.
func (r *Repository) FindGuestIDsWithPaymentDue(due datatypes.Date) (map[uint]bool, error) {
	var ids []uint
	if err := r.DB.Model(&models.Payment{}).Where("due_date = ?", due).Pluck("guest_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *Repository) FindOutstandingPayments(where string, args ...interface{}) ([]models.Payment, error) {
	var list []models.Payment
	q := r.DB.Where("status IN ?", models.OutstandingPaymentStatuses)
	if where != "" {
		q = q.Where(where, args...)
	}
	err := q.Order("due_date ASC, id ASC").Find(&list).Error
	return list, err
}

// ----------------------------------------------------
// Notifications
// ----------------------------------------------------

func (r *Repository) FindNotification(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.DB.First(&n, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// ----------------------------------------------------
// Users
// ----------------------------------------------------

func (r *Repository) FindUser(id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.DB.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) CountUsers() (int64, error) {
	var n int64
	err := r.DB.Model(&models.User{}).Count(&n).Error
	return n, err
}
