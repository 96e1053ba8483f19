package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"guesthouse-backend/config"
	"guesthouse-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection, one in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// newDryRunDB builds MySQL statements without executing them, so a test can
// inspect the SQL a code path issues.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "guesthouse:secret@tcp(127.0.0.1:3306)/guesthouse_db?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 9, 30, 0, 0, time.UTC) }
}

func createRoom(t *testing.T, db *gorm.DB, number string, capacity int) *models.Room {
	t.Helper()
	room, err := NewRoomService(db).Create(context.Background(), RoomInput{RoomNumber: number, Capacity: capacity})
	require.NoError(t, err)
	return room
}

func draft(name string, checkIn time.Time) GuestDraft {
	return GuestDraft{
		FullName:      name,
		ContactNumber: "0800000000",
		Email:         "guest@example.com",
		IDProofURL:    "https://files.example.com/id/" + name,
		CheckInDate:   models.DateOf(checkIn),
		RentAmount:    5000,
	}
}

func checkIn(t *testing.T, svc *OccupancyService, name string, roomID uint, on time.Time) *models.Guest {
	t.Helper()
	g, err := svc.CheckIn(context.Background(), draft(name, on), roomID)
	require.NoError(t, err)
	return g
}

func reloadRoom(t *testing.T, db *gorm.DB, id uint) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, db.First(&room, id).Error)
	return room
}

func reloadGuest(t *testing.T, db *gorm.DB, id uint) models.Guest {
	t.Helper()
	var g models.Guest
	require.NoError(t, db.First(&g, id).Error)
	return g
}

// requireOccupancyInvariants checks every room's status against its active
// count and capacity, that no guest has more than one open stay, and that a
// guest's stays never overlap.
func requireOccupancyInvariants(t *testing.T, db *gorm.DB) {
	t.Helper()

	var rooms []models.Room
	require.NoError(t, db.Find(&rooms).Error)
	for _, r := range rooms {
		var n int64
		require.NoError(t, db.Model(&models.Guest{}).Where("room_id = ? AND status = ?", r.ID, models.GuestActive).Count(&n).Error)
		require.LessOrEqual(t, n, int64(r.Capacity), "room %s over capacity", r.RoomNumber)
		require.Equal(t, n > 0, r.Status == models.RoomOccupied, "room %s status %s with %d active", r.RoomNumber, r.Status, n)
	}

	type openCount struct {
		GuestID uint
		N       int64
	}
	var open []openCount
	require.NoError(t, db.Model(&models.RoomHistory{}).
		Select("guest_id, COUNT(*) AS n").
		Where("end_date IS NULL").
		Group("guest_id").
		Scan(&open).Error)
	for _, o := range open {
		require.LessOrEqual(t, o.N, int64(1), "guest %d has %d open stays", o.GuestID, o.N)
	}

	var stays []models.RoomHistory
	require.NoError(t, db.Order("guest_id ASC, id ASC").Find(&stays).Error)
	for i := 1; i < len(stays); i++ {
		prev, cur := stays[i-1], stays[i]
		if prev.GuestID != cur.GuestID {
			continue
		}
		require.NotNil(t, prev.EndDate, "guest %d has an open stay before stay %d", cur.GuestID, cur.ID)
		require.False(t, models.DateBefore(cur.StartDate, *prev.EndDate),
			"guest %d stay %d starts before stay %d ends", cur.GuestID, cur.ID, prev.ID)
	}
}

// recordingSender remembers what it was asked to send.
type recordingSender struct {
	mu   sync.Mutex
	sent []models.Notification
	fail models.NotificationType
}

func (r *recordingSender) Send(_ context.Context, n models.Notification, _ models.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.Type == r.fail {
		return errors.New("gateway unavailable")
	}
	r.sent = append(r.sent, n)
	return nil
}
