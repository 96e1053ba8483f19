package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var march1 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func newOccupancy(t *testing.T) *OccupancyService {
	svc := NewOccupancyService(newTestDB(t))
	svc.Now = fixedClock(2024, time.March, 10)
	return svc
}

func TestCheckIn_OpensStayAndOccupiesRoom(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "101", 2)
	assert.Equal(t, models.RoomAvailable, room.Status)

	g := checkIn(t, svc, "Asha", room.ID, march1)

	assert.Equal(t, models.GuestActive, g.Status)
	assert.Nil(t, g.CheckOutDate)
	assert.Equal(t, models.RoomOccupied, reloadRoom(t, svc.DB, room.ID).Status)

	history, err := svc.GuestHistory(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].IsOpen())
	assert.True(t, models.SameDate(models.DateOf(march1), history[0].StartDate))
	requireOccupancyInvariants(t, svc.DB)
}

func TestCheckIn_RoomAtCapacity(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "102", 2)
	checkIn(t, svc, "Asha", room.ID, march1)
	checkIn(t, svc, "Bilal", room.ID, march1)

	_, err := svc.CheckIn(context.Background(), draft("Chen", march1), room.ID)

	require.ErrorIs(t, err, ErrRoomAtCapacity)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, models.RoomOccupied, reloadRoom(t, svc.DB, room.ID).Status)

	var guests, stays int64
	require.NoError(t, svc.DB.Model(&models.Guest{}).Count(&guests).Error)
	require.NoError(t, svc.DB.Model(&models.RoomHistory{}).Count(&stays).Error)
	assert.EqualValues(t, 2, guests)
	assert.EqualValues(t, 2, stays)
	requireOccupancyInvariants(t, svc.DB)
}

func TestCheckIn_Validation(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "103", 1)

	t.Run("room missing", func(t *testing.T) {
		_, err := svc.CheckIn(context.Background(), draft("Asha", march1), 999)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
	t.Run("name missing", func(t *testing.T) {
		d := draft("", march1)
		_, err := svc.CheckIn(context.Background(), d, room.ID)
		require.ErrorIs(t, err, ErrMissingFields)
		assert.Contains(t, err.(*Error).Message, "full_name")
	})
	t.Run("rent must be positive", func(t *testing.T) {
		d := draft("Asha", march1)
		d.RentAmount = 0
		_, err := svc.CheckIn(context.Background(), d, room.ID)
		assert.ErrorIs(t, err, ErrMissingFields)
	})
	t.Run("check-in date missing", func(t *testing.T) {
		d := draft("Asha", march1)
		d.CheckInDate = datatypes.Date{}
		_, err := svc.CheckIn(context.Background(), d, room.ID)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	assert.Equal(t, models.RoomAvailable, reloadRoom(t, svc.DB, room.ID).Status)
}

func TestCheckOut_SoleGuestFreesRoom(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "201", 3)
	g := checkIn(t, svc, "Asha", room.ID, march1)

	out, err := svc.CheckOut(context.Background(), g.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.GuestInactive, out.Status)
	require.NotNil(t, out.CheckOutDate)
	assert.Equal(t, "2024-03-10", models.FormatDate(*out.CheckOutDate))
	assert.Equal(t, models.RoomAvailable, reloadRoom(t, svc.DB, room.ID).Status)
	requireOccupancyInvariants(t, svc.DB)
}

func TestCheckOut_RoomStaysOccupiedWhileOthersRemain(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "202", 2)
	a := checkIn(t, svc, "Asha", room.ID, march1)
	checkIn(t, svc, "Bilal", room.ID, march1)

	_, err := svc.CheckOut(context.Background(), a.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.RoomOccupied, reloadRoom(t, svc.DB, room.ID).Status)
	requireOccupancyInvariants(t, svc.DB)
}

func TestCheckOut_Guards(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "203", 1)
	g := checkIn(t, svc, "Asha", room.ID, march1)

	_, err := svc.CheckOut(context.Background(), 404, nil)
	assert.ErrorIs(t, err, ErrGuestNotFound)

	before := models.Date(2024, time.February, 20)
	_, err = svc.CheckOut(context.Background(), g.ID, &before)
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheck)
	assert.Equal(t, models.GuestActive, reloadGuest(t, svc.DB, g.ID).Status)

	_, err = svc.CheckOut(context.Background(), g.ID, nil)
	require.NoError(t, err)
	_, err = svc.CheckOut(context.Background(), g.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestCheckInTransferCheckOut_RoundTrip(t *testing.T) {
	svc := newOccupancy(t)
	a := createRoom(t, svc.DB, "A", 1)
	b := createRoom(t, svc.DB, "B", 1)
	g := checkIn(t, svc, "Asha", a.ID, march1)

	moved, err := svc.TransferRoom(context.Background(), g.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.RoomID)
	assert.Equal(t, models.RoomAvailable, reloadRoom(t, svc.DB, a.ID).Status)
	assert.Equal(t, models.RoomOccupied, reloadRoom(t, svc.DB, b.ID).Status)
	requireOccupancyInvariants(t, svc.DB)

	_, err = svc.CheckOut(context.Background(), g.ID, nil)
	require.NoError(t, err)

	history, err := svc.GuestHistory(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, h := range history {
		assert.False(t, h.IsOpen())
	}
	assert.Equal(t, a.ID, history[0].RoomID)
	assert.Equal(t, b.ID, history[1].RoomID)
	assert.True(t, models.SameDate(*history[0].EndDate, history[1].StartDate))
	assert.Equal(t, "2024-03-10", models.FormatDate(history[1].StartDate))
	assert.Equal(t, models.RoomAvailable, reloadRoom(t, svc.DB, b.ID).Status)
	requireOccupancyInvariants(t, svc.DB)
}

func TestTransferRoom_Guards(t *testing.T) {
	svc := newOccupancy(t)
	a := createRoom(t, svc.DB, "A", 1)
	full := createRoom(t, svc.DB, "F", 1)
	g := checkIn(t, svc, "Asha", a.ID, march1)
	checkIn(t, svc, "Bilal", full.ID, march1)

	_, err := svc.TransferRoom(context.Background(), g.ID, 999)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.TransferRoom(context.Background(), g.ID, full.ID)
	require.ErrorIs(t, err, ErrRoomAtCapacity)
	assert.Equal(t, "New room is at full capacity", err.(*Error).Message)

	// nothing moved
	assert.Equal(t, a.ID, reloadGuest(t, svc.DB, g.ID).RoomID)
	history, err := svc.GuestHistory(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	same, err := svc.TransferRoom(context.Background(), g.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, same.RoomID)
	history, err = svc.GuestHistory(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	requireOccupancyInvariants(t, svc.DB)
}

func TestTransferRoom_InactiveGuestSkipsCapacityAndHistory(t *testing.T) {
	svc := newOccupancy(t)
	a := createRoom(t, svc.DB, "A", 1)
	full := createRoom(t, svc.DB, "F", 1)
	g := checkIn(t, svc, "Asha", a.ID, march1)
	checkIn(t, svc, "Bilal", full.ID, march1)
	_, err := svc.CheckOut(context.Background(), g.ID, nil)
	require.NoError(t, err)

	moved, err := svc.TransferRoom(context.Background(), g.ID, full.ID)
	require.NoError(t, err)
	assert.Equal(t, full.ID, moved.RoomID)

	history, err := svc.GuestHistory(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsOpen())
	requireOccupancyInvariants(t, svc.DB)
}

func TestUpdateGuestStatus(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "301", 1)
	g := checkIn(t, svc, "Asha", room.ID, march1)

	_, err := svc.UpdateGuestStatus(context.Background(), g.ID, "gone")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	out, err := svc.UpdateGuestStatus(context.Background(), g.ID, models.GuestInactive)
	require.NoError(t, err)
	assert.Equal(t, models.GuestInactive, out.Status)
	assert.Equal(t, "2024-03-10", models.FormatDate(*out.CheckOutDate))
	assert.Equal(t, models.RoomAvailable, reloadRoom(t, svc.DB, room.ID).Status)

	back, err := svc.UpdateGuestStatus(context.Background(), g.ID, models.GuestActive)
	require.NoError(t, err)
	assert.Equal(t, models.GuestActive, back.Status)
	assert.Nil(t, back.CheckOutDate)
	assert.Equal(t, models.RoomOccupied, reloadRoom(t, svc.DB, room.ID).Status)

	history, err := svc.GuestHistory(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[1].IsOpen())
	requireOccupancyInvariants(t, svc.DB)
}

func TestReactivate_RechecksCapacity(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "302", 1)
	other := createRoom(t, svc.DB, "303", 1)
	g := checkIn(t, svc, "Asha", room.ID, march1)
	_, err := svc.CheckOut(context.Background(), g.ID, nil)
	require.NoError(t, err)
	checkIn(t, svc, "Bilal", room.ID, march1)

	_, err = svc.Reactivate(context.Background(), g.ID, nil)
	require.ErrorIs(t, err, ErrRoomAtCapacity)
	assert.Equal(t, models.GuestInactive, reloadGuest(t, svc.DB, g.ID).Status)

	back, err := svc.Reactivate(context.Background(), g.ID, &other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, back.RoomID)
	assert.Equal(t, "2024-03-10", models.FormatDate(back.CheckInDate))
	assert.Equal(t, models.RoomOccupied, reloadRoom(t, svc.DB, other.ID).Status)

	_, err = svc.Reactivate(context.Background(), g.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyActive)
	requireOccupancyInvariants(t, svc.DB)
}

func TestUpdateGuest(t *testing.T) {
	svc := newOccupancy(t)
	a := createRoom(t, svc.DB, "A", 2)
	b := createRoom(t, svc.DB, "B", 2)
	g := checkIn(t, svc, "Asha", a.ID, march1)

	name := "Asha Rao"
	rent := 6500.0
	checkInDate := "2024-03-02"
	out, err := svc.UpdateGuest(context.Background(), g.ID, GuestUpdate{
		FullName:    &name,
		RentAmount:  &rent,
		CheckInDate: &checkInDate,
		RoomID:      &b.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", out.FullName)
	assert.Equal(t, 6500.0, out.RentAmount)
	assert.Equal(t, b.ID, out.RoomID)

	history, err := svc.GuestHistory(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2024-03-02", models.FormatDate(history[0].StartDate))
	requireOccupancyInvariants(t, svc.DB)

	bad := "03/02/2024"
	_, err = svc.UpdateGuest(context.Background(), g.ID, GuestUpdate{CheckOutDate: &bad})
	assert.ErrorIs(t, err, ErrInvalidDate)

	outDate := "2024-03-12"
	out, err = svc.UpdateGuest(context.Background(), g.ID, GuestUpdate{CheckOutDate: &outDate})
	require.NoError(t, err)
	assert.Equal(t, models.GuestInactive, out.Status)
	assert.Equal(t, models.RoomAvailable, reloadRoom(t, svc.DB, b.ID).Status)
	requireOccupancyInvariants(t, svc.DB)
}

func TestUpdateGuest_CheckInDate(t *testing.T) {
	earlier := "2024-02-20"

	t.Run("rejected after a transfer", func(t *testing.T) {
		svc := newOccupancy(t)
		a := createRoom(t, svc.DB, "A", 2)
		b := createRoom(t, svc.DB, "B", 2)
		g := checkIn(t, svc, "Asha", a.ID, march1)
		_, err := svc.TransferRoom(context.Background(), g.ID, b.ID)
		require.NoError(t, err)

		_, err = svc.UpdateGuest(context.Background(), g.ID, GuestUpdate{CheckInDate: &earlier})
		assert.ErrorIs(t, err, ErrInvalidOperation)
		assert.Equal(t, "2024-03-01", models.FormatDate(reloadGuest(t, svc.DB, g.ID).CheckInDate))

		history, err := svc.GuestHistory(context.Background(), g.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "2024-03-01", models.FormatDate(history[0].StartDate))
		require.NotNil(t, history[0].EndDate)
		assert.Equal(t, "2024-03-10", models.FormatDate(*history[0].EndDate))
		assert.Equal(t, "2024-03-10", models.FormatDate(history[1].StartDate))
		assert.True(t, history[1].IsOpen())
		requireOccupancyInvariants(t, svc.DB)
	})

	t.Run("re-dates a single closed stay", func(t *testing.T) {
		svc := newOccupancy(t)
		room := createRoom(t, svc.DB, "C", 1)
		g := checkIn(t, svc, "Bilal", room.ID, march1)
		_, err := svc.CheckOut(context.Background(), g.ID, nil)
		require.NoError(t, err)

		out, err := svc.UpdateGuest(context.Background(), g.ID, GuestUpdate{CheckInDate: &earlier})
		require.NoError(t, err)
		assert.Equal(t, "2024-02-20", models.FormatDate(out.CheckInDate))

		history, err := svc.GuestHistory(context.Background(), g.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "2024-02-20", models.FormatDate(history[0].StartDate))
		requireOccupancyInvariants(t, svc.DB)
	})
}

func TestDeleteGuest(t *testing.T) {
	svc := newOccupancy(t)
	room := createRoom(t, svc.DB, "401", 2)
	paying := checkIn(t, svc, "Asha", room.ID, march1)
	leaving := checkIn(t, svc, "Bilal", room.ID, march1)

	require.NoError(t, svc.DB.Create(&models.Payment{
		GuestID:     paying.ID,
		Amount:      5000,
		PaymentType: models.PaymentFull,
		Status:      models.PaymentUnpaid,
		DueDate:     models.DateOf(march1),
	}).Error)

	err := svc.DeleteGuest(context.Background(), paying.ID)
	require.ErrorIs(t, err, ErrGuestHasPayments)
	assert.Equal(t, models.GuestActive, reloadGuest(t, svc.DB, paying.ID).Status)

	require.NoError(t, svc.DeleteGuest(context.Background(), leaving.ID))
	var n int64
	require.NoError(t, svc.DB.Model(&models.RoomHistory{}).Where("guest_id = ?", leaving.ID).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, models.RoomOccupied, reloadRoom(t, svc.DB, room.ID).Status)

	// the paying guest is marked inactive instead; once nobody is left the room frees up
	_, err = svc.CheckOut(context.Background(), paying.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, reloadRoom(t, svc.DB, room.ID).Status)

	assert.ErrorIs(t, svc.DeleteGuest(context.Background(), leaving.ID), ErrGuestNotFound)
	requireOccupancyInvariants(t, svc.DB)
}

func TestLockRooms_AscendingOnce(t *testing.T) {
	db := newDryRunDB(t)
	var locked []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:record_locks", func(tx *gorm.DB) {
		if strings.HasSuffix(tx.Statement.SQL.String(), "FOR UPDATE") {
			locked = append(locked, fmt.Sprint(tx.Statement.Vars[0]))
		}
	}))

	rooms, err := lockRooms(repositories.New(db), 9, 3, 9)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.Equal(t, []string{"3", "9"}, locked)
}
