package services

import (
	"context"
	"testing"
	"time"

	"guesthouse-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPaymentService_CreateAndUpdate(t *testing.T) {
	db := newTestDB(t)
	occ := NewOccupancyService(db)
	occ.Now = fixedClock(2024, time.March, 10)
	svc := NewPaymentService(db)

	room := createRoom(t, db, "101", 1)
	g := checkIn(t, occ, "Asha", room.ID, march1)

	in := PaymentInput{
		GuestID:     g.ID,
		Amount:      5000,
		PaymentDate: "2024-03-05",
		PaymentType: "full",
		Status:      "paid",
		DueDate:     "2024-03-01",
	}
	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.Equal(t, "2024-03-05", models.FormatDate(*p.PaymentDate))

	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrPaymentExists)

	bad := in
	bad.DueDate = "2024-04-01"
	bad.PaymentType = "installment"
	_, err = svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidPaymentType)

	bad = in
	bad.DueDate = "2024-04-01"
	bad.Status = "refunded"
	_, err = svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	bad = in
	bad.DueDate = "01-04-2024"
	_, err = svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidDate)

	bad = in
	bad.GuestID = 999
	bad.DueDate = "2024-04-01"
	_, err = svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, ErrGuestNotFound)

	april := in
	april.DueDate = "2024-04-01"
	april.Status = "unpaid"
	april.PaymentDate = ""
	second, err := svc.Create(context.Background(), april)
	require.NoError(t, err)
	assert.Nil(t, second.PaymentDate)

	_, err = svc.Update(context.Background(), second.ID, PaymentUpdate{DueDate: strPtr("2024-03-01")})
	assert.ErrorIs(t, err, ErrPaymentExists)

	updated, err := svc.Update(context.Background(), second.ID, PaymentUpdate{
		Status:      strPtr("partial"),
		PaymentType: strPtr("partial"),
		PaymentDate: strPtr("2024-04-03"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartiallyPaid, updated.Status)
	assert.Equal(t, models.PaymentPartial, updated.PaymentType)
	assert.Equal(t, "2024-04-03", models.FormatDate(*updated.PaymentDate))

	_, err = svc.Update(context.Background(), 999, PaymentUpdate{Status: strPtr("paid")})
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentService_ListAndDelete(t *testing.T) {
	db := newTestDB(t)
	occ := NewOccupancyService(db)
	occ.Now = fixedClock(2024, time.March, 10)
	svc := NewPaymentService(db)
	notes := NewNotificationService(db, &recordingSender{})

	room := createRoom(t, db, "101", 2)
	a := checkIn(t, occ, "Asha", room.ID, march1)
	b := checkIn(t, occ, "Bilal", room.ID, march1)

	pa, err := svc.Create(context.Background(), PaymentInput{GuestID: a.ID, Amount: 100, PaymentType: "full", Status: "unpaid", DueDate: "2024-03-01"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), PaymentInput{GuestID: b.ID, Amount: 100, PaymentType: "full", Status: "paid", DueDate: "2024-03-01"})
	require.NoError(t, err)

	unpaid, err := svc.List(context.Background(), PaymentFilter{Status: "unpaid"})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, a.ID, unpaid[0].GuestID)

	byGuest, err := svc.ByGuest(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, byGuest, 1)

	_, err = svc.ByGuest(context.Background(), 999)
	assert.ErrorIs(t, err, ErrGuestNotFound)

	n, err := notes.Create(context.Background(), NotificationInput{GuestID: a.ID, PaymentID: &pa.ID, Type: "sms", Message: "pay up"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), pa.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), pa.ID), ErrPaymentNotFound)

	kept, err := notes.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.PaymentID)
}
