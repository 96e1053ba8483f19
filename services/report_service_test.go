package services

import (
	"context"
	"testing"
	"time"

	"guesthouse-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService(t *testing.T) {
	db := newTestDB(t)
	occ := NewOccupancyService(db)
	occ.Now = fixedClock(2024, time.March, 10)
	reports := NewReportService(db)
	reports.Now = fixedClock(2024, time.March, 10)
	payments := NewPaymentService(db)

	r1 := createRoom(t, db, "101", 2)
	createRoom(t, db, "102", 1)
	createRoom(t, db, "103", 1)
	createRoom(t, db, "104", 1)
	a := checkIn(t, occ, "Asha", r1.ID, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	b := checkIn(t, occ, "Bilal", r1.ID, march1)
	_, err := occ.CheckOut(context.Background(), b.ID, nil)
	require.NoError(t, err)

	mustPay := func(in PaymentInput) {
		t.Helper()
		in.PaymentType = "full"
		_, err := payments.Create(context.Background(), in)
		require.NoError(t, err)
	}
	mustPay(PaymentInput{GuestID: a.ID, Amount: 5000, Status: "paid", DueDate: "2024-01-01", PaymentDate: "2024-01-03"})
	mustPay(PaymentInput{GuestID: a.ID, Amount: 5000, Status: "paid", DueDate: "2024-02-01", PaymentDate: "2024-02-02"})
	mustPay(PaymentInput{GuestID: a.ID, Amount: 2000, Status: "partial", DueDate: "2024-03-01", PaymentDate: "2024-03-04"})
	mustPay(PaymentInput{GuestID: b.ID, Amount: 4000, Status: "unpaid", DueDate: "2024-03-15"})

	t.Run("dashboard summary", func(t *testing.T) {
		sum, err := reports.DashboardSummary(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 1, sum.ActiveGuests)
		assert.EqualValues(t, 3, sum.VacantRooms)
		assert.InDelta(t, 10000, sum.TotalCollected, 0.001)
		assert.InDelta(t, 6000, sum.PendingDues, 0.001)
	})

	t.Run("occupancy", func(t *testing.T) {
		rate, err := reports.OccupancyRate(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 4, rate.TotalRooms)
		assert.EqualValues(t, 1, rate.OccupiedRooms)
		assert.InDelta(t, 25, rate.Rate, 0.001)

		rep, err := reports.OccupancyReport(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-10", rep.Date)
		require.Len(t, rep.Rooms, 4)
		assert.Equal(t, []string{"Asha"}, rep.Rooms[0].Guests)
		assert.Empty(t, rep.Rooms[1].Guests)

		vacant, err := reports.VacantRooms(context.Background())
		require.NoError(t, err)
		assert.Len(t, vacant, 3)
	})

	t.Run("new guests and dues", func(t *testing.T) {
		fresh, err := reports.NewGuests(context.Background())
		require.NoError(t, err)
		require.Len(t, fresh, 1)
		assert.Equal(t, b.ID, fresh[0].ID)

		week, err := reports.DueThisWeek(context.Background())
		require.NoError(t, err)
		require.Len(t, week, 1)
		assert.Equal(t, "2024-03-15", models.FormatDate(week[0].DueDate))
	})

	t.Run("monthly collection", func(t *testing.T) {
		mc, err := reports.MonthlyCollection(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, 2024, mc.Year)
		require.Len(t, mc.Months, 12)
		assert.Equal(t, "January", mc.Months[0].MonthName)
		assert.InDelta(t, 5000, mc.Months[0].Amount, 0.001)
		assert.InDelta(t, 5000, mc.Months[1].Amount, 0.001)
		assert.Zero(t, mc.Months[2].Amount)

		empty, err := reports.MonthlyCollection(context.Background(), 2023)
		require.NoError(t, err)
		for _, m := range empty.Months {
			assert.Zero(t, m.Amount)
		}
	})

	t.Run("rent report", func(t *testing.T) {
		rent, err := reports.RentReport(context.Background(), RentReportFilter{})
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", rent.StartDate)
		assert.Equal(t, "2024-03-10", rent.EndDate)
		require.Len(t, rent.Payments, 1)
		assert.Equal(t, "Asha", rent.Payments[0].GuestName)
		assert.Equal(t, "101", rent.Payments[0].RoomNumber)
		assert.Zero(t, rent.TotalAmount)

		start := models.Date(2024, time.January, 1)
		all, err := reports.RentReport(context.Background(), RentReportFilter{StartDate: &start, RoomID: r1.ID})
		require.NoError(t, err)
		assert.Len(t, all.Payments, 3)
		assert.InDelta(t, 10000, all.TotalAmount, 0.001)
	})

	t.Run("payments report", func(t *testing.T) {
		start := models.Date(2024, time.January, 1)
		end := models.Date(2024, time.March, 31)
		rep, err := reports.PaymentsReport(context.Background(), &start, &end, "")
		require.NoError(t, err)
		assert.Len(t, rep.Payments, 4)
		assert.EqualValues(t, 2, rep.ByStatus["paid"])
		assert.EqualValues(t, 1, rep.ByStatus["partial"])
		assert.EqualValues(t, 1, rep.ByStatus["unpaid"])

		unpaid, err := reports.PaymentsReport(context.Background(), &start, &end, "unpaid")
		require.NoError(t, err)
		require.Len(t, unpaid.Payments, 1)
		assert.Equal(t, "Bilal", unpaid.Payments[0].GuestName)

		_, err = reports.PaymentsReport(context.Background(), &start, &end, "lost")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("guests report", func(t *testing.T) {
		rep, err := reports.GuestsReport(context.Background(), "inactive")
		require.NoError(t, err)
		require.Equal(t, 1, rep.TotalGuests)
		assert.Equal(t, "Bilal", rep.Guests[0].FullName)
		assert.Equal(t, "2024-03-10", rep.Guests[0].CheckOutDate)
		assert.Equal(t, "101", rep.Guests[0].RoomNumber)

		all, err := reports.GuestsReport(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 2, all.TotalGuests)
		assert.Equal(t, "N/A", all.Guests[0].CheckOutDate)
	})
}
