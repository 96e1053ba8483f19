package services

import (
	"context"
	"fmt"
	"time"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportService backs the dashboard and the report endpoints. All of it is
// read-only.
type ReportService struct {
	clock
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

func (s *ReportService) today() datatypes.Date {
	return models.DateOf(s.now())
}

type DashboardSummary struct {
	ActiveGuests   int64   `json:"active_guests"`
	VacantRooms    int64   `json:"vacant_rooms"`
	TotalCollected float64 `json:"total_collected"`
	PendingDues    float64 `json:"pending_dues"`
}

func (s *ReportService) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	db := s.DB.WithContext(ctx)
	var out DashboardSummary

	if err := db.Model(&models.Guest{}).Where("status = ?", models.GuestActive).Count(&out.ActiveGuests).Error; err != nil {
		return nil, fmt.Errorf("count active guests: %w", err)
	}
	if err := db.Model(&models.Room{}).Where("status = ?", models.RoomAvailable).Count(&out.VacantRooms).Error; err != nil {
		return nil, fmt.Errorf("count vacant rooms: %w", err)
	}
	var err error
	if out.TotalCollected, err = sumAmount(db.Where("status = ?", models.PaymentPaid)); err != nil {
		return nil, err
	}
	if out.PendingDues, err = sumAmount(db.Where("status IN ?", models.OutstandingPaymentStatuses)); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewGuests lists guests who checked in during the last 30 days.
func (s *ReportService) NewGuests(ctx context.Context) ([]models.Guest, error) {
	since := models.DateOf(timeOf(s.today()).AddDate(0, 0, -30))
	var guests []models.Guest
	err := s.DB.WithContext(ctx).Where("check_in_date >= ?", since).Order("check_in_date DESC, id DESC").Find(&guests).Error
	if err != nil {
		return nil, fmt.Errorf("find new guests: %w", err)
	}
	return guests, nil
}

func (s *ReportService) VacantRooms(ctx context.Context) ([]models.Room, error) {
	return repositories.New(s.DB.WithContext(ctx)).FindRooms(models.RoomAvailable)
}

// DueThisWeek lists outstanding payments due from today through today+7.
func (s *ReportService) DueThisWeek(ctx context.Context) ([]models.Payment, error) {
	today := s.today()
	end := models.DateOf(timeOf(today).AddDate(0, 0, 7))
	return repositories.New(s.DB.WithContext(ctx)).FindOutstandingPayments("due_date >= ? AND due_date <= ?", today, end)
}

type MonthCollection struct {
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Amount    float64 `json:"amount"`
}

type MonthlyCollection struct {
	Year   int               `json:"year"`
	Months []MonthCollection `json:"months"`
}

// MonthlyCollection totals paid payments per month of year by payment date.
// year 0 means the current year.
func (s *ReportService) MonthlyCollection(ctx context.Context, year int) (*MonthlyCollection, error) {
	if year == 0 {
		year = s.now().Year()
	}
	var payments []models.Payment
	err := s.DB.WithContext(ctx).
		Where("status = ? AND payment_date >= ? AND payment_date <= ?",
			models.PaymentPaid, models.Date(year, time.January, 1), models.Date(year, time.December, 31)).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("find paid payments of %d: %w", year, err)
	}

	out := &MonthlyCollection{Year: year, Months: make([]MonthCollection, 12)}
	for i := range out.Months {
		m := time.Month(i + 1)
		out.Months[i] = MonthCollection{Month: int(m), MonthName: m.String()}
	}
	for _, p := range payments {
		if p.PaymentDate == nil {
			continue
		}
		out.Months[timeOf(*p.PaymentDate).Month()-1].Amount += p.Amount
	}
	return out, nil
}

type OccupancyRate struct {
	Rate          float64 `json:"rate"`
	TotalRooms    int64   `json:"total_rooms"`
	OccupiedRooms int64   `json:"occupied_rooms"`
}

func (s *ReportService) OccupancyRate(ctx context.Context) (*OccupancyRate, error) {
	db := s.DB.WithContext(ctx)
	var out OccupancyRate
	if err := db.Model(&models.Room{}).Count(&out.TotalRooms).Error; err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}
	if err := db.Model(&models.Room{}).Where("status = ?", models.RoomOccupied).Count(&out.OccupiedRooms).Error; err != nil {
		return nil, fmt.Errorf("count occupied rooms: %w", err)
	}
	out.Rate = rate(out.OccupiedRooms, out.TotalRooms)
	return &out, nil
}

// ----------------------------------------------------
// Reports
// ----------------------------------------------------

type RoomOccupancy struct {
	RoomID     uint              `json:"room_id"`
	RoomNumber string            `json:"room_number"`
	Capacity   int               `json:"capacity"`
	Status     models.RoomStatus `json:"status"`
	Occupancy  int               `json:"occupancy"`
	Guests     []string          `json:"guests"`
}

type OccupancyReport struct {
	Date          string          `json:"date"`
	TotalRooms    int             `json:"total_rooms"`
	OccupiedRooms int             `json:"occupied_rooms"`
	OccupancyRate float64         `json:"occupancy_rate"`
	Rooms         []RoomOccupancy `json:"rooms"`
}

// OccupancyReport lists every room with its active guests. date only labels
// the report; occupancy is always the current one.
func (s *ReportService) OccupancyReport(ctx context.Context, date *datatypes.Date) (*OccupancyReport, error) {
	day := s.today()
	if date != nil {
		day = *date
	}
	repo := repositories.New(s.DB.WithContext(ctx))
	rooms, err := repo.FindRooms("")
	if err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	active, err := repo.FindActiveGuests()
	if err != nil {
		return nil, fmt.Errorf("find active guests: %w", err)
	}
	byRoom := make(map[uint][]string)
	for _, g := range active {
		byRoom[g.RoomID] = append(byRoom[g.RoomID], g.FullName)
	}

	out := &OccupancyReport{Date: models.FormatDate(day), TotalRooms: len(rooms), Rooms: []RoomOccupancy{}}
	for _, r := range rooms {
		names := byRoom[r.ID]
		if names == nil {
			names = []string{}
		}
		out.Rooms = append(out.Rooms, RoomOccupancy{
			RoomID:     r.ID,
			RoomNumber: r.RoomNumber,
			Capacity:   r.Capacity,
			Status:     r.Status,
			Occupancy:  len(names),
			Guests:     names,
		})
		if r.Status == models.RoomOccupied {
			out.OccupiedRooms++
		}
	}
	out.OccupancyRate = rate(int64(out.OccupiedRooms), int64(out.TotalRooms))
	return out, nil
}

type RentReportFilter struct {
	StartDate *datatypes.Date
	EndDate   *datatypes.Date
	GuestID   uint
	RoomID    uint
}

type RentLine struct {
	PaymentID   uint                 `json:"payment_id"`
	GuestName   string               `json:"guest_name"`
	RoomNumber  string               `json:"room_number"`
	Amount      float64              `json:"amount"`
	PaymentDate string               `json:"payment_date"`
	Status      models.PaymentStatus `json:"status"`
	DueDate     string               `json:"due_date"`
}

type RentReport struct {
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	TotalAmount float64    `json:"total_amount"`
	Payments    []RentLine `json:"payments"`
}

// RentReport lists payments whose payment date falls in the range (default:
// first of this month to today). TotalAmount counts paid payments only.
func (s *ReportService) RentReport(ctx context.Context, f RentReportFilter) (*RentReport, error) {
	start, end := s.monthToDate(f.StartDate, f.EndDate)

	q := s.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("payments.payment_date >= ? AND payments.payment_date <= ?", start, end)
	if f.GuestID != 0 {
		q = q.Where("payments.guest_id = ?", f.GuestID)
	}
	if f.RoomID != 0 {
		q = q.Joins("JOIN guests ON guests.id = payments.guest_id").Where("guests.room_id = ?", f.RoomID)
	}
	var payments []models.Payment
	if err := q.Order("payments.payment_date ASC, payments.id ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}

	guests, rooms, err := s.owners(ctx, payments)
	if err != nil {
		return nil, err
	}
	out := &RentReport{StartDate: models.FormatDate(start), EndDate: models.FormatDate(end), Payments: []RentLine{}}
	for _, p := range payments {
		out.Payments = append(out.Payments, rentLine(p, guests, rooms))
		if p.Status == models.PaymentPaid {
			out.TotalAmount += p.Amount
		}
	}
	return out, nil
}

type PaymentsReport struct {
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	TotalAmount float64          `json:"total_amount"`
	ByStatus    map[string]int64 `json:"by_status"`
	Payments    []RentLine       `json:"payments"`
}

// PaymentsReport lists payments by due date in the range, optionally for one
// status, with counts per status.
func (s *ReportService) PaymentsReport(ctx context.Context, startDate, endDate *datatypes.Date, status string) (*PaymentsReport, error) {
	start, end := s.monthToDate(startDate, endDate)

	q := s.DB.WithContext(ctx).Where("due_date >= ? AND due_date <= ?", start, end)
	if status != "" {
		st, err := parsePaymentStatus(status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", st)
	}
	var payments []models.Payment
	if err := q.Order("due_date ASC, id ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}

	guests, rooms, err := s.owners(ctx, payments)
	if err != nil {
		return nil, err
	}
	out := &PaymentsReport{
		StartDate: models.FormatDate(start),
		EndDate:   models.FormatDate(end),
		ByStatus:  map[string]int64{},
		Payments:  []RentLine{},
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, rentLine(p, guests, rooms))
		out.ByStatus[string(p.Status)]++
		out.TotalAmount += p.Amount
	}
	return out, nil
}

type GuestLine struct {
	GuestID       uint               `json:"guest_id"`
	FullName      string             `json:"full_name"`
	ContactNumber string             `json:"contact_number"`
	RoomNumber    string             `json:"room_number"`
	CheckInDate   string             `json:"check_in_date"`
	CheckOutDate  string             `json:"check_out_date"`
	RentAmount    float64            `json:"rent_amount"`
	Status        models.GuestStatus `json:"status"`
}

type GuestsReport struct {
	TotalGuests int         `json:"total_guests"`
	Guests      []GuestLine `json:"guests"`
}

func (s *ReportService) GuestsReport(ctx context.Context, status string) (*GuestsReport, error) {
	guests, err := NewGuestService(s.DB).List(ctx, GuestFilter{Status: status})
	if err != nil {
		return nil, err
	}
	rooms, err := s.roomNumbers(ctx)
	if err != nil {
		return nil, err
	}

	out := &GuestsReport{Guests: []GuestLine{}}
	for _, g := range guests {
		line := GuestLine{
			GuestID:       g.ID,
			FullName:      g.FullName,
			ContactNumber: g.ContactNumber,
			RoomNumber:    orUnknown(rooms[g.RoomID]),
			CheckInDate:   models.FormatDate(g.CheckInDate),
			CheckOutDate:  "N/A",
			RentAmount:    g.RentAmount,
			Status:        g.Status,
		}
		if g.CheckOutDate != nil {
			line.CheckOutDate = models.FormatDate(*g.CheckOutDate)
		}
		out.Guests = append(out.Guests, line)
	}
	out.TotalGuests = len(out.Guests)
	return out, nil
}

// ----------------------------------------------------
// helpers
// ----------------------------------------------------

func (s *ReportService) monthToDate(start, end *datatypes.Date) (datatypes.Date, datatypes.Date) {
	today := s.today()
	from := models.Date(timeOf(today).Year(), timeOf(today).Month(), 1)
	to := today
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	return from, to
}

func (s *ReportService) owners(ctx context.Context, payments []models.Payment) (map[uint]models.Guest, map[uint]string, error) {
	ids := make([]uint, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.GuestID)
	}
	guests, err := repositories.New(s.DB.WithContext(ctx)).FindGuestsByIDs(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("find guests: %w", err)
	}
	rooms, err := s.roomNumbers(ctx)
	if err != nil {
		return nil, nil, err
	}
	return guests, rooms, nil
}

func (s *ReportService) roomNumbers(ctx context.Context) (map[uint]string, error) {
	rooms, err := repositories.New(s.DB.WithContext(ctx)).FindRooms("")
	if err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	out := make(map[uint]string, len(rooms))
	for _, r := range rooms {
		out[r.ID] = r.RoomNumber
	}
	return out, nil
}

func rentLine(p models.Payment, guests map[uint]models.Guest, rooms map[uint]string) RentLine {
	line := RentLine{
		PaymentID:  p.ID,
		GuestName:  "Unknown",
		RoomNumber: "Unknown",
		Amount:     p.Amount,
		Status:     p.Status,
		DueDate:    models.FormatDate(p.DueDate),
	}
	if p.PaymentDate != nil {
		line.PaymentDate = models.FormatDate(*p.PaymentDate)
	}
	if g, ok := guests[p.GuestID]; ok {
		line.GuestName = g.FullName
		line.RoomNumber = orUnknown(rooms[g.RoomID])
	}
	return line
}

func sumAmount(q *gorm.DB) (float64, error) {
	var total float64
	if err := q.Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}

func rate(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
