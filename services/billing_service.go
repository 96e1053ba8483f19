package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillingService generates the monthly rent ledger and picks the payments
// that reminders and overdue alerts go out for. "Today" is always supplied
// by the caller.
type BillingService struct {
	clock
	DB     *gorm.DB
	Sender NotificationSender
}

func NewBillingService(db *gorm.DB, sender NotificationSender) *BillingService {
	if sender == nil {
		sender = LogSender{}
	}
	return &BillingService{DB: db, Sender: sender}
}

// Today is the service clock's calendar day.
func (s *BillingService) Today() datatypes.Date {
	return models.DateOf(s.now())
}

type PaymentClass string

const (
	PaymentClassSettled PaymentClass = "settled"
	PaymentClassDue     PaymentClass = "due"
	PaymentClassOverdue PaymentClass = "overdue"
)

// ClassifyPayment says whether p is still due, overdue or settled as of asOf.
func ClassifyPayment(p models.Payment, asOf datatypes.Date) PaymentClass {
	if !p.Status.Outstanding() {
		return PaymentClassSettled
	}
	if models.DateBefore(p.DueDate, asOf) {
		return PaymentClassOverdue
	}
	return PaymentClassDue
}

type GenerationResult struct {
	Count    int              `json:"count"`
	Payments []models.Payment `json:"payments"`
}

// GenerateMonthlyPayments creates one unpaid full-rent payment due on the
// first of the month for every active guest that has none yet. Re-running it
// for the same month creates nothing.
func (s *BillingService) GenerateMonthlyPayments(ctx context.Context, month, year int) (*GenerationResult, error) {
	log.Printf("➡️ BillingService.GenerateMonthlyPayments month=%d year=%d", month, year)

	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	due := models.Date(year, time.Month(month), 1)
	provisional := models.LastDayOfMonth(year, time.Month(month))

	result := &GenerationResult{Payments: []models.Payment{}}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		guests, err := repo.FindActiveGuests()
		if err != nil {
			return fmt.Errorf("find active guests: %w", err)
		}
		billed, err := repo.FindGuestIDsWithPaymentDue(due)
		if err != nil {
			return fmt.Errorf("find billed guests: %w", err)
		}

		for _, g := range guests {
			if billed[g.ID] {
				continue
			}
			p := models.Payment{
				GuestID:     g.ID,
				Amount:      g.RentAmount,
				PaymentDate: models.DatePtr(provisional),
				PaymentType: models.PaymentFull,
				Status:      models.PaymentUnpaid,
				DueDate:     due,
			}
			// a concurrent run may have billed the guest since the read above
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p)
			if res.Error != nil {
				return fmt.Errorf("create payment for guest %d: %w", g.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			result.Payments = append(result.Payments, p)
		}
		return nil
	})
	if err != nil {
		log.Printf("⬅️ BillingService.GenerateMonthlyPayments error: %v", err)
		return nil, err
	}

	result.Count = len(result.Payments)
	log.Printf("⬅️ BillingService.GenerateMonthlyPayments ok: created=%d", result.Count)
	return result, nil
}

// DuePayments lists outstanding payments due on or after asOf.
func (s *BillingService) DuePayments(ctx context.Context, asOf datatypes.Date) ([]models.Payment, error) {
	return repositories.New(s.DB.WithContext(ctx)).FindOutstandingPayments("due_date >= ?", asOf)
}

// OverduePayments lists outstanding payments due before asOf.
func (s *BillingService) OverduePayments(ctx context.Context, asOf datatypes.Date) ([]models.Payment, error) {
	return repositories.New(s.DB.WithContext(ctx)).FindOutstandingPayments("due_date < ?", asOf)
}

// DueBetween lists outstanding payments due in [from, to].
func (s *BillingService) DueBetween(ctx context.Context, from, to datatypes.Date) ([]models.Payment, error) {
	return repositories.New(s.DB.WithContext(ctx)).FindOutstandingPayments("due_date >= ? AND due_date <= ?", from, to)
}

// NotificationTarget is one payment a message goes out for.
type NotificationTarget struct {
	Payment     models.Payment `json:"payment"`
	Guest       models.Guest   `json:"guest"`
	DaysOverdue int            `json:"days_overdue,omitempty"`
	Message     string         `json:"message"`
}

func ReminderMessage(g models.Guest, p models.Payment) string {
	return fmt.Sprintf("Dear %s, your rent payment of %.2f is due on %s. Please make the payment on time.",
		g.FullName, p.Amount, models.FormatDate(p.DueDate))
}

func OverdueMessage(g models.Guest, p models.Payment, daysOverdue int) string {
	return fmt.Sprintf("URGENT: Dear %s, your rent payment of %.2f is overdue by %d days. Please make the payment immediately to avoid any inconvenience.",
		g.FullName, p.Amount, daysOverdue)
}

// ReminderTargets selects outstanding payments due exactly daysBefore days
// after asOf whose guest is still active.
func (s *BillingService) ReminderTargets(ctx context.Context, asOf datatypes.Date, daysBefore int) ([]NotificationTarget, error) {
	if daysBefore < 0 {
		return nil, ErrInvalidDaysBefore
	}
	target := models.DateOf(timeOf(asOf).AddDate(0, 0, daysBefore))
	return s.targets(repositories.New(s.DB.WithContext(ctx)), func(p models.Payment, g models.Guest) NotificationTarget {
		return NotificationTarget{Payment: p, Guest: g, Message: ReminderMessage(g, p)}
	}, "due_date = ?", target)
}

// OverdueTargets selects outstanding payments due before asOf whose guest is
// still active, with the number of days each is late.
func (s *BillingService) OverdueTargets(ctx context.Context, asOf datatypes.Date) ([]NotificationTarget, error) {
	return s.targets(repositories.New(s.DB.WithContext(ctx)), func(p models.Payment, g models.Guest) NotificationTarget {
		days := models.DaysBetween(p.DueDate, asOf)
		return NotificationTarget{Payment: p, Guest: g, DaysOverdue: days, Message: OverdueMessage(g, p, days)}
	}, "due_date < ?", asOf)
}

func (s *BillingService) targets(repo *repositories.Repository, build func(models.Payment, models.Guest) NotificationTarget, where string, args ...interface{}) ([]NotificationTarget, error) {
	payments, err := repo.FindOutstandingPayments(where, args...)
	if err != nil {
		return nil, fmt.Errorf("find outstanding payments: %w", err)
	}
	ids := make([]uint, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.GuestID)
	}
	guests, err := repo.FindGuestsByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("find guests: %w", err)
	}

	out := []NotificationTarget{}
	for _, p := range payments {
		g, ok := guests[p.GuestID]
		if !ok || !g.IsActive() {
			continue
		}
		out = append(out, build(p, g))
	}
	return out, nil
}

type DispatchResult struct {
	Count         int                   `json:"count"`
	Notifications []models.Notification `json:"sent"`
}

// SendReminders records an sms and an email reminder for every reminder
// target, then hands them to the sender.
func (s *BillingService) SendReminders(ctx context.Context, asOf datatypes.Date, daysBefore int) (*DispatchResult, error) {
	log.Printf("➡️ BillingService.SendReminders as_of=%s days_before=%d", models.FormatDate(asOf), daysBefore)
	targets, err := s.ReminderTargets(ctx, asOf, daysBefore)
	if err != nil {
		return nil, err
	}
	return s.notify(ctx, targets)
}

// SendOverdueAlerts records an sms and an email alert for every overdue
// target, then hands them to the sender.
func (s *BillingService) SendOverdueAlerts(ctx context.Context, asOf datatypes.Date) (*DispatchResult, error) {
	log.Printf("➡️ BillingService.SendOverdueAlerts as_of=%s", models.FormatDate(asOf))
	targets, err := s.OverdueTargets(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return s.notify(ctx, targets)
}

func (s *BillingService) notify(ctx context.Context, targets []NotificationTarget) (*DispatchResult, error) {
	var notes []models.Notification
	guests := make(map[uint]models.Guest, len(targets))

	for _, t := range targets {
		paymentID := t.Payment.ID
		for _, typ := range []models.NotificationType{models.NotificationSMS, models.NotificationEmail} {
			notes = append(notes, models.Notification{
				GuestID:   t.Guest.ID,
				PaymentID: &paymentID,
				Type:      typ,
				Message:   t.Message,
				Status:    models.NotificationPending,
			})
		}
		guests[t.Guest.ID] = t.Guest
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(notes) == 0 {
			return nil
		}
		if err := tx.Create(&notes).Error; err != nil {
			return fmt.Errorf("create %d notifications: %w", len(notes), err)
		}
		return nil
	})
	if err != nil {
		log.Printf("⬅️ BillingService.notify error: %v", err)
		return nil, err
	}

	for i := range notes {
		if err := dispatch(ctx, s.DB, s.Sender, &notes[i], guests[notes[i].GuestID], s.now()); err != nil {
			return nil, err
		}
	}

	log.Printf("⬅️ BillingService.notify ok: notifications=%d", len(notes))
	if notes == nil {
		notes = []models.Notification{}
	}
	return &DispatchResult{Count: len(notes), Notifications: notes}, nil
}

// dispatch sends a stored pending notification and records the outcome. A
// delivery failure marks the row failed and is not returned as an error.
func dispatch(ctx context.Context, db *gorm.DB, sender NotificationSender, n *models.Notification, guest models.Guest, now time.Time) error {
	updates := map[string]interface{}{}
	if err := sender.Send(ctx, *n, guest); err != nil {
		log.Printf("❌ notification %d (%s) to guest %d failed: %v", n.ID, n.Type, guest.ID, err)
		n.Status = models.NotificationFailed
		updates["status"] = n.Status
	} else {
		sentAt := now
		n.Status = models.NotificationSent
		n.SentAt = &sentAt
		updates["status"] = n.Status
		updates["sent_at"] = sentAt
	}
	if err := db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", n.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("record notification %d outcome: %w", n.ID, err)
	}
	return nil
}
