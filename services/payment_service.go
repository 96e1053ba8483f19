package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{DB: db}
}

type PaymentInput struct {
	GuestID     uint    `json:"guest_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"payment_date"`
	PaymentType string  `json:"payment_type" validate:"required"`
	Status      string  `json:"status" validate:"required"`
	DueDate     string  `json:"due_date" validate:"required"`
}

type PaymentUpdate struct {
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	PaymentDate *string  `json:"payment_date"`
	PaymentType *string  `json:"payment_type"`
	Status      *string  `json:"status"`
	DueDate     *string  `json:"due_date"`
}

type PaymentFilter struct {
	Status    string
	GuestID   uint
	DueBefore string
	DueAfter  string
}

func (s *PaymentService) List(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	q := s.DB.WithContext(ctx).Model(&models.Payment{})
	if f.Status != "" {
		st, err := parsePaymentStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", st)
	}
	if f.GuestID != 0 {
		q = q.Where("guest_id = ?", f.GuestID)
	}
	before, err := ParseDateParam(f.DueBefore)
	if err != nil {
		return nil, err
	}
	if before != nil {
		q = q.Where("due_date <= ?", *before)
	}
	after, err := ParseDateParam(f.DueAfter)
	if err != nil {
		return nil, err
	}
	if after != nil {
		q = q.Where("due_date >= ?", *after)
	}

	var list []models.Payment
	if err := q.Order("due_date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

func (s *PaymentService) Get(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := repositories.New(s.DB.WithContext(ctx)).FindPayment(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment %d: %w", id, err)
	}
	return p, nil
}

func (s *PaymentService) ByGuest(ctx context.Context, guestID uint) ([]models.Payment, error) {
	if _, err := findGuest(repositories.New(s.DB.WithContext(ctx)), guestID); err != nil {
		return nil, err
	}
	return s.List(ctx, PaymentFilter{GuestID: guestID})
}

// Create records a payment by hand. A guest holds at most one payment per
// due date.
func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	log.Printf("➡️ PaymentService.Create guest_id=%d due=%s", in.GuestID, in.DueDate)

	if err := validateInput(in); err != nil {
		return nil, err
	}
	typ, err := parsePaymentType(in.PaymentType)
	if err != nil {
		return nil, err
	}
	status, err := parsePaymentStatus(in.Status)
	if err != nil {
		return nil, err
	}
	due, err := ParseDateParam(in.DueDate)
	if err != nil {
		return nil, err
	}
	if due == nil {
		return nil, ErrMissingFields.WithMessage("due_date is required")
	}
	paid, err := ParseDateParam(in.PaymentDate)
	if err != nil {
		return nil, err
	}

	var p models.Payment
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		if _, err := findGuest(repo, in.GuestID); err != nil {
			return err
		}
		if err := ensureNoPaymentDue(repo, in.GuestID, *due, 0); err != nil {
			return err
		}
		p = models.Payment{
			GuestID:     in.GuestID,
			Amount:      in.Amount,
			PaymentDate: paid,
			PaymentType: typ,
			Status:      status,
			DueDate:     *due,
		}
		if err := tx.Create(&p).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrPaymentExists
			}
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("⬅️ PaymentService.Create error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (s *PaymentService) Update(ctx context.Context, id uint, in PaymentUpdate) (*models.Payment, error) {
	log.Printf("➡️ PaymentService.Update payment_id=%d", id)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var p *models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		p, err = repo.FindPayment(id)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return fmt.Errorf("find payment %d: %w", id, err)
		}

		if in.Amount != nil {
			p.Amount = *in.Amount
		}
		if in.PaymentType != nil && *in.PaymentType != "" {
			if p.PaymentType, err = parsePaymentType(*in.PaymentType); err != nil {
				return err
			}
		}
		if in.Status != nil && *in.Status != "" {
			if p.Status, err = parsePaymentStatus(*in.Status); err != nil {
				return err
			}
		}
		paid, err := parseOptionalDate(in.PaymentDate)
		if err != nil {
			return err
		}
		if paid != nil {
			p.PaymentDate = paid
		}
		due, err := parseOptionalDate(in.DueDate)
		if err != nil {
			return err
		}
		if due != nil && !models.SameDate(*due, p.DueDate) {
			if err := ensureNoPaymentDue(repo, p.GuestID, *due, p.ID); err != nil {
				return err
			}
			p.DueDate = *due
		}

		if err := tx.Save(p).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrPaymentExists
			}
			return fmt.Errorf("save payment: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("⬅️ PaymentService.Update error: %v", err)
		return nil, err
	}
	return p, nil
}

// Delete removes the payment and detaches the notifications that referenced it.
func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	log.Printf("➡️ PaymentService.Delete payment_id=%d", id)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Notification{}).Where("payment_id = ?", id).Update("payment_id", nil).Error; err != nil {
			return fmt.Errorf("detach notifications: %w", err)
		}
		res := tx.Delete(&models.Payment{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotFound
		}
		return nil
	})
}

func ensureNoPaymentDue(repo *repositories.Repository, guestID uint, due datatypes.Date, exceptID uint) error {
	existing, err := repo.FindPaymentByGuestAndDue(guestID, due)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find payment by due date: %w", err)
	}
	if existing.ID != exceptID {
		return ErrPaymentExists
	}
	return nil
}

func parsePaymentType(s string) (models.PaymentType, error) {
	t, err := models.ParsePaymentType(s)
	if err != nil {
		return "", ErrInvalidPaymentType
	}
	return t, nil
}

func parsePaymentStatus(s string) (models.PaymentStatus, error) {
	st, err := models.ParsePaymentStatus(s)
	if err != nil {
		return "", ErrInvalidStatus.WithMessage("Status must be paid, unpaid, or partial")
	}
	return st, nil
}
