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

type NotificationService struct {
	clock
	DB     *gorm.DB
	Sender NotificationSender
}

func NewNotificationService(db *gorm.DB, sender NotificationSender) *NotificationService {
	if sender == nil {
		sender = LogSender{}
	}
	return &NotificationService{DB: db, Sender: sender}
}

type NotificationInput struct {
	GuestID   uint   `json:"guest_id" validate:"required"`
	PaymentID *uint  `json:"payment_id"`
	Type      string `json:"type" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type NotificationUpdate struct {
	Message *string `json:"message"`
	Status  *string `json:"status"`
}

type NotificationFilter struct {
	Status  string
	Type    string
	GuestID uint
}

func (s *NotificationService) List(ctx context.Context, f NotificationFilter) ([]models.Notification, error) {
	q := s.DB.WithContext(ctx).Model(&models.Notification{})
	if f.Status != "" {
		st, err := models.ParseNotificationStatus(f.Status)
		if err != nil {
			return nil, ErrInvalidStatus.WithMessage("Status must be pending, sent or failed")
		}
		q = q.Where("status = ?", st)
	}
	if f.Type != "" {
		t, err := models.ParseNotificationType(f.Type)
		if err != nil {
			return nil, ErrInvalidType
		}
		q = q.Where("type = ?", t)
	}
	if f.GuestID != 0 {
		q = q.Where("guest_id = ?", f.GuestID)
	}

	var list []models.Notification
	if err := q.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *NotificationService) Get(ctx context.Context, id uint) (*models.Notification, error) {
	n, err := repositories.New(s.DB.WithContext(ctx)).FindNotification(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotificationNotFound
	}
	return n, err
}

func (s *NotificationService) ByGuest(ctx context.Context, guestID uint) ([]models.Notification, error) {
	if _, err := findGuest(repositories.New(s.DB.WithContext(ctx)), guestID); err != nil {
		return nil, err
	}
	return s.List(ctx, NotificationFilter{GuestID: guestID})
}

// Create stores a pending notification for the guest and dispatches it.
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	log.Printf("➡️ NotificationService.Create guest_id=%d type=%s", in.GuestID, in.Type)

	if err := validateInput(in); err != nil {
		return nil, err
	}
	typ, err := models.ParseNotificationType(strings.ToLower(strings.TrimSpace(in.Type)))
	if err != nil {
		return nil, ErrInvalidType
	}

	repo := repositories.New(s.DB.WithContext(ctx))
	guest, err := findGuest(repo, in.GuestID)
	if err != nil {
		return nil, err
	}
	if in.PaymentID != nil {
		p, err := repo.FindPayment(*in.PaymentID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find payment: %w", err)
		}
		if p.GuestID != guest.ID {
			return nil, ErrPaymentNotFound.WithMessage("Payment does not belong to this guest")
		}
	}

	n := models.Notification{
		GuestID:   guest.ID,
		PaymentID: in.PaymentID,
		Type:      typ,
		Message:   strings.TrimSpace(in.Message),
		Status:    models.NotificationPending,
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("⬅️ NotificationService.Create error: %v", err)
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if err := dispatch(ctx, s.DB, s.Sender, &n, *guest, s.now()); err != nil {
		return nil, err
	}
	log.Printf("⬅️ NotificationService.Create ok: id=%d status=%s", n.ID, n.Status)
	return &n, nil
}

func (s *NotificationService) Update(ctx context.Context, id uint, in NotificationUpdate) (*models.Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Message != nil {
		if msg := strings.TrimSpace(*in.Message); msg != "" {
			n.Message = msg
		}
	}
	if in.Status != nil {
		st, err := models.ParseNotificationStatus(*in.Status)
		if err != nil {
			return nil, ErrInvalidStatus.WithMessage("Status must be pending, sent or failed")
		}
		if st == models.NotificationSent && n.Status != models.NotificationSent {
			now := s.now()
			n.SentAt = &now
		}
		n.Status = st
	}
	if err := s.DB.WithContext(ctx).Save(n).Error; err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
