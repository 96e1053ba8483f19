package services

import (
	"context"
	"log"
	"strings"

	"guesthouse-backend/models"
	"guesthouse-backend/utils"
)

// NotificationSender delivers one notification to its guest.
type NotificationSender interface {
	Send(ctx context.Context, n models.Notification, guest models.Guest) error
}

// LogSender only logs what it would have sent. It never fails.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n models.Notification, guest models.Guest) error {
	log.Printf("[MOCK %s] to:%s guest_id=%d payment_id=%v msg=%q",
		strings.ToUpper(string(n.Type)), recipientOf(n, guest), guest.ID, derefUint(n.PaymentID), n.Message)
	return nil
}

// ChannelSender routes email notifications through SMTP and everything else
// (SMS) through SMS, which defaults to LogSender.
type ChannelSender struct {
	SMTP utils.SMTPConfig
	SMS  NotificationSender
}

func NewChannelSender(smtpCfg utils.SMTPConfig) *ChannelSender {
	return &ChannelSender{SMTP: smtpCfg, SMS: LogSender{}}
}

func (s *ChannelSender) Send(ctx context.Context, n models.Notification, guest models.Guest) error {
	switch n.Type {
	case models.NotificationEmail:
		if strings.TrimSpace(guest.Email) == "" {
			log.Printf("⚠️ guest %d has no email; logging instead", guest.ID)
			return LogSender{}.Send(ctx, n, guest)
		}
		return utils.SendNotificationEmail(s.SMTP, guest.Email, guest.FullName, "Rent payment notice", n.Message)
	case models.NotificationSMS:
		return s.SMS.Send(ctx, n, guest)
	}
	return ErrInvalidType
}

func recipientOf(n models.Notification, guest models.Guest) string {
	if n.Type == models.NotificationEmail && guest.Email != "" {
		return guest.Email
	}
	return guest.ContactNumber
}

func derefUint(p *uint) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
