package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the mail relay settings. An incomplete config switches
// SendNotificationEmail to mock mode.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FromName string `yaml:"from_name"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

// SendNotificationEmail sends a plain-text + HTML notice to one guest.
func SendNotificationEmail(cfg SMTPConfig, recipientEmail, name, subject, message string) error {
	if !cfg.Enabled() {
		log.Printf("[MOCK EMAIL] to:%s subject:%q msg:%q", recipientEmail, subject, message)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}

	name = safe(name)
	subject = safe(subject)
	recipientEmail = safe(recipientEmail)

	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Guesthouse Management"
	}
	from := fmt.Sprintf("%s <%s>", fromName, cfg.Username)
	to := []string{recipientEmail}
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	boundary := "----=_PG_NOTICE_BOUNDARY"

	plainBody := fmt.Sprintf("Hi %s,\n\n%s\n", name, message)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <p>Hi %s,</p>
    <p>%s</p>
  </div>
</div>
</body>
</html>`,
		subject, name, message,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipientEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, cfg.Username, to, []byte(sb.String())); err != nil {
		log.Printf("Failed to send notice email to %s: %v", recipientEmail, err)
		return err
	}

	log.Printf("Notice email sent to %s", recipientEmail)
	return nil
}
