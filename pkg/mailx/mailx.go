// Package mailx is the narrow seam to the outbound email collaborator.
// Delivery infrastructure is out of scope here; the service only needs a
// fire-and-forget Send.
package mailx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`^[\w-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// ValidateMessage checks the parts every implementation requires.
func ValidateMessage(to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("mailx: recipient address must not be empty")
	}
	if !addressPattern.MatchString(to) {
		return fmt.Errorf("mailx: invalid recipient address %q", to)
	}
	if strings.TrimSpace(subject) == "" {
		return errors.New("mailx: subject must not be empty")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("mailx: body must not be empty")
	}
	return nil
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port of the relay
	From string
	Auth smtp.Auth // optional
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if err := ValidateMessage(to, subject, body); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.Addr, m.Auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mailx: send to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Default
// when no relay is configured, and handy in dev.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(to, subject, body string) error {
	if err := ValidateMessage(to, subject, body); err != nil {
		return err
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail suppressed (no relay configured)", "to", to, "subject", subject)
	return nil
}
