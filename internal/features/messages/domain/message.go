package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"storefront/internal/core/apperror"
)

const (
	maxFieldLength = 200
	maxBodyLength  = 5000
)

// ErrMessageNotFound is returned when the message does not exist.
var ErrMessageNotFound = fmt.Errorf("message %w", apperror.ErrNotFound)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Message is a contact form submission.
type Message struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
	Read    bool      `json:"read"`
}

// NewMessage trims and validates a submission. sentAt is set by the caller.
func NewMessage(name, email, subject, body string, sentAt time.Time) (*Message, error) {
	m := &Message{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
		SentAt:  sentAt,
	}

	required := []struct {
		field, value string
		max          int
	}{
		{"name", m.Name, maxFieldLength},
		{"email", m.Email, maxFieldLength},
		{"subject", m.Subject, maxFieldLength},
		{"body", m.Body, maxBodyLength},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperror.Validation("%s is required", r.field)
		}
		if len(r.value) > r.max {
			return nil, apperror.Validation("%s is longer than %d characters", r.field, r.max)
		}
	}
	if !emailPattern.MatchString(m.Email) {
		return nil, apperror.Validation("email %q is not valid", m.Email)
	}
	return m, nil
}
