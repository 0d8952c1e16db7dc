package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Status represents the lifecycle state of a queued message.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	StatusFailed     Status = "FAILED"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusFailed:
		return true
	}
	return false
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// MessageType selects which content builder applies to a message.
type MessageType string

const (
	TypeDocument MessageType = "DOCUMENT"
	TypeBirthday MessageType = "BIRTHDAY"
)

func (t MessageType) String() string { return string(t) }

func (t MessageType) IsValid() bool {
	switch t {
	case TypeDocument, TypeBirthday:
		return true
	}
	return false
}

func ParseMessageTypeFromString(s string) (MessageType, error) {
	mt := MessageType(strings.ToUpper(strings.TrimSpace(s)))
	if !mt.IsValid() {
		return "", fmt.Errorf("%w: invalid message type %q", ErrValidation, s)
	}
	return mt, nil
}

// Message is a queued unit of outbound notification intent.
//
// SentAt is set exactly when the message reaches SENT; ErrorMessage is set
// only while the message is FAILED. A SENT message is never mutated again.
type Message struct {
	ID             string
	StudentID      *string
	MatricNumber   string
	RecipientEmail string
	Type           MessageType
	Status         Status
	ErrorMessage   *string
	PayloadRef     *string
	CreatedAt      time.Time
	SentAt         *time.Time
}

func (m *Message) Validate() error {
	if strings.TrimSpace(m.RecipientEmail) == "" {
		return fmt.Errorf("%w: recipient email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(m.RecipientEmail); err != nil {
		return fmt.Errorf("%w: invalid recipient email %q", ErrValidation, m.RecipientEmail)
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("%w: invalid message type %q", ErrValidation, m.Type)
	}
	if m.Type == TypeDocument && (m.PayloadRef == nil || strings.TrimSpace(*m.PayloadRef) == "") {
		return fmt.Errorf("%w: document message requires a payload reference", ErrValidation)
	}
	return nil
}
