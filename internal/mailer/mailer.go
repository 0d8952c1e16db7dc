package mailer

import "context"

// Email is a fully rendered outbound message.
type Email struct {
	RecipientEmail string
	RecipientName  string
	Subject        string
	HTMLBody       string
	TextBody       string
	Attachments    []Attachment
}

// Attachment is a base64-encoded file payload.
type Attachment struct {
	Name    string
	Content string
}

// SendResult stores provider call metadata for audit and persistence.
type SendResult struct {
	StatusCode int
	MessageID  string
}

// Mailer is the outbound email delivery port.
type Mailer interface {
	Send(ctx context.Context, email Email) (*SendResult, error)
}
