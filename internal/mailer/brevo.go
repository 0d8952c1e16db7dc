package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"
	defaultSendTimeout   = 10 * time.Second
)

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoAttachment struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

type brevoRequest struct {
	Sender      brevoParty        `json:"sender"`
	To          []brevoParty      `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	TextContent string            `json:"textContent,omitempty"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

type brevoErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BrevoMailer sends transactional email through the Brevo SMTP API.
type BrevoMailer struct {
	client      *resty.Client
	endpoint    string
	apiKey      string
	senderName  string
	senderEmail string
}

func NewBrevoMailer(endpoint, apiKey, senderName, senderEmail string) (*BrevoMailer, error) {
	client := resty.New()
	client.SetTimeout(defaultSendTimeout)
	client.SetRetryCount(0)

	return NewBrevoMailerWithClient(endpoint, apiKey, senderName, senderEmail, client)
}

func NewBrevoMailerWithClient(endpoint, apiKey, senderName, senderEmail string, client *resty.Client) (*BrevoMailer, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		trimmedEndpoint = defaultBrevoEndpoint
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid brevo endpoint: %w", err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("brevo api key is required")
	}
	if strings.TrimSpace(senderEmail) == "" {
		return nil, fmt.Errorf("sender email is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultSendTimeout)
	}
	client.SetRetryCount(0)

	return &BrevoMailer{
		client:      client,
		endpoint:    trimmedEndpoint,
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
	}, nil
}

func (m *BrevoMailer) Send(ctx context.Context, email Email) (*SendResult, error) {
	if m == nil || m.client == nil {
		return nil, fmt.Errorf("mailer is not initialized")
	}
	if strings.TrimSpace(email.RecipientEmail) == "" {
		return nil, fmt.Errorf("recipient email is required")
	}
	if strings.TrimSpace(email.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}

	recipientName := strings.TrimSpace(email.RecipientName)
	if recipientName == "" {
		// Brevo rejects empty recipient names; fall back to the mailbox part.
		if at := strings.Index(email.RecipientEmail, "@"); at > 0 {
			recipientName = email.RecipientEmail[:at]
		} else {
			recipientName = "Recipient"
		}
	}

	reqBody := brevoRequest{
		Sender: brevoParty{
			Name:  m.senderName,
			Email: m.senderEmail,
		},
		To: []brevoParty{
			{Email: email.RecipientEmail, Name: recipientName},
		},
		Subject:     email.Subject,
		HTMLContent: email.HTMLBody,
		TextContent: email.TextBody,
	}
	for _, att := range email.Attachments {
		reqBody.Attachment = append(reqBody.Attachment, brevoAttachment{
			Content: att.Content,
			Name:    att.Name,
		})
	}

	response, err := m.client.R().
		SetContext(ctx).
		SetHeader("accept", "application/json").
		SetHeader("content-type", "application/json").
		SetHeader("api-key", m.apiKey).
		SetBody(reqBody).
		Post(m.endpoint)
	if err != nil {
		return nil, &MailerError{
			Message:   "brevo request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &MailerError{
			Message:   "brevo returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	responseBody := response.Body()

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		var parsed brevoResponse
		_ = json.Unmarshal(responseBody, &parsed)
		return &SendResult{
			StatusCode: statusCode,
			MessageID:  parsed.MessageID,
		}, nil
	}

	return nil, &MailerError{
		StatusCode: statusCode,
		Message:    brevoErrorMessage(statusCode, responseBody),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func brevoErrorMessage(statusCode int, body []byte) string {
	base := fmt.Sprintf("brevo returned status %d", statusCode)

	var parsed brevoErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && strings.TrimSpace(parsed.Message) != "" {
		return fmt.Sprintf("%s: %s", base, parsed.Message)
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return fmt.Sprintf("%s: %s", base, trimmed)
	}
	return base
}
