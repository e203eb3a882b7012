// Package mail delivers outbound e-mail through the SendGrid v3 API.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/JonMunkholm/mealplan/internal/core"
)

const (
	sendEndpoint   = "/v3/mail/send"
	DefaultBaseURL = "https://api.sendgrid.com"
)

// ErrNoRecipient is returned for a message without a To address.
var ErrNoRecipient = errors.New("mail: message has no recipient")

// Sender sends core.EmailMessage values with SendGrid. It sends each
// message once and does not retry.
type Sender struct {
	apiKey  string
	baseURL string
}

// NewSender returns a Sender for apiKey. An empty baseURL means the public
// SendGrid API.
func NewSender(apiKey, baseURL string) *Sender {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Sender{apiKey: apiKey, baseURL: baseURL}
}

var _ core.EmailSender = (*Sender)(nil)

// Send delivers msg. Any non-2xx response is an error carrying the
// provider's status and body.
func (s *Sender) Send(ctx context.Context, msg core.EmailMessage) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	req := sendgrid.GetRequest(s.apiKey, sendEndpoint, s.baseURL)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(buildMail(msg))

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &ProviderError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}

// ProviderError is a rejected send.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("sendgrid: status %d: %s", e.StatusCode, e.Body)
}

func buildMail(msg core.EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(msg.From.Name, msg.From.Email))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	m.AddPersonalizations(p)

	m.AddContent(sgmail.NewContent("text/html", msg.HTML))

	for _, att := range msg.Attachments {
		a := sgmail.NewAttachment()
		a.SetContent(att.Content)
		a.SetType(att.Type)
		a.SetFilename(att.Filename)
		a.SetDisposition(att.Disposition)
		m.AddAttachment(a)
	}
	return m
}
