package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Sender delivers a single transactional email.
type Sender interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

// BrevoSender sends via the Brevo transactional API.
type BrevoSender struct {
	APIKey   string
	From     string
	FromName string
	Client   *http.Client
}

func NewBrevoSender(apiKey, from string) *BrevoSender {
	return &BrevoSender{
		APIKey:   apiKey,
		From:     from,
		FromName: "need1",
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender      brevoRecipient   `json:"sender"`
	To          []brevoRecipient `json:"to"`
	Subject     string           `json:"subject"`
	HTMLContent string           `json:"htmlContent"`
}

func (b *BrevoSender) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	payload := brevoPayload{
		Sender:      brevoRecipient{Email: b.From, Name: b.FromName},
		To:          []brevoRecipient{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: htmlBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send: status %d", resp.StatusCode)
	}
	log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	return nil
}

// Service composes and sends the app's transactional emails.
type Service struct {
	Sender Sender
}

// SendMagicLink emails a one-time sign-in link.
func (s *Service) SendMagicLink(ctx context.Context, to, fullname, link string) error {
	body := Layout(fullname, fmt.Sprintf(
		`<p>Tap the button below to sign in to need1. The link works once and expires in 15 minutes.</p>
<p><a class="btn" href="%s">Sign in</a></p>
<p>If you didn't ask for this, you can ignore this email.</p>`, link))
	return s.Sender.Send(ctx, to, fullname, "Your need1 sign-in link", body)
}

// SendOfferNotification tells a seeker someone offered to help.
func (s *Service) SendOfferNotification(ctx context.Context, to, fullname, requestTitle string) error {
	body := Layout(fullname, fmt.Sprintf(
		`<p>Someone just offered to help with <strong>%s</strong>.</p>
<p>Open need1 to review the offer and start chatting.</p>`, requestTitle))
	return s.Sender.Send(ctx, to, fullname, "New offer on your request", body)
}

// SendWelcome greets a freshly registered account.
func (s *Service) SendWelcome(ctx context.Context, to, fullname string) error {
	body := Layout(fullname,
		`<p>Welcome to need1! Post what you need, or browse open requests and start earning karma.</p>`)
	return s.Sender.Send(ctx, to, fullname, "Welcome to need1", body)
}

// SendOfferAccepted tells a bidder their offer won and a chat is open.
func (s *Service) SendOfferAccepted(ctx context.Context, to, fullname, requestTitle string) error {
	body := Layout(fullname, fmt.Sprintf(
		`<p>Your offer on <strong>%s</strong> was accepted.</p>
<p>A chat thread is open for the next 7 days to sort out the details.</p>`, requestTitle))
	return s.Sender.Send(ctx, to, fullname, "Your offer was accepted", body)
}

// SendOfferDeclined tells a bidder their offer was not taken.
func (s *Service) SendOfferDeclined(ctx context.Context, to, fullname, requestTitle string) error {
	body := Layout(fullname, fmt.Sprintf(
		`<p>Your offer on <strong>%s</strong> was declined. The request is still open to other offers.</p>`, requestTitle))
	return s.Sender.Send(ctx, to, fullname, "Update on your offer", body)
}
