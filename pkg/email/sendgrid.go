package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/schoolkit/edupay/pkg/logger"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridSender delivers mail through the SendGrid v3 API
type SendgridSender struct {
	key         string
	fromName    string
	fromAddress string
}

var _ Sender = (*SendgridSender)(nil)

// NewSendgridSender creates a SendGrid-backed sender
func NewSendgridSender(apiKey, fromName, fromAddress string) *SendgridSender {
	return &SendgridSender{
		key:         apiKey,
		fromName:    fromName,
		fromAddress: fromAddress,
	}
}

// Send delivers a single message
func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(s.fromName, s.fromAddress))

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d, body %s", res.StatusCode, res.Body)
	}

	return nil
}

// LogSender is a no-op sender used when no SendGrid key is configured. It
// logs the delivery instead of performing it.
type LogSender struct{}

var _ Sender = (*LogSender)(nil)

// Send logs the message instead of delivering it
func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.Info(ctx).
		Str("to", msg.ToAddress).
		Str("subject", msg.Subject).
		Msg("Email delivery skipped (no provider configured)")
	return nil
}
