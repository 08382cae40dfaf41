// Package worker holds the Kafka consumers of the account service.
package worker

import (
	"context"
	"fmt"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/kafka"
	"github.com/schoolkit/edupay/pkg/email"
	"github.com/schoolkit/edupay/pkg/logger"
)

// CredentialDelivery consumes account provisioning events and emails the
// generated credentials to the new account holder. The audit row is stamped
// after a successful send so re-deliveries stay visible.
type CredentialDelivery struct {
	sender email.Sender
	creds  domain.CredentialRepository
}

// NewCredentialDelivery creates a new credential delivery worker
func NewCredentialDelivery(sender email.Sender, creds domain.CredentialRepository) *CredentialDelivery {
	return &CredentialDelivery{sender: sender, creds: creds}
}

// Register attaches the worker to the consumer
func (d *CredentialDelivery) Register(consumer *kafka.Consumer) {
	consumer.RegisterHandler(kafka.EventTypeAccountProvisioned, d.handle)
}

func (d *CredentialDelivery) handle(ctx context.Context, payload []byte) error {
	event, err := kafka.DecodeAccountProvisioned(payload)
	if err != nil {
		return fmt.Errorf("failed to decode account provisioned event: %w", err)
	}

	if !event.SendEmail {
		logger.Info(ctx).
			Uint("user_id", event.UserID).
			Str("email", event.Email).
			Msg("Credential email suppressed by request")
		return nil
	}

	msg := email.Message{
		ToName:    event.FullName,
		ToAddress: event.Email,
		Subject:   "Your EduPay account",
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nYour account has been created.\n\nUsername: %s\nPassword: %s\n\nPlease change your password after your first login.\n",
			event.FullName, event.Username, event.Password,
		),
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send credentials to %s: %w", event.Email, err)
	}

	if event.CredentialID != 0 {
		if err := d.creds.MarkSent(event.CredentialID, "email"); err != nil {
			logger.Error(ctx).Err(err).
				Uint("credential_id", event.CredentialID).
				Msg("Failed to stamp credential delivery")
		}
	}

	logger.Info(ctx).
		Uint("user_id", event.UserID).
		Str("email", event.Email).
		Msg("Credentials delivered")
	return nil
}
