package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/kafka"
	"github.com/schoolkit/edupay/pkg/email"
)

type fakeSender struct {
	sent []email.Message
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type fakeCredRepo struct {
	sentVia map[uint]string
}

func (r *fakeCredRepo) Create(cred *domain.GeneratedCredential) error { return nil }
func (r *fakeCredRepo) FindByID(id uint) (*domain.GeneratedCredential, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeCredRepo) MarkSent(id uint, via string) error {
	if r.sentVia == nil {
		r.sentVia = make(map[uint]string)
	}
	r.sentVia[id] = via
	return nil
}

func provisionedPayload(t *testing.T, event kafka.AccountProvisionedEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

func TestCredentialDeliverySendsEmail(t *testing.T) {
	sender := &fakeSender{}
	creds := &fakeCredRepo{}
	w := NewCredentialDelivery(sender, creds)

	err := w.handle(context.Background(), provisionedPayload(t, kafka.AccountProvisionedEvent{
		UserID:       7,
		CredentialID: 3,
		Email:        "rahim@school.edu",
		FullName:     "Rahim Uddin",
		Username:     "Trahim123",
		Password:     "s3cret-passwd",
		SendEmail:    true,
	}))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "rahim@school.edu", msg.ToAddress)
	assert.Contains(t, msg.TextBody, "Trahim123")
	assert.Contains(t, msg.TextBody, "s3cret-passwd")
	assert.Equal(t, "email", creds.sentVia[3])
}

func TestCredentialDeliverySuppressedWhenNotRequested(t *testing.T) {
	sender := &fakeSender{}
	creds := &fakeCredRepo{}
	w := NewCredentialDelivery(sender, creds)

	err := w.handle(context.Background(), provisionedPayload(t, kafka.AccountProvisionedEvent{
		UserID:       7,
		CredentialID: 3,
		Email:        "rahim@school.edu",
		FullName:     "Rahim Uddin",
		Username:     "Trahim123",
		Password:     "s3cret-passwd",
		SendEmail:    false,
	}))
	require.NoError(t, err)

	assert.Empty(t, sender.sent, "a suppressed delivery must not email credentials")
	assert.Empty(t, creds.sentVia, "a suppressed delivery must not stamp the audit row")
}

func TestCredentialDeliveryBadPayload(t *testing.T) {
	w := NewCredentialDelivery(&fakeSender{}, &fakeCredRepo{})

	err := w.handle(context.Background(), []byte("not json"))

	assert.Error(t, err)
}
