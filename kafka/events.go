package kafka

import "time"

// PaymentCompletedEvent is emitted after the ledger records a provider-
// confirmed payment. Downstream consumers (receipts, reconciliation) key off
// the transaction number.
type PaymentCompletedEvent struct {
	EventID              string    `json:"event_id"`
	EventType            string    `json:"event_type"`
	TransactionID        uint      `json:"transaction_id"`
	TransactionNumber    string    `json:"transaction_number"`
	StudentID            uint      `json:"student_id"`
	FeeID                uint      `json:"fee_id,omitempty"`
	InvoiceID            uint      `json:"invoice_id,omitempty"`
	Amount               float64   `json:"amount"`
	Method               string    `json:"method"`
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	Timestamp            time.Time `json:"timestamp"`
}

// AccountProvisionedEvent is emitted after an account is fully provisioned.
// The credential delivery worker consumes it to email the generated
// credentials and stamp the audit row.
type AccountProvisionedEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	UserID       uint      `json:"user_id"`
	CredentialID uint      `json:"credential_id"`
	EntityType   string    `json:"entity_type"`
	EntityID     uint      `json:"entity_id"`
	SchoolID     uint      `json:"school_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	SendEmail    bool      `json:"send_email"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypePaymentCompleted   = "payment.completed"
	EventTypeAccountProvisioned = "account.provisioned"
)

// Kafka topics
const (
	TopicPaymentCompleted   = "payment-completed"
	TopicAccountProvisioned = "account-provisioned"
)
