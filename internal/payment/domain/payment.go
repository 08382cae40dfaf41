package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Transaction statuses. A transaction only ever moves pending → completed
// (or is recorded directly as completed for synchronous flows); it never
// regresses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Payment methods
const (
	MethodBkash      = "bkash"
	MethodSSLCommerz = "sslcommerz"
)

// Fee and invoice statuses
const (
	FeeStatusUnpaid = "unpaid"
	FeeStatusPaid   = "paid"
)

var (
	// ErrNotFound means the requested ledger row does not exist
	ErrNotFound = errors.New("transaction not found")
)

// Transaction is one row of the payment ledger. GatewayResponse is the raw
// provider body captured at confirmation time and is never rewritten.
type Transaction struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	StudentID            uint           `json:"student_id" gorm:"not null;index"`
	InvoiceID            *uint          `json:"invoice_id,omitempty" gorm:"index"`
	FeeID                *uint          `json:"fee_id,omitempty" gorm:"index"`
	Amount               float64        `json:"amount" gorm:"not null"`
	Method               string         `json:"method" gorm:"not null"`
	MethodLabel          string         `json:"method_label"`
	TransactionNumber    string         `json:"transaction_number" gorm:"not null;uniqueIndex"`
	GatewayTransactionID string         `json:"gateway_transaction_id"`
	GatewayResponse      string         `json:"gateway_response" gorm:"type:text"`
	Status               string         `json:"status" gorm:"not null;default:'pending';index"`
	PaymentDate          *time.Time     `json:"payment_date,omitempty"`
	VerifiedAt           *time.Time     `json:"verified_at,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Transaction) TableName() string {
	return "payment_transactions"
}

// Fee is a billable item owned by the fees module. The ledger only ever
// mutates its payment state, never creates or deletes rows.
type Fee struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	StudentID     uint       `json:"student_id" gorm:"not null;index"`
	Title         string     `json:"title"`
	Amount        float64    `json:"amount" gorm:"not null"`
	Status        string     `json:"status" gorm:"not null;default:'unpaid';index"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Fee) TableName() string {
	return "fees"
}

// Invoice is an aggregated bill; mutated the same way fees are
type Invoice struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	StudentID     uint       `json:"student_id" gorm:"not null;index"`
	Amount        float64    `json:"amount" gorm:"not null"`
	Status        string     `json:"status" gorm:"not null;default:'unpaid';index"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Invoice) TableName() string {
	return "invoices"
}

// Setting is one key/value row of the admin-editable settings store
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"column:setting_key;not null;uniqueIndex"`
	Value     string    `json:"value" gorm:"type:text"`
	Category  string    `json:"category" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Setting) TableName() string {
	return "system_settings"
}

// TransactionRepository defines the contract for ledger data access
type TransactionRepository interface {
	Create(tx *Transaction) error
	FindByID(id uint) (*Transaction, error)
	FindByTransactionNumber(number string) (*Transaction, error)
	FindByStudentID(studentID uint, limit, offset int) ([]Transaction, error)
	FindAll(limit, offset int) ([]Transaction, error)
	// Complete flips a row to completed. Completing an already completed row
	// is a no-op; a completed row never moves back.
	Complete(tx *Transaction) error
}

// FeeRepository mutates fee payment state
type FeeRepository interface {
	FindByID(id uint) (*Fee, error)
	MarkPaid(id uint, method, transactionID string) error
}

// InvoiceRepository mutates invoice payment state
type InvoiceRepository interface {
	FindByID(id uint) (*Invoice, error)
	MarkPaid(id uint, method, transactionID string) error
}
