package command

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolkit/edupay/internal/payment/domain"
	"github.com/schoolkit/edupay/pkg/logger"
)

// RecordCompletedPaymentCommand records a transaction the provider has
// already confirmed. Used for synchronous flows (bKash execute) where the
// confirmation and the ledger write happen in the same request.
type RecordCompletedPaymentCommand struct {
	StudentID            uint
	FeeID                *uint
	InvoiceID            *uint
	Amount               float64
	Method               string
	MethodLabel          string
	TransactionNumber    string
	GatewayTransactionID string
	GatewayResponse      string
}

// RecordCompletedPaymentHandler handles the record completed payment command
type RecordCompletedPaymentHandler struct {
	transactions domain.TransactionRepository
	fees         domain.FeeRepository
	invoices     domain.InvoiceRepository
}

// NewRecordCompletedPaymentHandler creates a new record completed payment handler
func NewRecordCompletedPaymentHandler(transactions domain.TransactionRepository, fees domain.FeeRepository, invoices domain.InvoiceRepository) *RecordCompletedPaymentHandler {
	return &RecordCompletedPaymentHandler{
		transactions: transactions,
		fees:         fees,
		invoices:     invoices,
	}
}

// Handle executes the record completed payment command
func (h *RecordCompletedPaymentHandler) Handle(ctx context.Context, cmd RecordCompletedPaymentCommand) (*domain.Transaction, error) {
	if cmd.StudentID == 0 {
		return nil, fmt.Errorf("student_id is required")
	}
	if cmd.TransactionNumber == "" {
		return nil, fmt.Errorf("transaction_number is required")
	}
	if cmd.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	now := time.Now()
	tx := &domain.Transaction{
		StudentID:            cmd.StudentID,
		FeeID:                cmd.FeeID,
		InvoiceID:            cmd.InvoiceID,
		Amount:               cmd.Amount,
		Method:               cmd.Method,
		MethodLabel:          cmd.MethodLabel,
		TransactionNumber:    cmd.TransactionNumber,
		GatewayTransactionID: cmd.GatewayTransactionID,
		GatewayResponse:      cmd.GatewayResponse,
		Status:               domain.StatusCompleted,
		PaymentDate:          &now,
		VerifiedAt:           &now,
	}

	if err := h.transactions.Create(tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	logger.Step(ctx, "ledger", "transaction_recorded").
		Uint("transaction_id", tx.ID).
		Str("transaction_number", tx.TransactionNumber).
		Msg("Completed transaction recorded")

	// The fee/invoice stamp is a second, independent write. A failure here
	// leaves the ledger correct and the fee stale; it is logged for
	// reconciliation rather than failing the confirmed payment.
	stampPaid(ctx, h.fees, h.invoices, tx)

	return tx, nil
}

func stampPaid(ctx context.Context, fees domain.FeeRepository, invoices domain.InvoiceRepository, tx *domain.Transaction) {
	if tx.FeeID != nil {
		if err := fees.MarkPaid(*tx.FeeID, tx.Method, tx.TransactionNumber); err != nil {
			logger.StepError(ctx, "ledger", "fee_mark_paid", err).
				Uint("fee_id", *tx.FeeID).
				Str("transaction_number", tx.TransactionNumber).
				Msg("Failed to mark fee paid after completed transaction")
		} else {
			logger.Step(ctx, "ledger", "fee_mark_paid").
				Uint("fee_id", *tx.FeeID).
				Msg("Fee marked paid")
		}
	}

	if tx.InvoiceID != nil {
		if err := invoices.MarkPaid(*tx.InvoiceID, tx.Method, tx.TransactionNumber); err != nil {
			logger.StepError(ctx, "ledger", "invoice_mark_paid", err).
				Uint("invoice_id", *tx.InvoiceID).
				Str("transaction_number", tx.TransactionNumber).
				Msg("Failed to mark invoice paid after completed transaction")
		} else {
			logger.Step(ctx, "ledger", "invoice_mark_paid").
				Uint("invoice_id", *tx.InvoiceID).
				Msg("Invoice marked paid")
		}
	}
}
