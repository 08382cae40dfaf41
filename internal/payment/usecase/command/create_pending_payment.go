package command

import (
	"context"
	"fmt"

	"github.com/schoolkit/edupay/internal/payment/domain"
	"github.com/schoolkit/edupay/pkg/logger"
)

// CreatePendingPaymentCommand pre-creates a pending ledger row at session
// initiation time (SSLCommerz init), so the later validate call has a
// matching transaction_number to complete.
type CreatePendingPaymentCommand struct {
	StudentID         uint
	FeeID             *uint
	InvoiceID         *uint
	Amount            float64
	Method            string
	MethodLabel       string
	TransactionNumber string
	GatewayResponse   string
}

// CreatePendingPaymentHandler handles the create pending payment command
type CreatePendingPaymentHandler struct {
	transactions domain.TransactionRepository
}

// NewCreatePendingPaymentHandler creates a new create pending payment handler
func NewCreatePendingPaymentHandler(transactions domain.TransactionRepository) *CreatePendingPaymentHandler {
	return &CreatePendingPaymentHandler{transactions: transactions}
}

// Handle executes the create pending payment command
func (h *CreatePendingPaymentHandler) Handle(ctx context.Context, cmd CreatePendingPaymentCommand) (*domain.Transaction, error) {
	if cmd.StudentID == 0 {
		return nil, fmt.Errorf("student_id is required")
	}
	if cmd.TransactionNumber == "" {
		return nil, fmt.Errorf("transaction_number is required")
	}
	if cmd.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	tx := &domain.Transaction{
		StudentID:         cmd.StudentID,
		FeeID:             cmd.FeeID,
		InvoiceID:         cmd.InvoiceID,
		Amount:            cmd.Amount,
		Method:            cmd.Method,
		MethodLabel:       cmd.MethodLabel,
		TransactionNumber: cmd.TransactionNumber,
		GatewayResponse:   cmd.GatewayResponse,
		Status:            domain.StatusPending,
	}

	if err := h.transactions.Create(tx); err != nil {
		return nil, fmt.Errorf("failed to create pending transaction: %w", err)
	}

	logger.Step(ctx, "ledger", "pending_created").
		Uint("transaction_id", tx.ID).
		Str("transaction_number", tx.TransactionNumber).
		Msg("Pending transaction created")

	return tx, nil
}
