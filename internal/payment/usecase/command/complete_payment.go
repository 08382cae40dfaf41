package command

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolkit/edupay/internal/payment/domain"
	"github.com/schoolkit/edupay/pkg/logger"
)

// CompletePaymentCommand completes the pending transaction matched by
// transaction number after the provider validated the payment (SSLCommerz
// validate). The fee/invoice references threaded through at init time drive
// the paid stamp.
type CompletePaymentCommand struct {
	TransactionNumber    string
	GatewayTransactionID string
	GatewayResponse      string
}

// CompletePaymentHandler handles the complete payment command
type CompletePaymentHandler struct {
	transactions domain.TransactionRepository
	fees         domain.FeeRepository
	invoices     domain.InvoiceRepository
}

// NewCompletePaymentHandler creates a new complete payment handler
func NewCompletePaymentHandler(transactions domain.TransactionRepository, fees domain.FeeRepository, invoices domain.InvoiceRepository) *CompletePaymentHandler {
	return &CompletePaymentHandler{
		transactions: transactions,
		fees:         fees,
		invoices:     invoices,
	}
}

// Handle executes the complete payment command
func (h *CompletePaymentHandler) Handle(ctx context.Context, cmd CompletePaymentCommand) (*domain.Transaction, error) {
	if cmd.TransactionNumber == "" {
		return nil, fmt.Errorf("transaction_number is required")
	}

	tx, err := h.transactions.FindByTransactionNumber(cmd.TransactionNumber)
	if err != nil {
		return nil, fmt.Errorf("no transaction matches %s: %w", cmd.TransactionNumber, err)
	}

	if tx.Status == domain.StatusCompleted {
		// Re-validation of an already completed payment. Nothing to update;
		// the first confirmation's snapshot stands.
		return tx, nil
	}

	now := time.Now()
	tx.Status = domain.StatusCompleted
	tx.GatewayTransactionID = cmd.GatewayTransactionID
	tx.GatewayResponse = cmd.GatewayResponse
	tx.PaymentDate = &now
	tx.VerifiedAt = &now

	if err := h.transactions.Complete(tx); err != nil {
		return nil, fmt.Errorf("failed to complete transaction: %w", err)
	}

	logger.Step(ctx, "ledger", "transaction_completed").
		Uint("transaction_id", tx.ID).
		Str("transaction_number", tx.TransactionNumber).
		Msg("Transaction completed after validation")

	stampPaid(ctx, h.fees, h.invoices, tx)

	return tx, nil
}
