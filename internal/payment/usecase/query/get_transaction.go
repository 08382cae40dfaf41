package query

import (
	"fmt"

	"github.com/schoolkit/edupay/internal/payment/domain"
)

// GetTransactionQuery represents the query to get a transaction
type GetTransactionQuery struct {
	ID uint
}

// GetTransactionHandler handles get transaction query
type GetTransactionHandler struct {
	repo domain.TransactionRepository
}

// NewGetTransactionHandler creates a new get transaction handler
func NewGetTransactionHandler(repo domain.TransactionRepository) *GetTransactionHandler {
	return &GetTransactionHandler{repo: repo}
}

// Handle executes the get transaction query
func (h *GetTransactionHandler) Handle(query GetTransactionQuery) (*domain.Transaction, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("id is required")
	}

	tx, err := h.repo.FindByID(query.ID)
	if err != nil {
		return nil, fmt.Errorf("transaction not found: %w", err)
	}

	return tx, nil
}
