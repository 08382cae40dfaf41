package query

import (
	"github.com/schoolkit/edupay/internal/payment/domain"
)

// ListTransactionsQuery represents the query to list transactions,
// optionally filtered by student
type ListTransactionsQuery struct {
	StudentID uint
	Limit     int
	Offset    int
}

// ListTransactionsHandler handles list transactions query
type ListTransactionsHandler struct {
	repo domain.TransactionRepository
}

// NewListTransactionsHandler creates a new list transactions handler
func NewListTransactionsHandler(repo domain.TransactionRepository) *ListTransactionsHandler {
	return &ListTransactionsHandler{repo: repo}
}

// Handle executes the list transactions query
func (h *ListTransactionsHandler) Handle(query ListTransactionsQuery) ([]domain.Transaction, error) {
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if query.StudentID != 0 {
		return h.repo.FindByStudentID(query.StudentID, limit, query.Offset)
	}
	return h.repo.FindAll(limit, query.Offset)
}
