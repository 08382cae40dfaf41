package query

import (
	"github.com/schoolkit/edupay/internal/account/domain"
)

// ListUsersQuery represents the query to list users
type ListUsersQuery struct {
	Limit  int
	Offset int
}

// ListUsersResult carries one page of users plus the total count
type ListUsersResult struct {
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
}

// ListUsersHandler handles list users query
type ListUsersHandler struct {
	users domain.UserRepository
}

// NewListUsersHandler creates a new list users handler
func NewListUsersHandler(users domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{users: users}
}

// Handle executes the list users query
func (h *ListUsersHandler) Handle(query ListUsersQuery) (*ListUsersResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	users, err := h.users.FindAll(limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := h.users.Count()
	if err != nil {
		return nil, err
	}

	return &ListUsersResult{Users: users, Total: total}, nil
}
