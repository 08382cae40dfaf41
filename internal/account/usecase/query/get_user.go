package query

import (
	"fmt"

	"github.com/schoolkit/edupay/internal/account/domain"
)

// GetUserQuery represents the query to get a user by ID
type GetUserQuery struct {
	ID uint
}

// UserWithRoles pairs an identity with its granted roles
type UserWithRoles struct {
	User  *domain.User `json:"user"`
	Roles []string     `json:"roles"`
}

// GetUserHandler handles get user query
type GetUserHandler struct {
	users domain.UserRepository
	roles domain.RoleRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(users domain.UserRepository, roles domain.RoleRepository) *GetUserHandler {
	return &GetUserHandler{users: users, roles: roles}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(query GetUserQuery) (*UserWithRoles, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	user, err := h.users.FindByID(query.ID)
	if err != nil {
		return nil, err
	}
	roleSet, err := h.roles.RolesOf(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	return &UserWithRoles{User: user, Roles: roleSet}, nil
}
