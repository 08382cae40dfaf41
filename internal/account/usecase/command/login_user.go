package command

import (
	"fmt"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/pkg/auth"
)

// LoginUserCommand represents the command to login a user
type LoginUserCommand struct {
	Email    string
	Password string
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
	Roles []string     `json:"roles"`
}

// LoginUserHandler handles user login command
type LoginUserHandler struct {
	users domain.UserRepository
	roles domain.RoleRepository
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(users domain.UserRepository, roles domain.RoleRepository) *LoginUserHandler {
	return &LoginUserHandler{users: users, roles: roles}
}

// Handle executes the login user command
func (h *LoginUserHandler) Handle(cmd LoginUserCommand) (*LoginResponse, error) {
	if cmd.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if cmd.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	user, err := h.users.FindByEmail(cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}
	if !auth.CheckPassword(user.Password, cmd.Password) {
		return nil, fmt.Errorf("invalid credentials")
	}

	roleSet, err := h.roles.RolesOf(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, roleSet)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{Token: token, User: user, Roles: roleSet}, nil
}
