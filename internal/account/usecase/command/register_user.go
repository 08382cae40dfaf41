package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/pkg/auth"
)

// RegisterUserCommand represents the command to self-register an identity.
// Registration grants no role; admins are bootstrapped afterwards through
// the setup endpoint.
type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	users domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(users domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{users: users}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(cmd RegisterUserCommand) (*domain.User, error) {
	if cmd.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if cmd.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if cmd.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if len(cmd.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	if cmd.FullName == "" {
		return nil, fmt.Errorf("full name is required")
	}

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if existing, _ := h.users.FindByUsername(cmd.Username); existing != nil {
		return nil, fmt.Errorf("username already exists")
	}
	if existing, _ := h.users.FindByEmail(email); existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:       cmd.Username,
		Email:          email,
		Password:       hashedPassword,
		FullName:       cmd.FullName,
		Phone:          cmd.Phone,
		EmailConfirmed: false,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
