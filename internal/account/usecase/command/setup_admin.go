package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/pkg/logger"
)

const workflowSetupAdmin = "setup_admin"

// SetupAdminCommand represents the one-time bootstrap of an admin role for an
// already-registered user. The user is addressed by id; email is kept as a
// fallback lookup for callers that only hold the address.
type SetupAdminCommand struct {
	UserID     uint
	Email      string
	Role       string
	SchoolName string
	SchoolCode string
}

// SetupAdminResult reports what the bootstrap created
type SetupAdminResult struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	SchoolID *uint  `json:"school_id,omitempty"`
}

// SetupAdminHandler handles admin bootstrap
type SetupAdminHandler struct {
	users   domain.UserRepository
	roles   domain.RoleRepository
	schools domain.SchoolRepository
}

// NewSetupAdminHandler creates a new setup admin handler
func NewSetupAdminHandler(users domain.UserRepository, roles domain.RoleRepository, schools domain.SchoolRepository) *SetupAdminHandler {
	return &SetupAdminHandler{users: users, roles: roles, schools: schools}
}

// Handle executes the setup admin command. The role grant is idempotent; a
// repeated school_admin call creates another school row with the same code,
// which callers are expected to avoid.
func (h *SetupAdminHandler) Handle(ctx context.Context, cmd SetupAdminCommand) (*SetupAdminResult, error) {
	role := cmd.Role
	if role == "" {
		role = domain.RoleSuperAdmin
	}
	if role != domain.RoleSuperAdmin && role != domain.RoleSchoolAdmin {
		return nil, domain.ErrInvalidRole
	}

	user, err := h.findUser(cmd)
	if err != nil {
		return nil, err
	}

	if _, err := h.roles.Find(user.ID, role); err == domain.ErrNotFound {
		if err := h.roles.Grant(user.ID, role); err != nil {
			return nil, fmt.Errorf("failed to grant role: %w", err)
		}
		logger.Step(ctx, workflowSetupAdmin, "role_granted").
			Uint("user_id", user.ID).Str("role", role).Msg("Admin role granted")
	} else if err != nil {
		return nil, err
	}

	result := &SetupAdminResult{UserID: user.ID, Role: role}

	if role == domain.RoleSchoolAdmin {
		name := strings.TrimSpace(cmd.SchoolName)
		code := strings.TrimSpace(cmd.SchoolCode)
		if name == "" || code == "" {
			return nil, fmt.Errorf("school name and school code are required for school_admin")
		}
		school := &domain.School{Name: name, Code: code, CreatedBy: user.ID}
		if err := h.schools.Create(school); err != nil {
			return nil, fmt.Errorf("failed to create school: %w", err)
		}
		if err := h.schools.Link(&domain.SchoolUser{SchoolID: school.ID, UserID: user.ID, IsAdmin: true}); err != nil {
			logger.StepError(ctx, workflowSetupAdmin, "link_school", err).
				Uint("school_id", school.ID).Uint("user_id", user.ID).Msg("Failed to link admin to school")
		}
		result.SchoolID = &school.ID
		logger.Step(ctx, workflowSetupAdmin, "school_created").
			Uint("school_id", school.ID).Str("code", code).Msg("School created")
	}

	return result, nil
}

func (h *SetupAdminHandler) findUser(cmd SetupAdminCommand) (*domain.User, error) {
	if cmd.UserID != 0 {
		return h.users.FindByID(cmd.UserID)
	}
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" {
		return nil, fmt.Errorf("user id or email is required")
	}
	return h.users.FindByEmail(email)
}
