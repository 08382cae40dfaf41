package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schoolkit/edupay/internal/account/credentials"
	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/pkg/auth"
	"github.com/schoolkit/edupay/pkg/logger"
)

const workflowCreateAccount = "create_account"

// CreateAccountCommand represents the command to provision login credentials
// for a teacher, student, or parent
type CreateAccountCommand struct {
	CallerID    uint
	SchoolID    uint
	EntityType  string
	EntityID    uint
	Email       string
	FullName    string
	Phone       string
	ParentEmail string
	ParentName  string
	ParentPhone string
}

// Credentials is the username/password pair handed back to the admin.
// CredentialID points at the audit row; zero when the audit write failed.
type Credentials struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	CredentialID uint   `json:"-"`
}

// CreateAccountResult carries the provisioned credentials, plus the parent's
// when a student provisioning cascaded into one
type CreateAccountResult struct {
	UserID            uint         `json:"user_id"`
	Credentials       Credentials  `json:"credentials"`
	ParentCredentials *Credentials `json:"parent_credentials,omitempty"`
}

// LimitError reports a subscription quota rejection
type LimitError struct {
	EntityType string
	Current    int64
	Max        int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit reached (%d of %d)", e.EntityType, e.Current, e.Max)
}

// CreateAccountHandler handles account provisioning
type CreateAccountHandler struct {
	users   domain.UserRepository
	roles   domain.RoleRepository
	schools domain.SchoolRepository
	entity  domain.EntityRepository
	creds   domain.CredentialRepository
}

// NewCreateAccountHandler creates a new create account handler
func NewCreateAccountHandler(
	users domain.UserRepository,
	roles domain.RoleRepository,
	schools domain.SchoolRepository,
	entity domain.EntityRepository,
	creds domain.CredentialRepository,
) *CreateAccountHandler {
	return &CreateAccountHandler{users: users, roles: roles, schools: schools, entity: entity, creds: creds}
}

// Handle executes the create account command. Identity creation is the only
// fatal step; role grants, school links, entity back-fills, and the audit row
// are logged and swallowed on failure so a half-provisioned account still
// comes back with usable credentials.
func (h *CreateAccountHandler) Handle(ctx context.Context, cmd CreateAccountCommand) (*CreateAccountResult, error) {
	if err := h.authorize(cmd.CallerID); err != nil {
		return nil, err
	}

	if _, ok := domain.RoleForEntity(cmd.EntityType); !ok {
		return nil, fmt.Errorf("unknown entity type: %s", cmd.EntityType)
	}
	if cmd.SchoolID == 0 {
		return nil, fmt.Errorf("school id is required")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(cmd.FullName) == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if cmd.EntityType != domain.EntityParent && cmd.EntityID == 0 {
		return nil, fmt.Errorf("entity id is required")
	}

	if err := h.checkLimit(cmd.SchoolID, cmd.EntityType); err != nil {
		return nil, err
	}

	primary, err := h.provisionUser(ctx, cmd.SchoolID, cmd.EntityType, cmd.EntityID, cmd.Email, cmd.FullName, cmd.Phone, cmd.CallerID)
	if err != nil {
		return nil, err
	}

	switch cmd.EntityType {
	case domain.EntityTeacher:
		if err := h.entity.AttachTeacherUser(cmd.EntityID, primary.UserID); err != nil {
			logger.StepError(ctx, workflowCreateAccount, "attach_teacher", err).
				Uint("teacher_id", cmd.EntityID).Msg("Failed to back-fill teacher user id")
		}
	case domain.EntityStudent:
		if err := h.entity.AttachStudentUser(cmd.EntityID, primary.UserID); err != nil {
			logger.StepError(ctx, workflowCreateAccount, "attach_student", err).
				Uint("student_id", cmd.EntityID).Msg("Failed to back-fill student user id")
		}
	}

	result := &CreateAccountResult{UserID: primary.UserID, Credentials: *primary}

	if cmd.EntityType == domain.EntityStudent && strings.TrimSpace(cmd.ParentEmail) != "" {
		parent, err := h.cascadeParent(ctx, cmd)
		if err != nil {
			logger.StepError(ctx, workflowCreateAccount, "parent_cascade", err).
				Str("parent_email", cmd.ParentEmail).Msg("Parent provisioning failed")
		} else if parent != nil {
			result.ParentCredentials = parent
		}
	}

	logger.Step(ctx, workflowCreateAccount, "done").
		Uint("user_id", primary.UserID).
		Str("entity_type", cmd.EntityType).
		Msg("Account provisioned")
	return result, nil
}

func (h *CreateAccountHandler) authorize(callerID uint) error {
	if callerID == 0 {
		return domain.ErrForbidden
	}
	roles, err := h.roles.RolesOf(callerID)
	if err != nil {
		return fmt.Errorf("failed to load caller roles: %w", err)
	}
	if !roles.HasAnyAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (h *CreateAccountHandler) checkLimit(schoolID uint, entityType string) error {
	max, current, err := schoolUsage(h.schools, h.entity, schoolID, entityType)
	if err != nil {
		return fmt.Errorf("failed to check school limit: %w", err)
	}
	if current >= max {
		return &LimitError{EntityType: entityType, Current: current, Max: max}
	}
	return nil
}

// provisionUser creates the identity row, then best-effort grants the role,
// links the school, and writes the audit trail.
func (h *CreateAccountHandler) provisionUser(ctx context.Context, schoolID uint, entityType string, entityID uint, email, fullName, phone string, createdBy uint) (*Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, _ := h.users.FindByEmail(email); existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	password, err := credentials.GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username, err := h.uniqueUsername(entityType, email)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:       username,
		Email:          email,
		Password:       hashed,
		FullName:       fullName,
		Phone:          phone,
		EmailConfirmed: true,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logger.Step(ctx, workflowCreateAccount, "identity_created").
		Uint("user_id", user.ID).Str("username", username).Msg("Identity created")

	role, _ := domain.RoleForEntity(entityType)
	if err := h.roles.Grant(user.ID, role); err != nil {
		logger.StepError(ctx, workflowCreateAccount, "grant_role", err).
			Uint("user_id", user.ID).Str("role", role).Msg("Failed to grant role")
	}
	if err := h.schools.Link(&domain.SchoolUser{SchoolID: schoolID, UserID: user.ID}); err != nil {
		logger.StepError(ctx, workflowCreateAccount, "link_school", err).
			Uint("user_id", user.ID).Uint("school_id", schoolID).Msg("Failed to link school")
	}
	cred := &domain.GeneratedCredential{
		UserID:            user.ID,
		EntityType:        entityType,
		EntityID:          entityID,
		Username:          username,
		TemporaryPassword: password,
		CreatedBy:         createdBy,
	}
	if err := h.creds.Create(cred); err != nil {
		logger.StepError(ctx, workflowCreateAccount, "audit_credentials", err).
			Uint("user_id", user.ID).Msg("Failed to record generated credentials")
		cred.ID = 0
	}

	return &Credentials{
		UserID:       user.ID,
		Email:        email,
		FullName:     fullName,
		Username:     username,
		Password:     password,
		CredentialID: cred.ID,
	}, nil
}

// cascadeParent links an existing guardian identity, or provisions a fresh
// parent account when none exists for the email. A fresh account needs a
// supplied parent name; without one the cascade is skipped.
func (h *CreateAccountHandler) cascadeParent(ctx context.Context, cmd CreateAccountCommand) (*Credentials, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.ParentEmail))

	if existing, _ := h.users.FindByEmail(email); existing != nil {
		if err := h.entity.AttachStudentParent(cmd.EntityID, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to link existing parent: %w", err)
		}
		logger.Step(ctx, workflowCreateAccount, "parent_linked").
			Uint("parent_user_id", existing.ID).Uint("student_id", cmd.EntityID).
			Msg("Existing parent linked to student")
		return nil, nil
	}

	name := strings.TrimSpace(cmd.ParentName)
	if name == "" {
		logger.Step(ctx, workflowCreateAccount, "parent_skipped").
			Str("parent_email", email).Uint("student_id", cmd.EntityID).
			Msg("No parent name supplied, skipping parent provisioning")
		return nil, nil
	}
	parent, err := h.provisionUser(ctx, cmd.SchoolID, domain.EntityParent, cmd.EntityID, email, name, cmd.ParentPhone, cmd.CallerID)
	if err != nil {
		return nil, err
	}
	if err := h.entity.AttachStudentParent(cmd.EntityID, parent.UserID); err != nil {
		logger.StepError(ctx, workflowCreateAccount, "link_parent", err).
			Uint("parent_user_id", parent.UserID).Uint("student_id", cmd.EntityID).
			Msg("Failed to link new parent to student")
	}
	return parent, nil
}

// uniqueUsername retries generation a few times in case the random suffix
// collides with an existing account.
func (h *CreateAccountHandler) uniqueUsername(entityType, email string) (string, error) {
	for i := 0; i < 5; i++ {
		username, err := credentials.GenerateUsername(entityType, email)
		if err != nil {
			return "", fmt.Errorf("failed to generate username: %w", err)
		}
		if existing, _ := h.users.FindByUsername(username); existing == nil {
			return username, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique username for %s", email)
}

// schoolUsage resolves the quota and current count for one entity type,
// falling back to the default tier when the school has no subscription row.
func schoolUsage(schools domain.SchoolRepository, entity domain.EntityRepository, schoolID uint, entityType string) (max, current int64, err error) {
	sub, err := schools.Subscription(schoolID)
	if err != nil && err != domain.ErrNotFound {
		return 0, 0, err
	}

	switch entityType {
	case domain.EntityTeacher:
		max = domain.DefaultMaxTeachers
		if sub != nil {
			max = sub.MaxTeachers
		}
		current, err = entity.CountTeachers(schoolID)
	case domain.EntityStudent:
		max = domain.DefaultMaxStudents
		if sub != nil {
			max = sub.MaxStudents
		}
		current, err = entity.CountStudents(schoolID)
	case domain.EntityParent:
		max = domain.DefaultMaxParents
		if sub != nil {
			max = sub.MaxParents
		}
		current, err = entity.CountParents(schoolID)
	default:
		return 0, 0, fmt.Errorf("unknown entity type: %s", entityType)
	}
	return max, current, err
}
