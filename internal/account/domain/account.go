package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Roles form a closed enum. Authorization is a set-membership test against
// them; there is no inheritance between roles.
const (
	RoleSuperAdmin  = "super_admin"
	RoleSchoolAdmin = "school_admin"
	RoleTeacher     = "teacher"
	RoleStudent     = "student"
	RoleParent      = "parent"
)

// Entity types a provisioning request may target
const (
	EntityTeacher = "teacher"
	EntityStudent = "student"
	EntityParent  = "parent"
)

var (
	// ErrNotFound means the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrForbidden means the caller's role set lacks admin access
	ErrForbidden = errors.New("admin access required")
	// ErrDuplicateEmail means an identity already exists for the email
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidRole means the role is outside the closed enum
	ErrInvalidRole = errors.New("invalid role")
)

// ValidRole reports whether the role belongs to the closed enum
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// RoleForEntity maps a provisioning entity type to the role the new account
// receives
func RoleForEntity(entityType string) (string, bool) {
	switch entityType {
	case EntityTeacher:
		return RoleTeacher, true
	case EntityStudent:
		return RoleStudent, true
	case EntityParent:
		return RoleParent, true
	}
	return "", false
}

// RoleSet is the set of roles held by one user
type RoleSet []string

// Has reports whether the set contains the role
func (s RoleSet) Has(role string) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyAdmin reports whether the set grants admin capability
func (s RoleSet) HasAnyAdmin() bool {
	return s.Has(RoleSuperAdmin) || s.Has(RoleSchoolAdmin)
}

// User is an authenticatable identity plus the profile fields the dashboards
// display. Admin-provisioned accounts are created with EmailConfirmed set;
// there is no verification loop.
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Username       string         `json:"username" gorm:"uniqueIndex;not null"`
	Email          string         `json:"email" gorm:"uniqueIndex;not null"`
	Password       string         `json:"-" gorm:"not null"`
	FullName       string         `json:"full_name" gorm:"not null"`
	Phone          string         `json:"phone"`
	EmailConfirmed bool           `json:"email_confirmed" gorm:"default:false"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// UserRole is one granted role. A user may hold several; the (user, role)
// pair is unique so repeated grants stay idempotent.
type UserRole struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_role"`
	Role      string    `json:"role" gorm:"not null;uniqueIndex:idx_user_role"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (UserRole) TableName() string {
	return "user_roles"
}

// School is the owning tenant of all domain entities
type School struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Code      string    `json:"code" gorm:"not null;index"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (School) TableName() string {
	return "schools"
}

// SchoolUser links an identity to a school
type SchoolUser struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SchoolID  uint      `json:"school_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	IsAdmin   bool      `json:"is_admin" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (SchoolUser) TableName() string {
	return "school_users"
}

// Teacher is a pre-existing domain entity; provisioning only attaches the
// identity through UserID.
type Teacher struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SchoolID  uint      `json:"school_id" gorm:"not null;index"`
	FullName  string    `json:"full_name" gorm:"not null"`
	UserID    *uint     `json:"user_id,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Teacher) TableName() string {
	return "teachers"
}

// Student is a pre-existing domain entity. ParentID links the guardian's
// identity once one is provisioned or matched.
type Student struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SchoolID  uint      `json:"school_id" gorm:"not null;index"`
	FullName  string    `json:"full_name" gorm:"not null"`
	UserID    *uint     `json:"user_id,omitempty" gorm:"index"`
	ParentID  *uint     `json:"parent_id,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Student) TableName() string {
	return "students"
}

// GeneratedCredential is the audit row of a provisioned account's initial
// credentials. Written once, never updated except for the delivery stamp.
// Storing the issuance-time password is a deliberate trade-off so admins can
// re-read initial credentials; see DESIGN.md for the hardening note.
type GeneratedCredential struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	UserID            uint       `json:"user_id" gorm:"not null;index"`
	EntityType        string     `json:"entity_type" gorm:"not null"`
	EntityID          uint       `json:"entity_id" gorm:"not null"`
	Username          string     `json:"username" gorm:"not null"`
	TemporaryPassword string     `json:"temporary_password" gorm:"not null"`
	SentVia           string     `json:"sent_via"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedBy         uint       `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
}

// TableName specifies the table name
func (GeneratedCredential) TableName() string {
	return "generated_credentials"
}

// SchoolSubscription caps how many entities of each type a school may
// provision. Absent row means the default tier.
type SchoolSubscription struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SchoolID    uint      `json:"school_id" gorm:"not null;uniqueIndex"`
	Plan        string    `json:"plan" gorm:"not null;default:'basic'"`
	MaxTeachers int64     `json:"max_teachers" gorm:"not null"`
	MaxStudents int64     `json:"max_students" gorm:"not null"`
	MaxParents  int64     `json:"max_parents" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (SchoolSubscription) TableName() string {
	return "school_subscriptions"
}

// Default tier limits applied when a school has no subscription row
const (
	DefaultMaxTeachers = 50
	DefaultMaxStudents = 500
	DefaultMaxParents  = 500
)

// UserRepository defines the contract for identity data access
type UserRepository interface {
	Create(user *User) error
	FindByID(id uint) (*User, error)
	FindByEmail(email string) (*User, error)
	FindByUsername(username string) (*User, error)
	FindAll(limit, offset int) ([]User, error)
	Update(user *User) error
	Delete(id uint) error
	Count() (int64, error)
}

// RoleRepository defines the contract for role grants
type RoleRepository interface {
	Grant(userID uint, role string) error
	Find(userID uint, role string) (*UserRole, error)
	RolesOf(userID uint) (RoleSet, error)
}

// SchoolRepository defines the contract for schools and memberships
type SchoolRepository interface {
	Create(school *School) error
	FindByID(id uint) (*School, error)
	Link(link *SchoolUser) error
	Subscription(schoolID uint) (*SchoolSubscription, error)
}

// EntityRepository defines the contract for the pre-existing teacher and
// student rows that provisioning back-fills
type EntityRepository interface {
	FindTeacher(id uint) (*Teacher, error)
	FindStudent(id uint) (*Student, error)
	AttachTeacherUser(teacherID, userID uint) error
	AttachStudentUser(studentID, userID uint) error
	AttachStudentParent(studentID, parentUserID uint) error
	CountTeachers(schoolID uint) (int64, error)
	CountStudents(schoolID uint) (int64, error)
	CountParents(schoolID uint) (int64, error)
}

// CredentialRepository defines the contract for the credential audit trail
type CredentialRepository interface {
	Create(cred *GeneratedCredential) error
	FindByID(id uint) (*GeneratedCredential, error)
	MarkSent(id uint, via string) error
}
