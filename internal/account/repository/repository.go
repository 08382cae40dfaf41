package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/schoolkit/edupay/internal/account/domain"
)

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.User{},
		&domain.UserRole{},
		&domain.School{},
		&domain.SchoolUser{},
		&domain.Teacher{},
		&domain.Student{},
		&domain.GeneratedCredential{},
		&domain.SchoolSubscription{},
	)
}

func (r *GormUserRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindAll(limit, offset int) ([]domain.User, error) {
	var users []domain.User
	err := r.db.Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *GormUserRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

func (r *GormUserRepository) Delete(id uint) error {
	return r.db.Delete(&domain.User{}, id).Error
}

func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.User{}).Count(&count).Error
	return count, err
}

type GormRoleRepository struct {
	db *gorm.DB
}

func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

func (r *GormRoleRepository) Grant(userID uint, role string) error {
	return r.db.Create(&domain.UserRole{UserID: userID, Role: role}).Error
}

func (r *GormRoleRepository) Find(userID uint, role string) (*domain.UserRole, error) {
	var row domain.UserRole
	err := r.db.Where("user_id = ? AND role = ?", userID, role).First(&row).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &row, nil
}

func (r *GormRoleRepository) RolesOf(userID uint) (domain.RoleSet, error) {
	var rows []domain.UserRole
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	roles := make(domain.RoleSet, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role)
	}
	return roles, nil
}

type GormSchoolRepository struct {
	db *gorm.DB
}

func NewGormSchoolRepository(db *gorm.DB) *GormSchoolRepository {
	return &GormSchoolRepository{db: db}
}

func (r *GormSchoolRepository) Create(school *domain.School) error {
	return r.db.Create(school).Error
}

func (r *GormSchoolRepository) FindByID(id uint) (*domain.School, error) {
	var school domain.School
	if err := r.db.First(&school, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &school, nil
}

func (r *GormSchoolRepository) Link(link *domain.SchoolUser) error {
	return r.db.Create(link).Error
}

func (r *GormSchoolRepository) Subscription(schoolID uint) (*domain.SchoolSubscription, error) {
	var sub domain.SchoolSubscription
	err := r.db.Where("school_id = ?", schoolID).First(&sub).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &sub, nil
}

type GormEntityRepository struct {
	db *gorm.DB
}

func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{db: db}
}

func (r *GormEntityRepository) FindTeacher(id uint) (*domain.Teacher, error) {
	var teacher domain.Teacher
	if err := r.db.First(&teacher, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &teacher, nil
}

func (r *GormEntityRepository) FindStudent(id uint) (*domain.Student, error) {
	var student domain.Student
	if err := r.db.First(&student, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &student, nil
}

func (r *GormEntityRepository) AttachTeacherUser(teacherID, userID uint) error {
	return r.db.Model(&domain.Teacher{}).
		Where("id = ?", teacherID).
		Updates(map[string]interface{}{"user_id": userID, "updated_at": time.Now()}).Error
}

func (r *GormEntityRepository) AttachStudentUser(studentID, userID uint) error {
	return r.db.Model(&domain.Student{}).
		Where("id = ?", studentID).
		Updates(map[string]interface{}{"user_id": userID, "updated_at": time.Now()}).Error
}

func (r *GormEntityRepository) AttachStudentParent(studentID, parentUserID uint) error {
	return r.db.Model(&domain.Student{}).
		Where("id = ?", studentID).
		Updates(map[string]interface{}{"parent_id": parentUserID, "updated_at": time.Now()}).Error
}

func (r *GormEntityRepository) CountTeachers(schoolID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Teacher{}).Where("school_id = ?", schoolID).Count(&count).Error
	return count, err
}

func (r *GormEntityRepository) CountStudents(schoolID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Student{}).Where("school_id = ?", schoolID).Count(&count).Error
	return count, err
}

// CountParents counts parent accounts linked to a school through its
// membership edges.
func (r *GormEntityRepository) CountParents(schoolID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.SchoolUser{}).
		Joins("JOIN user_roles ON user_roles.user_id = school_users.user_id AND user_roles.role = ?", domain.RoleParent).
		Where("school_users.school_id = ?", schoolID).
		Count(&count).Error
	return count, err
}

type GormCredentialRepository struct {
	db *gorm.DB
}

func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) Create(cred *domain.GeneratedCredential) error {
	return r.db.Create(cred).Error
}

func (r *GormCredentialRepository) FindByID(id uint) (*domain.GeneratedCredential, error) {
	var cred domain.GeneratedCredential
	if err := r.db.First(&cred, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &cred, nil
}

func (r *GormCredentialRepository) MarkSent(id uint, via string) error {
	now := time.Now()
	return r.db.Model(&domain.GeneratedCredential{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"sent_via": via, "sent_at": &now}).Error
}
