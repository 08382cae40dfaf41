package http

import (
	"strings"

	"github.com/schoolkit/edupay/internal/account/domain"
)

type memUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
}

func (r *memUserRepo) Create(user *domain.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(id uint) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindByUsername(username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindAll(limit, offset int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) Update(user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(id uint) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) Count() (int64, error) {
	return int64(len(r.users)), nil
}

type memRoleRepo struct {
	grants map[uint][]string
}

func (r *memRoleRepo) Grant(userID uint, role string) error {
	r.grants[userID] = append(r.grants[userID], role)
	return nil
}

func (r *memRoleRepo) Find(userID uint, role string) (*domain.UserRole, error) {
	for _, g := range r.grants[userID] {
		if g == role {
			return &domain.UserRole{UserID: userID, Role: role}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRoleRepo) RolesOf(userID uint) (domain.RoleSet, error) {
	return domain.RoleSet(r.grants[userID]), nil
}

type memSchoolRepo struct {
	schools map[uint]*domain.School
	subs    map[uint]*domain.SchoolSubscription
	links   []domain.SchoolUser
	nextID  uint
}

func (r *memSchoolRepo) Create(school *domain.School) error {
	school.ID = r.nextID
	r.nextID++
	r.schools[school.ID] = school
	return nil
}

func (r *memSchoolRepo) FindByID(id uint) (*domain.School, error) {
	if s, ok := r.schools[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memSchoolRepo) Link(link *domain.SchoolUser) error {
	r.links = append(r.links, *link)
	return nil
}

func (r *memSchoolRepo) Subscription(schoolID uint) (*domain.SchoolSubscription, error) {
	if s, ok := r.subs[schoolID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

type memEntityRepo struct {
	teacherCount int64
	studentCount int64
	parentCount  int64
}

func (r *memEntityRepo) FindTeacher(id uint) (*domain.Teacher, error) {
	return nil, domain.ErrNotFound
}

func (r *memEntityRepo) FindStudent(id uint) (*domain.Student, error) {
	return nil, domain.ErrNotFound
}

func (r *memEntityRepo) AttachTeacherUser(teacherID, userID uint) error         { return nil }
func (r *memEntityRepo) AttachStudentUser(studentID, userID uint) error         { return nil }
func (r *memEntityRepo) AttachStudentParent(studentID, parentUserID uint) error { return nil }
func (r *memEntityRepo) CountTeachers(schoolID uint) (int64, error)             { return r.teacherCount, nil }
func (r *memEntityRepo) CountStudents(schoolID uint) (int64, error)             { return r.studentCount, nil }
func (r *memEntityRepo) CountParents(schoolID uint) (int64, error)              { return r.parentCount, nil }

type memCredRepo struct {
	creds  map[uint]*domain.GeneratedCredential
	nextID uint
}

func (r *memCredRepo) Create(cred *domain.GeneratedCredential) error {
	cred.ID = r.nextID
	r.nextID++
	r.creds[cred.ID] = cred
	return nil
}

func (r *memCredRepo) FindByID(id uint) (*domain.GeneratedCredential, error) {
	if c, ok := r.creds[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memCredRepo) MarkSent(id uint, via string) error {
	c, ok := r.creds[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.SentVia = via
	return nil
}
