package command

import (
	"strings"

	"github.com/schoolkit/edupay/internal/account/domain"
)

type fakeUserRepo struct {
	users     map[uint]*domain.User
	nextID    uint
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) FindAll(limit, offset int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	return int64(len(r.users)), nil
}

type fakeRoleRepo struct {
	grants     map[uint][]string
	grantCalls int
	grantErr   error
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{grants: make(map[uint][]string)}
}

func (r *fakeRoleRepo) Grant(userID uint, role string) error {
	r.grantCalls++
	if r.grantErr != nil {
		return r.grantErr
	}
	r.grants[userID] = append(r.grants[userID], role)
	return nil
}

func (r *fakeRoleRepo) Find(userID uint, role string) (*domain.UserRole, error) {
	for _, g := range r.grants[userID] {
		if g == role {
			return &domain.UserRole{UserID: userID, Role: role}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRoleRepo) RolesOf(userID uint) (domain.RoleSet, error) {
	return domain.RoleSet(r.grants[userID]), nil
}

type fakeSchoolRepo struct {
	schools   map[uint]*domain.School
	links     []domain.SchoolUser
	subs      map[uint]*domain.SchoolSubscription
	nextID    uint
	linkErr   error
	createErr error
}

func newFakeSchoolRepo() *fakeSchoolRepo {
	return &fakeSchoolRepo{
		schools: make(map[uint]*domain.School),
		subs:    make(map[uint]*domain.SchoolSubscription),
		nextID:  1,
	}
}

func (r *fakeSchoolRepo) Create(school *domain.School) error {
	if r.createErr != nil {
		return r.createErr
	}
	school.ID = r.nextID
	r.nextID++
	r.schools[school.ID] = school
	return nil
}

func (r *fakeSchoolRepo) FindByID(id uint) (*domain.School, error) {
	if s, ok := r.schools[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeSchoolRepo) Link(link *domain.SchoolUser) error {
	if r.linkErr != nil {
		return r.linkErr
	}
	r.links = append(r.links, *link)
	return nil
}

func (r *fakeSchoolRepo) Subscription(schoolID uint) (*domain.SchoolSubscription, error) {
	if s, ok := r.subs[schoolID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

type fakeEntityRepo struct {
	teachers        map[uint]*domain.Teacher
	students        map[uint]*domain.Student
	parentOf        map[uint]uint
	teacherCount    int64
	studentCount    int64
	parentCount     int64
	attachParentErr error
	attachUserErr   error
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{
		teachers: make(map[uint]*domain.Teacher),
		students: make(map[uint]*domain.Student),
		parentOf: make(map[uint]uint),
	}
}

func (r *fakeEntityRepo) FindTeacher(id uint) (*domain.Teacher, error) {
	if t, ok := r.teachers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeEntityRepo) FindStudent(id uint) (*domain.Student, error) {
	if s, ok := r.students[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeEntityRepo) AttachTeacherUser(teacherID, userID uint) error {
	if r.attachUserErr != nil {
		return r.attachUserErr
	}
	if t, ok := r.teachers[teacherID]; ok {
		t.UserID = &userID
	}
	return nil
}

func (r *fakeEntityRepo) AttachStudentUser(studentID, userID uint) error {
	if r.attachUserErr != nil {
		return r.attachUserErr
	}
	if s, ok := r.students[studentID]; ok {
		s.UserID = &userID
	}
	return nil
}

func (r *fakeEntityRepo) AttachStudentParent(studentID, parentUserID uint) error {
	if r.attachParentErr != nil {
		return r.attachParentErr
	}
	r.parentOf[studentID] = parentUserID
	return nil
}

func (r *fakeEntityRepo) CountTeachers(schoolID uint) (int64, error) { return r.teacherCount, nil }
func (r *fakeEntityRepo) CountStudents(schoolID uint) (int64, error) { return r.studentCount, nil }
func (r *fakeEntityRepo) CountParents(schoolID uint) (int64, error)  { return r.parentCount, nil }

type fakeCredRepo struct {
	creds     map[uint]*domain.GeneratedCredential
	nextID    uint
	createErr error
}

func newFakeCredRepo() *fakeCredRepo {
	return &fakeCredRepo{creds: make(map[uint]*domain.GeneratedCredential), nextID: 1}
}

func (r *fakeCredRepo) Create(cred *domain.GeneratedCredential) error {
	if r.createErr != nil {
		return r.createErr
	}
	cred.ID = r.nextID
	r.nextID++
	r.creds[cred.ID] = cred
	return nil
}

func (r *fakeCredRepo) FindByID(id uint) (*domain.GeneratedCredential, error) {
	if c, ok := r.creds[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCredRepo) MarkSent(id uint, via string) error {
	c, ok := r.creds[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.SentVia = via
	return nil
}
