package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolkit/edupay/internal/account/domain"
)

type stubSchoolRepo struct {
	sub *domain.SchoolSubscription
}

func (r *stubSchoolRepo) Create(school *domain.School) error       { return nil }
func (r *stubSchoolRepo) FindByID(id uint) (*domain.School, error) { return nil, domain.ErrNotFound }
func (r *stubSchoolRepo) Link(link *domain.SchoolUser) error       { return nil }

func (r *stubSchoolRepo) Subscription(schoolID uint) (*domain.SchoolSubscription, error) {
	if r.sub == nil {
		return nil, domain.ErrNotFound
	}
	return r.sub, nil
}

type stubEntityRepo struct {
	teachers int64
	students int64
	parents  int64
}

func (r *stubEntityRepo) FindTeacher(id uint) (*domain.Teacher, error) {
	return nil, domain.ErrNotFound
}

func (r *stubEntityRepo) FindStudent(id uint) (*domain.Student, error) {
	return nil, domain.ErrNotFound
}

func (r *stubEntityRepo) AttachTeacherUser(teacherID, userID uint) error         { return nil }
func (r *stubEntityRepo) AttachStudentUser(studentID, userID uint) error         { return nil }
func (r *stubEntityRepo) AttachStudentParent(studentID, parentUserID uint) error { return nil }
func (r *stubEntityRepo) CountTeachers(schoolID uint) (int64, error)             { return r.teachers, nil }
func (r *stubEntityRepo) CountStudents(schoolID uint) (int64, error)             { return r.students, nil }
func (r *stubEntityRepo) CountParents(schoolID uint) (int64, error)              { return r.parents, nil }

func TestCheckSchoolLimitWithSubscription(t *testing.T) {
	handler := NewCheckSchoolLimitHandler(
		&stubSchoolRepo{sub: &domain.SchoolSubscription{MaxTeachers: 10, MaxStudents: 100, MaxParents: 100}},
		&stubEntityRepo{teachers: 4},
	)

	result, err := handler.Handle(CheckSchoolLimitQuery{SchoolID: 1, EntityType: domain.EntityTeacher})
	require.NoError(t, err)

	assert.True(t, result.Allowed)
	assert.Equal(t, int64(4), result.Current)
	assert.Equal(t, int64(10), result.Max)
	assert.Empty(t, result.Message)
}

func TestCheckSchoolLimitExhausted(t *testing.T) {
	handler := NewCheckSchoolLimitHandler(
		&stubSchoolRepo{sub: &domain.SchoolSubscription{MaxTeachers: 10, MaxStudents: 100, MaxParents: 100}},
		&stubEntityRepo{students: 100},
	)

	result, err := handler.Handle(CheckSchoolLimitQuery{SchoolID: 1, EntityType: domain.EntityStudent})
	require.NoError(t, err)

	assert.False(t, result.Allowed)
	assert.Equal(t, "Your plan allows up to 100 students. Upgrade your subscription to add more.", result.Message)
}

func TestCheckSchoolLimitDefaultTier(t *testing.T) {
	handler := NewCheckSchoolLimitHandler(&stubSchoolRepo{}, &stubEntityRepo{parents: 12})

	result, err := handler.Handle(CheckSchoolLimitQuery{SchoolID: 1, EntityType: domain.EntityParent})
	require.NoError(t, err)

	assert.True(t, result.Allowed)
	assert.Equal(t, int64(domain.DefaultMaxParents), result.Max)
}

func TestCheckSchoolLimitValidation(t *testing.T) {
	handler := NewCheckSchoolLimitHandler(&stubSchoolRepo{}, &stubEntityRepo{})

	_, err := handler.Handle(CheckSchoolLimitQuery{EntityType: domain.EntityTeacher})
	assert.Error(t, err)

	_, err = handler.Handle(CheckSchoolLimitQuery{SchoolID: 1, EntityType: "janitor"})
	assert.Error(t, err)
}
