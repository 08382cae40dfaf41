package query

import (
	"fmt"

	"github.com/schoolkit/edupay/internal/account/domain"
)

// CheckSchoolLimitQuery represents the query to check whether a school may
// provision one more entity of the given type
type CheckSchoolLimitQuery struct {
	SchoolID   uint
	EntityType string
}

// SchoolLimitResult reports current usage against the subscription quota
type SchoolLimitResult struct {
	Allowed bool   `json:"allowed"`
	Current int64  `json:"current"`
	Max     int64  `json:"max"`
	Message string `json:"message,omitempty"`
}

// CheckSchoolLimitHandler handles school limit queries
type CheckSchoolLimitHandler struct {
	schools domain.SchoolRepository
	entity  domain.EntityRepository
}

// NewCheckSchoolLimitHandler creates a new check school limit handler
func NewCheckSchoolLimitHandler(schools domain.SchoolRepository, entity domain.EntityRepository) *CheckSchoolLimitHandler {
	return &CheckSchoolLimitHandler{schools: schools, entity: entity}
}

// Handle executes the check school limit query. A school without a
// subscription row falls back to the default tier limits.
func (h *CheckSchoolLimitHandler) Handle(query CheckSchoolLimitQuery) (*SchoolLimitResult, error) {
	if query.SchoolID == 0 {
		return nil, fmt.Errorf("school id is required")
	}

	sub, err := h.schools.Subscription(query.SchoolID)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}

	var max, current int64
	switch query.EntityType {
	case domain.EntityTeacher:
		max = domain.DefaultMaxTeachers
		if sub != nil {
			max = sub.MaxTeachers
		}
		current, err = h.entity.CountTeachers(query.SchoolID)
	case domain.EntityStudent:
		max = domain.DefaultMaxStudents
		if sub != nil {
			max = sub.MaxStudents
		}
		current, err = h.entity.CountStudents(query.SchoolID)
	case domain.EntityParent:
		max = domain.DefaultMaxParents
		if sub != nil {
			max = sub.MaxParents
		}
		current, err = h.entity.CountParents(query.SchoolID)
	default:
		return nil, fmt.Errorf("unknown entity type: %s", query.EntityType)
	}
	if err != nil {
		return nil, err
	}

	result := &SchoolLimitResult{Allowed: current < max, Current: current, Max: max}
	if !result.Allowed {
		result.Message = fmt.Sprintf("Your plan allows up to %d %ss. Upgrade your subscription to add more.", max, query.EntityType)
	}
	return result, nil
}
