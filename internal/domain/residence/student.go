package residence

import (
	"strings"

	"github.com/alamait/backend/internal/domain/shared"
)

// Student is the directory record the reporting engine resolves names from
type Student struct {
	shared.BaseAggregateRoot
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// NewStudent creates a new student directory record
func NewStudent(firstName, lastName, email string) (*Student, error) {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Student first and last name are required")
	}
	return &Student{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Email:             strings.TrimSpace(email),
	}, nil
}

// FullName returns the student's display name
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
