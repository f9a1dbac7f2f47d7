package wizard

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cityhall/employee-registry/internal/models"
)

const dateLayout = "2006-01-02"

// RecordStore is the create side of the employees table
type RecordStore interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
}

// Submitter turns a completed draft into an employees row and creates it
type Submitter struct {
	store RecordStore
	roles []models.Reference
	now   func() time.Time
}

// SubmitterOption configures a Submitter
type SubmitterOption func(*Submitter)

// WithClock overrides the clock used for the admission date default
func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSubmitter creates a Submitter resolving role ids against roles
func NewSubmitter(store RecordStore, roles []models.Reference, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		store: store,
		roles: roles,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates the employee described by d. The store is called exactly
// once and nothing is written before it.
func (s *Submitter) Submit(ctx context.Context, d Draft) (*models.Employee, error) {
	employee := s.Record(d)
	if err := s.store.CreateEmployee(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// Record maps d onto the persisted shape without touching the store
func (s *Submitter) Record(d Draft) *models.Employee {
	admission := d.AdmissionDate
	if admission == "" {
		admission = s.now().Format(dateLayout)
	}

	var photo *string
	if d.Photo != nil && *d.Photo != "" {
		p := *d.Photo
		photo = &p
	}

	return &models.Employee{
		FullName:             d.FullName,
		NationalID:           d.NationalID,
		BirthDate:            d.BirthDate,
		Sex:                  optional(d.Sex),
		MaritalStatus:        optional(d.MaritalStatus),
		Photo:                photo,
		Address:              optional(d.Address),
		Phone:                firstPresent(d.MobilePhone, d.LandlinePhone),
		Email:                optional(d.Email),
		EducationLevel:       optional(d.EducationLevel),
		SocialSecurityNumber: optional(d.SocialSecurityNumber),
		ContractType:         models.ContractType(d.ContractType),
		JobRole:              s.roleName(d.RoleID),
		DepartmentID:         d.DepartmentID,
		WorkLocation:         optional(d.WorkLocation),
		WorkSchedule:         optional(d.WorkSchedule),
		Salary:               ParseSalary(d.Salary),
		AdmissionDate:        admission,
		SponsorID:            d.SponsorID,
		SponsorshipDate:      optional(d.SponsorshipDate),
		SponsorshipNotes:     optional(d.SponsorshipNotes),
		Status:               models.EmployeeStatusActive,
	}
}

func (s *Submitter) roleName(id string) string {
	for _, role := range s.roles {
		if role.ID == id {
			return role.Name
		}
	}
	return models.RoleNotInformed
}

var nonMoney = regexp.MustCompile(`[^0-9.,]`)

// ParseSalary reads a currency amount typed in the form. Everything except
// digits, dots and commas is dropped. When a comma is present the last one is
// the decimal separator and every other separator is a thousands mark;
// without a comma a single dot is decimal and repeated dots are thousands
// marks. Empty or unreadable input yields nil.
func ParseSalary(input string) *float64 {
	cleaned := nonMoney.ReplaceAllString(input, "")
	if cleaned == "" {
		return nil
	}

	if i := strings.LastIndex(cleaned, ","); i >= 0 {
		whole := stripSeparators(cleaned[:i])
		frac := stripSeparators(cleaned[i+1:])
		cleaned = whole + "." + frac
	} else if strings.Count(cleaned, ".") > 1 {
		cleaned = stripSeparators(cleaned)
	}

	if cleaned == "." {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstPresent(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return optional(v)
		}
	}
	return nil
}
