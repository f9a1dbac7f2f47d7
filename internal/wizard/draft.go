package wizard

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a field name is not part of the draft
var ErrUnknownField = errors.New("unknown draft field")

// Field names a draft field as sent by the registration form
type Field string

// Personal data
const (
	FieldFullName             Field = "full_name"
	FieldNationalID           Field = "national_id"
	FieldBirthDate            Field = "birth_date"
	FieldSex                  Field = "sex"
	FieldMaritalStatus        Field = "marital_status"
	FieldPhoto                Field = "photo"
	FieldAddress              Field = "address"
	FieldMobilePhone          Field = "mobile_phone"
	FieldLandlinePhone        Field = "landline_phone"
	FieldEmail                Field = "email"
	FieldEducationLevel       Field = "education_level"
	FieldSocialSecurityNumber Field = "social_security_number"
)

// Employment data
const (
	FieldContractType  Field = "contract_type"
	FieldRoleID        Field = "role_id"
	FieldDepartmentID  Field = "department_id"
	FieldWorkLocation  Field = "work_location"
	FieldWorkSchedule  Field = "work_schedule"
	FieldSalary        Field = "salary"
	FieldAdmissionDate Field = "admission_date"
)

// Sponsorship data
const (
	FieldSponsorID        Field = "sponsor_id"
	FieldSponsorshipDate  Field = "sponsorship_date"
	FieldSponsorshipNotes Field = "sponsorship_notes"
)

// Draft is an in-progress employee registration. Every value is kept as the
// raw form string (dates as YYYY-MM-DD) except the photo, which is either nil
// or an encoded image payload. The zero value is the empty form.
type Draft struct {
	FullName             string  `json:"full_name"`
	NationalID           string  `json:"national_id"`
	BirthDate            string  `json:"birth_date"`
	Sex                  string  `json:"sex"`
	MaritalStatus        string  `json:"marital_status"`
	Photo                *string `json:"photo"`
	Address              string  `json:"address"`
	MobilePhone          string  `json:"mobile_phone"`
	LandlinePhone        string  `json:"landline_phone"`
	Email                string  `json:"email"`
	EducationLevel       string  `json:"education_level"`
	SocialSecurityNumber string  `json:"social_security_number"`

	ContractType  string `json:"contract_type"`
	RoleID        string `json:"role_id"`
	DepartmentID  string `json:"department_id"`
	WorkLocation  string `json:"work_location"`
	WorkSchedule  string `json:"work_schedule"`
	Salary        string `json:"salary"`
	AdmissionDate string `json:"admission_date"`

	SponsorID        string `json:"sponsor_id"`
	SponsorshipDate  string `json:"sponsorship_date"`
	SponsorshipNotes string `json:"sponsorship_notes"`
}

// textFields resolves every string field of the draft by name.
// The photo is handled separately since it may be absent.
var textFields = map[Field]func(*Draft) *string{
	FieldFullName:             func(d *Draft) *string { return &d.FullName },
	FieldNationalID:           func(d *Draft) *string { return &d.NationalID },
	FieldBirthDate:            func(d *Draft) *string { return &d.BirthDate },
	FieldSex:                  func(d *Draft) *string { return &d.Sex },
	FieldMaritalStatus:        func(d *Draft) *string { return &d.MaritalStatus },
	FieldAddress:              func(d *Draft) *string { return &d.Address },
	FieldMobilePhone:          func(d *Draft) *string { return &d.MobilePhone },
	FieldLandlinePhone:        func(d *Draft) *string { return &d.LandlinePhone },
	FieldEmail:                func(d *Draft) *string { return &d.Email },
	FieldEducationLevel:       func(d *Draft) *string { return &d.EducationLevel },
	FieldSocialSecurityNumber: func(d *Draft) *string { return &d.SocialSecurityNumber },
	FieldContractType:         func(d *Draft) *string { return &d.ContractType },
	FieldRoleID:               func(d *Draft) *string { return &d.RoleID },
	FieldDepartmentID:         func(d *Draft) *string { return &d.DepartmentID },
	FieldWorkLocation:         func(d *Draft) *string { return &d.WorkLocation },
	FieldWorkSchedule:         func(d *Draft) *string { return &d.WorkSchedule },
	FieldSalary:               func(d *Draft) *string { return &d.Salary },
	FieldAdmissionDate:        func(d *Draft) *string { return &d.AdmissionDate },
	FieldSponsorID:            func(d *Draft) *string { return &d.SponsorID },
	FieldSponsorshipDate:      func(d *Draft) *string { return &d.SponsorshipDate },
	FieldSponsorshipNotes:     func(d *Draft) *string { return &d.SponsorshipNotes },
}

// KnownField reports whether name is a draft field
func KnownField(name Field) bool {
	if name == FieldPhoto {
		return true
	}
	_, ok := textFields[name]
	return ok
}

// set overwrites one field. A nil value clears it.
func (d *Draft) set(name Field, value *string) error {
	if name == FieldPhoto {
		if value == nil || *value == "" {
			d.Photo = nil
			return nil
		}
		photo := *value
		d.Photo = &photo
		return nil
	}

	ref, ok := textFields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if value == nil {
		*ref(d) = ""
		return nil
	}
	*ref(d) = *value
	return nil
}

// Value returns the current value of a field and whether the field exists.
// An absent photo reads as the empty string.
func (d Draft) Value(name Field) (string, bool) {
	if name == FieldPhoto {
		if d.Photo == nil {
			return "", true
		}
		return *d.Photo, true
	}
	ref, ok := textFields[name]
	if !ok {
		return "", false
	}
	return *ref(&d), true
}

// clone returns a copy that shares no memory with d
func (d Draft) clone() Draft {
	if d.Photo != nil {
		photo := *d.Photo
		d.Photo = &photo
	}
	return d
}
