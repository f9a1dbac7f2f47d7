package models

import (
	"time"
)

// ContractType represents how an employee is bound to the municipality
type ContractType string

const (
	ContractTypeEffective    ContractType = "efetivo"
	ContractTypeCommissioned ContractType = "comissionado"
	ContractTypeTemporary    ContractType = "temporario"
)

// ContractTypes lists the accepted contract types in display order
var ContractTypes = []ContractType{
	ContractTypeEffective,
	ContractTypeCommissioned,
	ContractTypeTemporary,
}

// EmployeeStatus represents the employment status column
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "ativo"
	EmployeeStatusInactive EmployeeStatus = "inativo"
)

// RoleNotInformed is stored as job_role when the selected role id is unknown
const RoleNotInformed = "Não informado"

// Employee represents a row of the employees table
type Employee struct {
	ID                   string         `json:"id" db:"id"`
	FullName             string         `json:"full_name" db:"full_name"`
	NationalID           string         `json:"national_id" db:"national_id"`
	BirthDate            string         `json:"birth_date" db:"birth_date"`
	Sex                  *string        `json:"sex" db:"sex"`
	MaritalStatus        *string        `json:"marital_status" db:"marital_status"`
	Photo                *string        `json:"photo" db:"photo"`
	Address              *string        `json:"address" db:"address"`
	Phone                *string        `json:"phone" db:"phone"`
	Email                *string        `json:"email" db:"email"`
	EducationLevel       *string        `json:"education_level" db:"education_level"`
	SocialSecurityNumber *string        `json:"social_security_number" db:"social_security_number"`
	ContractType         ContractType   `json:"contract_type" db:"contract_type"`
	JobRole              string         `json:"job_role" db:"job_role"`
	DepartmentID         string         `json:"department_id" db:"department_id"`
	DepartmentName       *string        `json:"department_name,omitempty" db:"department_name"`
	WorkLocation         *string        `json:"work_location" db:"work_location"`
	WorkSchedule         *string        `json:"work_schedule" db:"work_schedule"`
	Salary               *float64       `json:"salary" db:"salary"`
	AdmissionDate        string         `json:"admission_date" db:"admission_date"`
	SponsorID            string         `json:"sponsor_id" db:"sponsor_id"`
	SponsorshipDate      *string        `json:"sponsorship_date" db:"sponsorship_date"`
	SponsorshipNotes     *string        `json:"sponsorship_notes" db:"sponsorship_notes"`
	Status               EmployeeStatus `json:"status" db:"status"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
}

// IsActive reports whether the employee is currently active
func (e *Employee) IsActive() bool {
	return e.Status == EmployeeStatusActive
}

// EmployeeFilter mirrors the filters available on the employee list screen
type EmployeeFilter struct {
	Search       string       `form:"search"`
	DepartmentID string       `form:"department_id"`
	ContractType ContractType `form:"contract_type"`
}

// EmployeeSummary holds the counters shown above the employee list
type EmployeeSummary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Temporary int `json:"temporary"`
}

// EmployeeList is the filtered employee list with its summary
type EmployeeList struct {
	Employees []Employee      `json:"employees"`
	Count     int             `json:"count"`
	Summary   EmployeeSummary `json:"summary"`
}
