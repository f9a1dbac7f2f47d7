package models

import "time"

// Reference is an {id, name} pair used by the registration form selects
type Reference struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Role represents a row of the job_roles table
type Role struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	BaseSalary   *float64  `json:"base_salary,omitempty" db:"base_salary"`
	Level        *string   `json:"level,omitempty" db:"level"`
	DepartmentID *string   `json:"department_id,omitempty" db:"department_id"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Department represents a row of the departments table
type Department struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Manager     *string   `json:"manager,omitempty" db:"manager"`
	Location    *string   `json:"location,omitempty" db:"location"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SponsorType represents the political office of a sponsor
type SponsorType string

const (
	SponsorTypeMayor     SponsorType = "prefeito"
	SponsorTypeCouncilor SponsorType = "vereador"
	SponsorTypeSecretary SponsorType = "secretario"
)

// Sponsor represents a row of the political_sponsors table
type Sponsor struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Office    *string     `json:"office,omitempty" db:"office"`
	Type      SponsorType `json:"type" db:"type"`
	Party     *string     `json:"party,omitempty" db:"party"`
	Phone     *string     `json:"phone,omitempty" db:"phone"`
	Email     *string     `json:"email,omitempty" db:"email"`
	Active    bool        `json:"active" db:"active"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// Reference returns the {id, name} pair of the role
func (r Role) Reference() Reference { return Reference{ID: r.ID, Name: r.Name} }

// Reference returns the {id, name} pair of the department
func (d Department) Reference() Reference { return Reference{ID: d.ID, Name: d.Name} }

// Reference returns the {id, name} pair of the sponsor
func (s Sponsor) Reference() Reference { return Reference{ID: s.ID, Name: s.Name} }
