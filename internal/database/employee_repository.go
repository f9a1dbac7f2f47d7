package database

import (
	"context"
	"fmt"

	"github.com/cityhall/employee-registry/internal/models"
)

// EmployeeRepository handles database operations for the employees table
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// CreateEmployee inserts a new employee and fills its generated id and created_at
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	query := `
		INSERT INTO employees (
			full_name, national_id, birth_date, sex, marital_status, photo,
			address, phone, email, education_level, social_security_number,
			contract_type, job_role, department_id, work_location, work_schedule,
			salary, admission_date, sponsor_id, sponsorship_date, sponsorship_notes,
			status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		employee.FullName,
		employee.NationalID,
		employee.BirthDate,
		employee.Sex,
		employee.MaritalStatus,
		employee.Photo,
		employee.Address,
		employee.Phone,
		employee.Email,
		employee.EducationLevel,
		employee.SocialSecurityNumber,
		string(employee.ContractType),
		employee.JobRole,
		employee.DepartmentID,
		employee.WorkLocation,
		employee.WorkSchedule,
		employee.Salary,
		employee.AdmissionDate,
		employee.SponsorID,
		employee.SponsorshipDate,
		employee.SponsorshipNotes,
		string(employee.Status),
	).Scan(&employee.ID, &employee.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// ListEmployees returns every employee with its department name, newest first.
// The photo is left out; lists never render it.
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	query := `
		SELECT
			e.id, e.full_name, e.national_id, e.birth_date::text AS birth_date,
			e.sex, e.marital_status, e.address, e.phone, e.email,
			e.education_level, e.social_security_number, e.contract_type,
			e.job_role, e.department_id, d.name AS department_name,
			e.work_location, e.work_schedule, e.salary,
			e.admission_date::text AS admission_date, e.sponsor_id,
			e.sponsorship_date::text AS sponsorship_date, e.sponsorship_notes,
			e.status, e.created_at
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		ORDER BY e.created_at DESC
	`

	employees := []models.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return employees, nil
}
