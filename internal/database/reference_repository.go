package database

import (
	"context"
	"fmt"

	"github.com/cityhall/employee-registry/internal/models"
)

// ReferenceRepository reads the lookup tables behind the registration selects:
// job_roles, departments and political_sponsors
type ReferenceRepository struct {
	db DB
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListRoles returns the active job roles ordered by name
func (r *ReferenceRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	query := `
		SELECT id, name, description, base_salary, level, department_id, active, created_at
		FROM job_roles
		WHERE active = true
		ORDER BY name
	`

	roles := []models.Role{}
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// ListDepartments returns the active departments ordered by name
func (r *ReferenceRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	query := `
		SELECT id, name, description, manager, location, active, created_at
		FROM departments
		WHERE active = true
		ORDER BY name
	`

	departments := []models.Department{}
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

// ListSponsors returns the active political sponsors ordered by name
func (r *ReferenceRepository) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	query := `
		SELECT id, name, office, type, party, phone, email, active, created_at
		FROM political_sponsors
		WHERE active = true
		ORDER BY name
	`

	sponsors := []models.Sponsor{}
	if err := r.db.SelectContext(ctx, &sponsors, query); err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	return sponsors, nil
}
