package services

import (
	"context"
	"strings"

	"github.com/cityhall/employee-registry/internal/models"
)

// ReferenceService serves the role, department and sponsor lists
type ReferenceService struct {
	references ReferenceSource
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(references ReferenceSource) *ReferenceService {
	return &ReferenceService{references: references}
}

// Roles returns the active roles whose name or description contains search
func (s *ReferenceService) Roles(ctx context.Context, search string) ([]models.Role, error) {
	roles, err := s.references.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	return filterBy(roles, search, func(r models.Role) []string {
		return []string{r.Name, deref(r.Description)}
	}), nil
}

// Departments returns the active departments whose name or description contains search
func (s *ReferenceService) Departments(ctx context.Context, search string) ([]models.Department, error) {
	departments, err := s.references.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	return filterBy(departments, search, func(d models.Department) []string {
		return []string{d.Name, deref(d.Description)}
	}), nil
}

// Sponsors returns the active sponsors whose name or office contains search
func (s *ReferenceService) Sponsors(ctx context.Context, search string) ([]models.Sponsor, error) {
	sponsors, err := s.references.ListSponsors(ctx)
	if err != nil {
		return nil, err
	}
	return filterBy(sponsors, search, func(sp models.Sponsor) []string {
		return []string{sp.Name, deref(sp.Office)}
	}), nil
}

// filterBy keeps the items where any of the texts contains search, ignoring case
func filterBy[T any](items []T, search string, texts func(T) []string) []T {
	if search == "" {
		return items
	}
	needle := strings.ToLower(search)

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, text := range texts(item) {
			if strings.Contains(strings.ToLower(text), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
