package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cityhall/employee-registry/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// EmployeeLister reads the employee table
type EmployeeLister interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
}

// EmployeeService handles the employee list screen
type EmployeeService struct {
	employees EmployeeLister
	logger    *logrus.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employees EmployeeLister, logger *logrus.Logger) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		logger:    logger,
	}
}

// List returns the employees matching filter. The summary always counts the
// whole table so the counters do not move while the operator filters.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) (*models.EmployeeList, error) {
	all, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Employee, 0, len(all))
	for _, e := range all {
		if matchesEmployee(e, filter) {
			filtered = append(filtered, e)
		}
	}

	return &models.EmployeeList{
		Employees: filtered,
		Count:     len(filtered),
		Summary:   summarize(all),
	}, nil
}

// matchesEmployee applies the list screen filters: search on name
// (case-insensitive) or national ID, then department and contract type
func matchesEmployee(e models.Employee, filter models.EmployeeFilter) bool {
	if filter.Search != "" {
		byName := strings.Contains(strings.ToLower(e.FullName), strings.ToLower(filter.Search))
		byNationalID := strings.Contains(e.NationalID, filter.Search)
		if !byName && !byNationalID {
			return false
		}
	}
	if filter.DepartmentID != "" && e.DepartmentID != filter.DepartmentID {
		return false
	}
	if filter.ContractType != "" && e.ContractType != filter.ContractType {
		return false
	}
	return true
}

func summarize(employees []models.Employee) models.EmployeeSummary {
	summary := models.EmployeeSummary{Total: len(employees)}
	for _, e := range employees {
		if e.IsActive() {
			summary.Active++
		} else {
			summary.Inactive++
		}
		if e.ContractType == models.ContractTypeTemporary {
			summary.Temporary++
		}
	}
	return summary
}

const exportSheet = "Funcionários"

var exportHeader = []interface{}{
	"Nome", "CPF", "Cargo", "Setor", "Tipo de Contrato", "Admissão", "Telefone", "E-mail", "Salário", "Status",
}

var contractTypeLabels = map[models.ContractType]string{
	models.ContractTypeEffective:    "Efetivo",
	models.ContractTypeCommissioned: "Comissionado",
	models.ContractTypeTemporary:    "Temporário",
}

// Export writes the filtered employee list as an xlsx workbook to w
func (s *EmployeeService) Export(ctx context.Context, filter models.EmployeeFilter, w io.Writer) error {
	list, err := s.List(ctx, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close export workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to prepare export sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for i, e := range list.Employees {
		row := []interface{}{
			e.FullName,
			e.NationalID,
			e.JobRole,
			deref(e.DepartmentName),
			contractTypeLabel(e.ContractType),
			e.AdmissionDate,
			deref(e.Phone),
			deref(e.Email),
			salaryCell(e.Salary),
			statusLabel(e.Status),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	s.logger.WithField("rows", len(list.Employees)).Info("Employee list exported")
	return nil
}

func contractTypeLabel(t models.ContractType) string {
	if label, ok := contractTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func statusLabel(status models.EmployeeStatus) string {
	if status == models.EmployeeStatusActive {
		return "Ativo"
	}
	return "Inativo"
}

func salaryCell(salary *float64) interface{} {
	if salary == nil {
		return ""
	}
	return *salary
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
