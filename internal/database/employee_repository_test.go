package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cityhall/employee-registry/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func strPtr(s string) *string { return &s }

func TestCreateEmployee(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEmployeeRepository(db)

	newEmployee := func() *models.Employee {
		salary := 1234.56
		return &models.Employee{
			FullName:      "João Silva Santos",
			NationalID:    "123.456.789-00",
			BirthDate:     "1990-05-12",
			Phone:         strPtr("11999990000"),
			ContractType:  models.ContractTypeEffective,
			JobRole:       "Assistente Administrativo",
			DepartmentID:  "2f1c6e0e-8f7e-4c57-9d38-0d6f5a9b8a11",
			Salary:        &salary,
			AdmissionDate: "2026-03-09",
			SponsorID:     "a3c1f0d2-0b7e-4d4c-8e55-77e7f1f0c001",
			Status:        models.EmployeeStatusActive,
		}
	}

	t.Run("Success", func(t *testing.T) {
		employeeID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO employees`).
			WithArgs(
				"João Silva Santos", "123.456.789-00", "1990-05-12",
				nil, nil, nil, nil, "11999990000", nil, nil, nil,
				"efetivo", "Assistente Administrativo", "2f1c6e0e-8f7e-4c57-9d38-0d6f5a9b8a11",
				nil, nil, 1234.56, "2026-03-09", "a3c1f0d2-0b7e-4d4c-8e55-77e7f1f0c001",
				nil, nil, "ativo",
			).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(employeeID, now))

		employee := newEmployee()
		err := repo.CreateEmployee(context.Background(), employee)
		require.NoError(t, err)
		assert.Equal(t, employeeID, employee.ID)
		assert.Equal(t, now, employee.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO employees`).
			WillReturnError(fmt.Errorf("violates foreign key constraint"))

		employee := newEmployee()
		err := repo.CreateEmployee(context.Background(), employee)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create employee")
		assert.Empty(t, employee.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListEmployees(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEmployeeRepository(db)

	columns := []string{
		"id", "full_name", "national_id", "birth_date", "sex", "marital_status",
		"address", "phone", "email", "education_level", "social_security_number",
		"contract_type", "job_role", "department_id", "department_name",
		"work_location", "work_schedule", "salary", "admission_date", "sponsor_id",
		"sponsorship_date", "sponsorship_notes", "status", "created_at",
	}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM employees e LEFT JOIN departments`).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(
					"e-1", "Maria Oliveira Costa", "987.654.321-00", "1988-02-01", "F", nil,
					nil, "11988887777", nil, "superior", nil,
					"comissionado", "Enfermeira", "d-2", "Saúde",
					nil, nil, 4500.0, "2024-02-01", "s-1",
					nil, nil, "ativo", now,
				).
				AddRow(
					"e-2", "Pedro Santos Lima", "456.789.123-00", "1979-11-30", nil, nil,
					nil, nil, nil, nil, nil,
					"temporario", "Professor", "d-3", nil,
					nil, nil, nil, "2023-08-15", "s-2",
					nil, nil, "inativo", now,
				))

		employees, err := repo.ListEmployees(context.Background())
		require.NoError(t, err)
		require.Len(t, employees, 2)

		assert.Equal(t, "Maria Oliveira Costa", employees[0].FullName)
		require.NotNil(t, employees[0].DepartmentName)
		assert.Equal(t, "Saúde", *employees[0].DepartmentName)
		require.NotNil(t, employees[0].Salary)
		assert.Equal(t, 4500.0, *employees[0].Salary)
		assert.True(t, employees[0].IsActive())

		assert.Nil(t, employees[1].DepartmentName)
		assert.Nil(t, employees[1].Salary)
		assert.Equal(t, models.ContractTypeTemporary, employees[1].ContractType)
		assert.False(t, employees[1].IsActive())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM employees`).
			WillReturnError(fmt.Errorf("connection refused"))

		employees, err := repo.ListEmployees(context.Background())
		assert.Error(t, err)
		assert.Nil(t, employees)
		assert.Contains(t, err.Error(), "failed to list employees")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
