package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, company_id, position_id, employee_code, full_name, hire_date, resignation_date,
	employment_type, employment_status, base_salary, hourly_rate, overtime_eligible,
	late_deductible, compensation_version, created_at, updated_at, deleted_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.PositionID, &emp.EmployeeCode, &emp.FullName,
		&emp.HireDate, &emp.ResignationDate, &emp.EmploymentType, &emp.EmploymentStatus,
		&emp.BaseSalary, &emp.HourlyRate, &emp.OvertimeEligible, &emp.LateDeductible,
		&emp.CompensationVersion, &emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if !validator.IsValidUUID(id) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	return emp, nil
}

// GetActiveByCompanyID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND employment_status = $2 AND deleted_at IS NULL
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, companyID, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// ApplyCompensationChange implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ApplyCompensationChange(ctx context.Context, change employee.CompensationChange) (employee.CompensationChange, error) {
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		tag, err := q.Exec(ctx, `
			UPDATE employees
			SET base_salary = $1, hourly_rate = $2, overtime_eligible = $3, late_deductible = $4,
				compensation_version = $5, updated_at = NOW()
			WHERE id = $6 AND company_id = $7 AND compensation_version = $8 AND deleted_at IS NULL
		`, change.BaseSalary, change.HourlyRate, change.OvertimeEligible, change.LateDeductible,
			change.ToVersion, change.EmployeeID, change.CompanyID, change.FromVersion)
		if err != nil {
			return fmt.Errorf("failed to update employee compensation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL)`,
				change.EmployeeID, change.CompanyID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check employee: %w", err)
			}
			if !exists {
				return employee.ErrEmployeeNotFound
			}
			return employee.ErrCompensationConflict
		}

		err = q.QueryRow(ctx, `
			INSERT INTO compensation_changes (
				id, employee_id, company_id, from_version, to_version, base_salary, hourly_rate,
				overtime_eligible, late_deductible, effective_date, reason, changed_by, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING created_at
		`, change.ID, change.EmployeeID, change.CompanyID, change.FromVersion, change.ToVersion,
			change.BaseSalary, change.HourlyRate, change.OvertimeEligible, change.LateDeductible,
			change.EffectiveDate, change.Reason, change.ChangedBy, change.CreatedAt).Scan(&change.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert compensation change: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.CompensationChange{}, err
	}
	return change, nil
}

// ListCompensationChanges implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListCompensationChanges(ctx context.Context, employeeID string, companyID string) ([]employee.CompensationChange, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, from_version, to_version, base_salary, hourly_rate,
			overtime_eligible, late_deductible, effective_date, reason, changed_by, created_at
		FROM compensation_changes
		WHERE employee_id = $1 AND company_id = $2
		ORDER BY to_version
	`

	rows, err := q.Query(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation changes: %w", err)
	}
	defer rows.Close()

	var changes []employee.CompensationChange
	for rows.Next() {
		var c employee.CompensationChange
		if err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.CompanyID, &c.FromVersion, &c.ToVersion, &c.BaseSalary, &c.HourlyRate,
			&c.OvertimeEligible, &c.LateDeductible, &c.EffectiveDate, &c.Reason, &c.ChangedBy, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compensation change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
