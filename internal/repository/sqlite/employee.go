package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
)

type employeeRepository struct {
	s *Store
}

const employeeColumns = `
	id, company_id, position_id, employee_code, full_name, hire_date, resignation_date,
	employment_type, employment_status, base_salary, hourly_rate, overtime_eligible,
	late_deductible, compensation_version, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var emp employee.Employee
	var hireDate, createdAt, updatedAt string
	var resignationDate, baseSalary, hourlyRate, deletedAt sql.NullString

	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.PositionID, &emp.EmployeeCode, &emp.FullName,
		&hireDate, &resignationDate, &emp.EmploymentType, &emp.EmploymentStatus,
		&baseSalary, &hourlyRate, &emp.OvertimeEligible, &emp.LateDeductible,
		&emp.CompensationVersion, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}

	var errs [7]error
	emp.HireDate, errs[0] = parseDate(hireDate)
	emp.ResignationDate, errs[1] = parseNullDate(resignationDate)
	emp.BaseSalary, errs[2] = parseNullDecimal(baseSalary)
	emp.HourlyRate, errs[3] = parseNullDecimal(hourlyRate)
	emp.CreatedAt, errs[4] = parseTimestamp(createdAt)
	emp.UpdatedAt, errs[5] = parseTimestamp(updatedAt)
	emp.DeletedAt, errs[6] = parseNullTimestamp(deletedAt)
	if err := firstErr(errs[:]...); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.s.db.QueryRowContext(ctx, `SELECT`+employeeColumns+` FROM employees WHERE id = ? AND deleted_at IS NULL`, id)
	emp, err := scanEmployee(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	return emp, nil
}

// GetActiveByCompanyID implements employee.EmployeeRepository.
func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `SELECT`+employeeColumns+`
		FROM employees
		WHERE company_id = ? AND employment_status = ? AND deleted_at IS NULL
		ORDER BY employee_code`,
		companyID, string(employee.EmploymentStatusActive),
	)
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
func (r *employeeRepository) ApplyCompensationChange(ctx context.Context, change employee.CompensationChange) (employee.CompensationChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return employee.CompensationChange{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE employees
		SET base_salary = ?, hourly_rate = ?, overtime_eligible = ?, late_deductible = ?,
			compensation_version = ?, updated_at = ?
		WHERE id = ? AND company_id = ? AND compensation_version = ? AND deleted_at IS NULL`,
		decimalString(change.BaseSalary), decimalString(change.HourlyRate), change.OvertimeEligible, change.LateDeductible,
		change.ToVersion, now.Format(timestampLayout), change.EmployeeID, change.CompanyID, change.FromVersion,
	)
	if err != nil {
		return employee.CompensationChange{}, fmt.Errorf("failed to update employee compensation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return employee.CompensationChange{}, fmt.Errorf("failed to update employee compensation: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = ? AND company_id = ? AND deleted_at IS NULL)`,
			change.EmployeeID, change.CompanyID).Scan(&exists); err != nil {
			return employee.CompensationChange{}, fmt.Errorf("failed to check employee: %w", err)
		}
		if !exists {
			return employee.CompensationChange{}, employee.ErrEmployeeNotFound
		}
		return employee.CompensationChange{}, employee.ErrCompensationConflict
	}

	if change.CreatedAt.IsZero() {
		change.CreatedAt = now
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO compensation_changes (
			id, employee_id, company_id, from_version, to_version, base_salary, hourly_rate,
			overtime_eligible, late_deductible, effective_date, reason, changed_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		change.ID, change.EmployeeID, change.CompanyID, change.FromVersion, change.ToVersion,
		decimalString(change.BaseSalary), decimalString(change.HourlyRate), change.OvertimeEligible, change.LateDeductible,
		change.EffectiveDate.Format(dateLayout), change.Reason, change.ChangedBy, change.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return employee.CompensationChange{}, fmt.Errorf("failed to insert compensation change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return employee.CompensationChange{}, fmt.Errorf("commit transaction: %w", err)
	}
	return change, nil
}

// ListCompensationChanges implements employee.EmployeeRepository.
func (r *employeeRepository) ListCompensationChanges(ctx context.Context, employeeID string, companyID string) ([]employee.CompensationChange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, employee_id, company_id, from_version, to_version, base_salary, hourly_rate,
			overtime_eligible, late_deductible, effective_date, reason, changed_by, created_at
		FROM compensation_changes
		WHERE employee_id = ? AND company_id = ?
		ORDER BY to_version`,
		employeeID, companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation changes: %w", err)
	}
	defer rows.Close()

	var changes []employee.CompensationChange
	for rows.Next() {
		var c employee.CompensationChange
		var baseSalary, hourlyRate sql.NullString
		var effectiveDate, createdAt string
		if err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.CompanyID, &c.FromVersion, &c.ToVersion, &baseSalary, &hourlyRate,
			&c.OvertimeEligible, &c.LateDeductible, &effectiveDate, &c.Reason, &c.ChangedBy, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compensation change: %w", err)
		}
		var errs [4]error
		c.BaseSalary, errs[0] = parseNullDecimal(baseSalary)
		c.HourlyRate, errs[1] = parseNullDecimal(hourlyRate)
		c.EffectiveDate, errs[2] = parseDate(effectiveDate)
		c.CreatedAt, errs[3] = parseTimestamp(createdAt)
		if err := firstErr(errs[:]...); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
