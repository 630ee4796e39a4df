package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollRecordColumns = `
	pr.id, pr.company_id, pr.employee_id, pr.pay_period_id, pr.status,
	pr.basic_pay, pr.attendance_earnings, pr.overtime_pay, pr.gross_income,
	pr.statutory_deductions, pr.statutory_total, pr.taxable_income, pr.withholding_tax,
	pr.total_deductions, pr.net_salary, pr.worked_hours, pr.late_hours, pr.absent_days,
	pr.overtime_hours, pr.rate_table_version, pr.anomalies, pr.created_at,
	e.full_name, e.employee_code`

// UpsertIfAbsent implements payroll.PayrollRepository.
// The unique (employee_id, pay_period_id) constraint decides the race: the
// loser's insert is skipped and reported as already present.
func (r *payrollRepository) UpsertIfAbsent(ctx context.Context, record payroll.PayrollRecord) (payroll.UpsertResult, error) {
	q := GetQuerier(ctx, r.db)

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	deductionsJSON, err := json.Marshal(nonNilDeductions(record.StatutoryDeductions))
	if err != nil {
		return "", fmt.Errorf("failed to encode statutory deductions: %w", err)
	}
	anomaliesJSON, err := json.Marshal(nonNilAnomalies(record.Anomalies))
	if err != nil {
		return "", fmt.Errorf("failed to encode anomalies: %w", err)
	}

	query := `
		INSERT INTO payroll_records (
			id, company_id, employee_id, pay_period_id, status,
			basic_pay, attendance_earnings, overtime_pay, gross_income,
			statutory_deductions, statutory_total, taxable_income, withholding_tax,
			total_deductions, net_salary, worked_hours, late_hours, absent_days,
			overtime_hours, rate_table_version, anomalies
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (employee_id, pay_period_id) DO NOTHING
		RETURNING id
	`

	var id string
	err = q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.PayPeriodID, record.Status,
		record.BasicPay, record.AttendanceEarnings, record.OvertimePay, record.GrossIncome,
		deductionsJSON, record.StatutoryTotal, record.TaxableIncome, record.WithholdingTax,
		record.TotalDeductions, record.NetSalary, record.WorkedHours, record.LateHours, record.AbsentDays,
		record.OvertimeHours, record.RateTableVersion, anomaliesJSON,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.UpsertAlreadyPresent, nil
		}
		return "", fmt.Errorf("failed to insert payroll record: %w", err)
	}
	return payroll.UpsertInserted, nil
}

// GetByEmployeePeriod implements payroll.PayrollRepository.
func (r *payrollRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, payPeriodID string) (payroll.PayrollRecord, error) {
	if !validator.IsValidUUID(employeeID) || !validator.IsValidUUID(payPeriodID) {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.employee_id = $1 AND pr.pay_period_id = $2
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, payPeriodID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

// ListByPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) ListByPeriod(ctx context.Context, payPeriodID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.pay_period_id = $1
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, payPeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var deductionsBytes, anomaliesBytes []byte
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.PayPeriodID, &rec.Status,
		&rec.BasicPay, &rec.AttendanceEarnings, &rec.OvertimePay, &rec.GrossIncome,
		&deductionsBytes, &rec.StatutoryTotal, &rec.TaxableIncome, &rec.WithholdingTax,
		&rec.TotalDeductions, &rec.NetSalary, &rec.WorkedHours, &rec.LateHours, &rec.AbsentDays,
		&rec.OvertimeHours, &rec.RateTableVersion, &anomaliesBytes, &rec.CreatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if err := json.Unmarshal(deductionsBytes, &rec.StatutoryDeductions); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to decode statutory deductions: %w", err)
	}
	if err := json.Unmarshal(anomaliesBytes, &rec.Anomalies); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to decode anomalies: %w", err)
	}
	return rec, nil
}

func nonNilDeductions(items []payroll.DeductionItem) []payroll.DeductionItem {
	if items == nil {
		return []payroll.DeductionItem{}
	}
	return items
}

func nonNilAnomalies(items []payroll.Anomaly) []payroll.Anomaly {
	if items == nil {
		return []payroll.Anomaly{}
	}
	return items
}
