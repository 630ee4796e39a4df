package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/google/uuid"
)

type payPeriodRepository struct {
	s *Store
}

func scanPayPeriod(row rowScanner) (payroll.PayPeriod, error) {
	var p payroll.PayPeriod
	var start, end, createdAt string
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Label, &start, &end, &createdAt); err != nil {
		return payroll.PayPeriod{}, err
	}
	var errs [3]error
	p.StartDate, errs[0] = parseDate(start)
	p.EndDate, errs[1] = parseDate(end)
	p.CreatedAt, errs[2] = parseTimestamp(createdAt)
	if err := firstErr(errs[:]...); err != nil {
		return payroll.PayPeriod{}, err
	}
	return p, nil
}

// GetPeriodByID implements payroll.PayPeriodRepository.
func (r *payPeriodRepository) GetPeriodByID(ctx context.Context, id string) (payroll.PayPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.s.db.QueryRowContext(ctx, `
		SELECT id, company_id, label, start_date, end_date, created_at
		FROM pay_periods WHERE id = ?`, id)
	p, err := scanPayPeriod(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return payroll.PayPeriod{}, payroll.ErrPayPeriodNotFound
		}
		return payroll.PayPeriod{}, fmt.Errorf("failed to get pay period by id: %w", err)
	}
	return p, nil
}

// ListClosedUnprocessed implements payroll.PayPeriodRepository.
func (r *payPeriodRepository) ListClosedUnprocessed(ctx context.Context, asOf time.Time) ([]payroll.PayPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT pp.id, pp.company_id, pp.label, pp.start_date, pp.end_date, pp.created_at
		FROM pay_periods pp
		WHERE pp.end_date < ?
			AND EXISTS (
				SELECT 1 FROM employees e
				WHERE e.company_id = pp.company_id
					AND e.employment_status = ?
					AND e.deleted_at IS NULL
					AND e.hire_date <= pp.end_date
					AND (e.base_salary IS NOT NULL OR e.hourly_rate IS NOT NULL)
					AND NOT EXISTS (
						SELECT 1 FROM payroll_records pr
						WHERE pr.employee_id = e.id AND pr.pay_period_id = pp.id
					)
			)
		ORDER BY pp.end_date, pp.id`,
		asOf.Format(dateLayout), string(employee.EmploymentStatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed pay periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayPeriod
	for rows.Next() {
		p, err := scanPayPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pay period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

type payrollRepository struct {
	s *Store
}

const payrollRecordColumns = `
	pr.id, pr.company_id, pr.employee_id, pr.pay_period_id, pr.status,
	pr.basic_pay, pr.attendance_earnings, pr.overtime_pay, pr.gross_income,
	pr.statutory_deductions, pr.statutory_total, pr.taxable_income, pr.withholding_tax,
	pr.total_deductions, pr.net_salary, pr.worked_hours, pr.late_hours, pr.absent_days,
	pr.overtime_hours, pr.rate_table_version, pr.anomalies, pr.created_at,
	e.full_name, e.employee_code`

// UpsertIfAbsent implements payroll.PayrollRepository.
func (r *payrollRepository) UpsertIfAbsent(ctx context.Context, record payroll.PayrollRecord) (payroll.UpsertResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	deductions := record.StatutoryDeductions
	if deductions == nil {
		deductions = []payroll.DeductionItem{}
	}
	anomalies := record.Anomalies
	if anomalies == nil {
		anomalies = []payroll.Anomaly{}
	}
	deductionsJSON, err := json.Marshal(deductions)
	if err != nil {
		return "", fmt.Errorf("failed to encode statutory deductions: %w", err)
	}
	anomaliesJSON, err := json.Marshal(anomalies)
	if err != nil {
		return "", fmt.Errorf("failed to encode anomalies: %w", err)
	}

	res, err := r.s.db.ExecContext(ctx, `
		INSERT INTO payroll_records (
			id, company_id, employee_id, pay_period_id, status,
			basic_pay, attendance_earnings, overtime_pay, gross_income,
			statutory_deductions, statutory_total, taxable_income, withholding_tax,
			total_deductions, net_salary, worked_hours, late_hours, absent_days,
			overtime_hours, rate_table_version, anomalies, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, pay_period_id) DO NOTHING`,
		record.ID, record.CompanyID, record.EmployeeID, record.PayPeriodID, string(record.Status),
		record.BasicPay.StringFixed(2), record.AttendanceEarnings.StringFixed(2), record.OvertimePay.StringFixed(2), record.GrossIncome.StringFixed(2),
		string(deductionsJSON), record.StatutoryTotal.StringFixed(2), record.TaxableIncome.StringFixed(2), record.WithholdingTax.StringFixed(2),
		record.TotalDeductions.StringFixed(2), record.NetSalary.StringFixed(2), record.WorkedHours.StringFixed(2), record.LateHours.StringFixed(2), record.AbsentDays,
		record.OvertimeHours.StringFixed(2), record.RateTableVersion, string(anomaliesJSON), time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert payroll record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to insert payroll record: %w", err)
	}
	if affected == 0 {
		return payroll.UpsertAlreadyPresent, nil
	}
	return payroll.UpsertInserted, nil
}

// GetByEmployeePeriod implements payroll.PayrollRepository.
func (r *payrollRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, payPeriodID string) (payroll.PayrollRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.s.db.QueryRowContext(ctx, `SELECT`+payrollRecordColumns+`
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.employee_id = ? AND pr.pay_period_id = ?`,
		employeeID, payPeriodID,
	)
	rec, err := scanPayrollRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

// ListByPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) ListByPeriod(ctx context.Context, payPeriodID string) ([]payroll.PayrollRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `SELECT`+payrollRecordColumns+`
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.pay_period_id = ?
		ORDER BY e.employee_code`,
		payPeriodID,
	)
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

func scanPayrollRecord(row rowScanner) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var basicPay, attendanceEarnings, overtimePay, grossIncome, statutoryTotal string
	var taxableIncome, withholdingTax, totalDeductions, netSalary string
	var workedHours, lateHours, overtimeHours, createdAt string
	var deductionsJSON, anomaliesJSON string
	var name, code string

	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.PayPeriodID, &rec.Status,
		&basicPay, &attendanceEarnings, &overtimePay, &grossIncome,
		&deductionsJSON, &statutoryTotal, &taxableIncome, &withholdingTax,
		&totalDeductions, &netSalary, &workedHours, &lateHours, &rec.AbsentDays,
		&overtimeHours, &rec.RateTableVersion, &anomaliesJSON, &createdAt,
		&name, &code,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	rec.EmployeeName = &name
	rec.EmployeeCode = &code

	var errs [15]error
	rec.BasicPay, errs[0] = parseDecimal(basicPay)
	rec.AttendanceEarnings, errs[1] = parseDecimal(attendanceEarnings)
	rec.OvertimePay, errs[2] = parseDecimal(overtimePay)
	rec.GrossIncome, errs[3] = parseDecimal(grossIncome)
	rec.StatutoryTotal, errs[4] = parseDecimal(statutoryTotal)
	rec.TaxableIncome, errs[5] = parseDecimal(taxableIncome)
	rec.WithholdingTax, errs[6] = parseDecimal(withholdingTax)
	rec.TotalDeductions, errs[7] = parseDecimal(totalDeductions)
	rec.NetSalary, errs[8] = parseDecimal(netSalary)
	rec.WorkedHours, errs[9] = parseDecimal(workedHours)
	rec.LateHours, errs[10] = parseDecimal(lateHours)
	rec.OvertimeHours, errs[11] = parseDecimal(overtimeHours)
	rec.CreatedAt, errs[12] = parseTimestamp(createdAt)
	errs[13] = json.Unmarshal([]byte(deductionsJSON), &rec.StatutoryDeductions)
	errs[14] = json.Unmarshal([]byte(anomaliesJSON), &rec.Anomalies)
	if err := firstErr(errs[:]...); err != nil {
		return payroll.PayrollRecord{}, err
	}
	return rec, nil
}
