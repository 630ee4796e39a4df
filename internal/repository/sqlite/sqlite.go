/*
Package sqlite is a single-file store for running payroll without PostgreSQL.

It implements the same repository interfaces as the postgresql package. The
payroll_records table carries the same UNIQUE (employee_id, pay_period_id)
constraint, and UpsertIfAbsent inserts with ON CONFLICT DO NOTHING so a second
write for a key is skipped instead of duplicated.

Dates are stored as TEXT in 2006-01-02 form, timestamps as fixed-width UTC and
money as decimal strings, so lexical order matches chronological order.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store holds the connection shared by every repository of this package.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the database at dbPath and applies the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		pay_category TEXT NOT NULL CHECK (pay_category IN ('hourly', 'salaried')),
		overtime_multiplier TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		position_id TEXT NOT NULL REFERENCES positions(id),
		employee_code TEXT NOT NULL,
		full_name TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		resignation_date TEXT,
		employment_type TEXT NOT NULL,
		employment_status TEXT NOT NULL DEFAULT 'active',
		base_salary TEXT,
		hourly_rate TEXT,
		overtime_eligible INTEGER NOT NULL DEFAULT 0,
		late_deductible INTEGER NOT NULL DEFAULT 0,
		compensation_version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		deleted_at TEXT,
		UNIQUE (company_id, employee_code)
	);

	CREATE TABLE IF NOT EXISTS compensation_changes (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		company_id TEXT NOT NULL,
		from_version INTEGER NOT NULL,
		to_version INTEGER NOT NULL,
		base_salary TEXT,
		hourly_rate TEXT,
		overtime_eligible INTEGER NOT NULL,
		late_deductible INTEGER NOT NULL,
		effective_date TEXT NOT NULL,
		reason TEXT NOT NULL,
		changed_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (employee_id, to_version)
	);

	CREATE TABLE IF NOT EXISTS attendances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		company_id TEXT NOT NULL,
		date TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attendances_employee_date ON attendances(employee_id, date);

	CREATE TABLE IF NOT EXISTS overtime_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		company_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
		approved_by TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_overtime_employee_start ON overtime_requests(employee_id, start_at);

	CREATE TABLE IF NOT EXISTS pay_periods (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		label TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL CHECK (end_date >= start_date),
		created_at TEXT NOT NULL,
		UNIQUE (company_id, label)
	);

	CREATE TABLE IF NOT EXISTS payroll_records (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		pay_period_id TEXT NOT NULL REFERENCES pay_periods(id),
		status TEXT NOT NULL,
		basic_pay TEXT NOT NULL,
		attendance_earnings TEXT NOT NULL,
		overtime_pay TEXT NOT NULL,
		gross_income TEXT NOT NULL,
		statutory_deductions TEXT NOT NULL DEFAULT '[]',
		statutory_total TEXT NOT NULL,
		taxable_income TEXT NOT NULL,
		withholding_tax TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		worked_hours TEXT NOT NULL,
		late_hours TEXT NOT NULL,
		absent_days INTEGER NOT NULL,
		overtime_hours TEXT NOT NULL,
		rate_table_version TEXT NOT NULL,
		anomalies TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		UNIQUE (employee_id, pay_period_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Employees returns the employee repository backed by this store.
func (s *Store) Employees() employee.EmployeeRepository { return &employeeRepository{s} }

// Positions returns the position repository backed by this store.
func (s *Store) Positions() position.PositionRepository { return &positionRepository{s} }

// Attendances returns the attendance repository backed by this store.
func (s *Store) Attendances() attendance.AttendanceRepository { return &attendanceRepository{s} }

// Overtime returns the overtime repository backed by this store.
func (s *Store) Overtime() overtime.OvertimeRepository { return &overtimeRepository{s} }

// PayPeriods returns the pay period repository backed by this store.
func (s *Store) PayPeriods() payroll.PayPeriodRepository { return &payPeriodRepository{s} }

// Payroll returns the payroll record repository backed by this store.
func (s *Store) Payroll() payroll.PayrollRepository { return &payrollRepository{s} }

// ========== SEEDING ==========

// SavePosition inserts or replaces a position.
func (s *Store) SavePosition(ctx context.Context, p position.Position) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(timestampLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO positions (id, company_id, name, pay_category, overtime_multiplier, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Name, string(p.PayCategory), p.OvertimeMultiplier.String(), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// SaveEmployee inserts or replaces an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(timestampLayout)
	status := emp.EmploymentStatus
	if status == "" {
		status = employee.EmploymentStatusActive
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO employees (
			id, company_id, position_id, employee_code, full_name, hire_date, resignation_date,
			employment_type, employment_status, base_salary, hourly_rate, overtime_eligible,
			late_deductible, compensation_version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		emp.ID, emp.CompanyID, emp.PositionID, emp.EmployeeCode, emp.FullName,
		emp.HireDate.Format(dateLayout), formatDatePtr(emp.ResignationDate),
		string(emp.EmploymentType), string(status), decimalString(emp.BaseSalary), decimalString(emp.HourlyRate),
		emp.OvertimeEligible, emp.LateDeductible, emp.CompensationVersion, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// SaveAttendance inserts or replaces an attendance row.
func (s *Store) SaveAttendance(ctx context.Context, a attendance.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(timestampLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO attendances (id, employee_id, company_id, date, clock_in, clock_out, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.CompanyID, a.Date.Format(dateLayout),
		formatTimestampPtr(a.ClockIn), formatTimestampPtr(a.ClockOut), a.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

// SaveOvertime inserts or replaces an overtime request.
func (s *Store) SaveOvertime(ctx context.Context, o overtime.OvertimeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(timestampLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO overtime_requests (id, employee_id, company_id, start_at, end_at, status, approved_by, approved_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.EmployeeID, o.CompanyID, o.StartAt.UTC().Format(timestampLayout), o.EndAt.UTC().Format(timestampLayout),
		string(o.Status), o.ApprovedBy, formatTimestampPtr(o.ApprovedAt), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save overtime request: %w", err)
	}
	return nil
}

// SavePayPeriod inserts or replaces a pay period.
func (s *Store) SavePayPeriod(ctx context.Context, p payroll.PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO pay_periods (id, company_id, label, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Label, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout),
		time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save pay period: %w", err)
	}
	return nil
}
