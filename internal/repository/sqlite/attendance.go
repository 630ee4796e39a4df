package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

type attendanceRepository struct {
	s *Store
}

// GetByEmployeeAndDateRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, employee_id, company_id, date, clock_in, clock_out, status, created_at, updated_at
		FROM attendances
		WHERE employee_id = ? AND date BETWEEN ? AND ? AND status NOT IN (?, ?, ?)
		ORDER BY date, created_at`,
		employeeID, from.Format(dateLayout), to.Format(dateLayout),
		attendance.StatusRejected, attendance.StatusAbsent, attendance.StatusWaitingApproval,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by date range: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var a attendance.Attendance
		var date, createdAt, updatedAt string
		var clockIn, clockOut sql.NullString
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.CompanyID, &date, &clockIn, &clockOut, &a.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		var errs [5]error
		a.Date, errs[0] = parseDate(date)
		a.ClockIn, errs[1] = parseNullTimestamp(clockIn)
		a.ClockOut, errs[2] = parseNullTimestamp(clockOut)
		a.CreatedAt, errs[3] = parseTimestamp(createdAt)
		a.UpdatedAt, errs[4] = parseTimestamp(updatedAt)
		if err := firstErr(errs[:]...); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

type overtimeRepository struct {
	s *Store
}

// GetByEmployeeAndDateRange implements overtime.OvertimeRepository.
// The range is widened by a day on each side so requests near midnight in any
// timezone are returned. The aggregator filters by the period itself.
func (r *overtimeRepository) GetByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]overtime.OvertimeRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, employee_id, company_id, start_at, end_at, status, approved_by, approved_at, created_at, updated_at
		FROM overtime_requests
		WHERE employee_id = ? AND start_at >= ? AND start_at < ?
		ORDER BY start_at`,
		employeeID, from.AddDate(0, 0, -1).Format(dateLayout), to.AddDate(0, 0, 2).Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []overtime.OvertimeRequest
	for rows.Next() {
		var o overtime.OvertimeRequest
		var status, startAt, endAt, createdAt, updatedAt string
		var approvedBy, approvedAt sql.NullString
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.CompanyID, &startAt, &endAt, &status, &approvedBy, &approvedAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		o.Status = payroll.OvertimeStatus(status)
		if approvedBy.Valid {
			o.ApprovedBy = &approvedBy.String
		}
		var errs [5]error
		o.StartAt, errs[0] = parseTimestamp(startAt)
		o.EndAt, errs[1] = parseTimestamp(endAt)
		o.ApprovedAt, errs[2] = parseNullTimestamp(approvedAt)
		o.CreatedAt, errs[3] = parseTimestamp(createdAt)
		o.UpdatedAt, errs[4] = parseTimestamp(updatedAt)
		if err := firstErr(errs[:]...); err != nil {
			return nil, err
		}
		requests = append(requests, o)
	}
	return requests, rows.Err()
}
