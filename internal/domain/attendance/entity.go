package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

type Attendance struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Statuses that never count as presence for payroll
const (
	StatusRejected        = "rejected"
	StatusAbsent          = "absent"
	StatusWaitingApproval = "waiting_approval"
)

// ToAttendanceDay converts a stored record into the payroll engine input
func (a Attendance) ToAttendanceDay() payroll.AttendanceDay {
	return payroll.AttendanceDay{
		Date:    a.Date,
		TimeIn:  a.ClockIn,
		TimeOut: a.ClockOut,
	}
}

// CountsAsPresence is false for records a manager rejected, marked absent or has not yet approved
func (a Attendance) CountsAsPresence() bool {
	switch a.Status {
	case StatusRejected, StatusAbsent, StatusWaitingApproval:
		return false
	}
	return true
}

// ToAttendanceDays converts the records that count as presence
func ToAttendanceDays(records []Attendance) []payroll.AttendanceDay {
	days := make([]payroll.AttendanceDay, 0, len(records))
	for _, r := range records {
		if !r.CountsAsPresence() {
			continue
		}
		days = append(days, r.ToAttendanceDay())
	}
	return days
}
