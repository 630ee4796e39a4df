package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

// OvertimeRequest - An overtime block submitted by an employee
type OvertimeRequest struct {
	ID         string
	EmployeeID string
	CompanyID  string
	StartAt    time.Time
	EndAt      time.Time
	Status     payroll.OvertimeStatus
	ApprovedBy *string
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (o OvertimeRequest) ToInterval() payroll.OvertimeInterval {
	return payroll.OvertimeInterval{
		ID:     o.ID,
		Start:  o.StartAt,
		End:    o.EndAt,
		Status: o.Status,
	}
}

func ToIntervals(requests []OvertimeRequest) []payroll.OvertimeInterval {
	intervals := make([]payroll.OvertimeInterval, 0, len(requests))
	for _, r := range requests {
		intervals = append(intervals, r.ToInterval())
	}
	return intervals
}
