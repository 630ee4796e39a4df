package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// GetByEmployeeAndDateRange returns countable attendance rows with
	// date in [from, to], ordered by date. Rejected, absent and unapproved
	// rows are excluded.
	GetByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
}
