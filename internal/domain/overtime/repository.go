package overtime

import (
	"context"
	"time"
)

// OvertimeRepository returns overtime requests of any status whose start
// falls in [from, to]. Filtering by approval is the caller's job.
type OvertimeRepository interface {
	GetByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]OvertimeRequest, error)
}
