package payroll

import (
	"context"
	"time"
)

// PayrollRepository is the persistence sink for computed payroll.
// UpsertIfAbsent must be a conditional insert keyed on (employee, pay period)
// so concurrent calls for the same key never produce two rows.
type PayrollRepository interface {
	UpsertIfAbsent(ctx context.Context, record PayrollRecord) (UpsertResult, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, payPeriodID string) (PayrollRecord, error)
	ListByPeriod(ctx context.Context, payPeriodID string) ([]PayrollRecord, error)
}

// PayPeriodRepository provides pay period definitions
type PayPeriodRepository interface {
	GetPeriodByID(ctx context.Context, id string) (PayPeriod, error)
	// ListClosedUnprocessed returns periods that ended before asOf and still
	// have active employees without a payroll record.
	ListClosedUnprocessed(ctx context.Context, asOf time.Time) ([]PayPeriod, error)
}
