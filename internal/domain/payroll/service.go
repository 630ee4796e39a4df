package payroll

import "context"

type PayrollService interface {
	// ProcessOne computes and persists payroll for one employee. A pair that
	// is already persisted is reported as already processed, not recomputed.
	ProcessOne(ctx context.Context, employeeID string, payPeriodID string) (EmployeeOutcome, error)

	// ProcessPeriod runs ProcessOne for every active employee of the period's
	// company. Per-employee failures are recorded, never returned.
	ProcessPeriod(ctx context.Context, payPeriodID string) (ProcessingResult, error)

	// Preview runs the engine on caller-supplied data without persisting.
	Preview(ctx context.Context, req PreviewCalculationRequest) (PayrollCalculationResponse, error)

	GetRecord(ctx context.Context, employeeID string, payPeriodID string) (PayrollRecordResponse, error)
	ListRecords(ctx context.Context, payPeriodID string) ([]PayrollRecordResponse, error)
}
