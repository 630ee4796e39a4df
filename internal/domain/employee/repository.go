package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	// ApplyCompensationChange stores the change event and updates the employee
	// only if its CompensationVersion still equals change.FromVersion.
	ApplyCompensationChange(ctx context.Context, change CompensationChange) (CompensationChange, error)
	ListCompensationChanges(ctx context.Context, employeeID string, companyID string) ([]CompensationChange, error)
}
