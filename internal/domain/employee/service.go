package employee

import "context"

type EmployeeService interface {
	ChangeCompensation(ctx context.Context, req ChangeCompensationRequest) (CompensationChangeResponse, error)
	ListCompensationChanges(ctx context.Context, employeeID string) ([]CompensationChangeResponse, error)
}
