package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrUnauthorized            = errors.New("unauthorized to access this employee")
	ErrCompensationConflict    = errors.New("compensation was changed by someone else, reload and retry")
	ErrInvalidCompensation     = errors.New("salary and hourly rate must be non-negative")
	ErrCompensationNotProvided = errors.New("either base salary or hourly rate is required")
)
