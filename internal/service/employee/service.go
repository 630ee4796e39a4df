package employee

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, logger *zap.Logger) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		logger:       logger.Named("employee"),
		now:          time.Now,
	}
}

func mapChangeToResponse(c employee.CompensationChange) employee.CompensationChangeResponse {
	return employee.CompensationChangeResponse{
		ID:               c.ID,
		EmployeeID:       c.EmployeeID,
		FromVersion:      c.FromVersion,
		ToVersion:        c.ToVersion,
		BaseSalary:       c.BaseSalary,
		HourlyRate:       c.HourlyRate,
		OvertimeEligible: c.OvertimeEligible,
		LateDeductible:   c.LateDeductible,
		EffectiveDate:    c.EffectiveDate.Format("2006-01-02"),
		Reason:           c.Reason,
		ChangedBy:        c.ChangedBy,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
}

// ChangeCompensation records a versioned compensation event. The write only
// succeeds if nobody changed the employee since ExpectedVersion was read.
func (s *EmployeeServiceImpl) ChangeCompensation(ctx context.Context, req employee.ChangeCompensationRequest) (employee.CompensationChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.CompensationChangeResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return employee.CompensationChangeResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return employee.CompensationChangeResponse{}, err
	}
	if emp.CompanyID != claims.CompanyID {
		return employee.CompensationChangeResponse{}, employee.ErrEmployeeNotFound
	}
	if emp.CompensationVersion != req.ExpectedVersion {
		return employee.CompensationChangeResponse{}, employee.ErrCompensationConflict
	}

	effective, _ := time.Parse("2006-01-02", req.EffectiveDate)
	change := employee.CompensationChange{
		ID:               uuid.NewString(),
		EmployeeID:       emp.ID,
		CompanyID:        emp.CompanyID,
		FromVersion:      req.ExpectedVersion,
		ToVersion:        req.ExpectedVersion + 1,
		BaseSalary:       req.BaseSalary,
		HourlyRate:       req.HourlyRate,
		OvertimeEligible: req.OvertimeEligible,
		LateDeductible:   req.LateDeductible,
		EffectiveDate:    effective,
		Reason:           req.Reason,
		ChangedBy:        claims.UserID,
		CreatedAt:        s.now(),
	}

	applied, err := s.employeeRepo.ApplyCompensationChange(ctx, change)
	if err != nil {
		return employee.CompensationChangeResponse{}, err
	}

	s.logger.Info("Compensation changed",
		zap.String("employee_id", applied.EmployeeID),
		zap.String("changed_by", applied.ChangedBy),
		zap.Int("version", applied.ToVersion))

	return mapChangeToResponse(applied), nil
}

func (s *EmployeeServiceImpl) ListCompensationChanges(ctx context.Context, employeeID string) ([]employee.CompensationChangeResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	changes, err := s.employeeRepo.ListCompensationChanges(ctx, employeeID, claims.CompanyID)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.CompensationChangeResponse, 0, len(changes))
	for _, c := range changes {
		responses = append(responses, mapChangeToResponse(c))
	}
	return responses, nil
}
