package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RateTables resolves the rate table in force on a date
type RateTables interface {
	ForDate(date time.Time) (payroll.RateTable, error)
}

type Options struct {
	// Workers bounds how many employees ProcessPeriod computes at once
	Workers int
	// Location is the company timezone punches are interpreted in
	Location *time.Location
}

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	periodRepo     payroll.PayPeriodRepository
	employeeRepo   employee.EmployeeRepository
	positionRepo   position.PositionRepository
	attendanceRepo attendance.AttendanceRepository
	overtimeRepo   overtime.OvertimeRepository
	rateTables     RateTables
	logger         *zap.Logger
	workers        int
	loc            *time.Location
	now            func() time.Time
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	periodRepo payroll.PayPeriodRepository,
	employeeRepo employee.EmployeeRepository,
	positionRepo position.PositionRepository,
	attendanceRepo attendance.AttendanceRepository,
	overtimeRepo overtime.OvertimeRepository,
	rateTables RateTables,
	logger *zap.Logger,
	opts Options,
) *PayrollServiceImpl {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		periodRepo:     periodRepo,
		employeeRepo:   employeeRepo,
		positionRepo:   positionRepo,
		attendanceRepo: attendanceRepo,
		overtimeRepo:   overtimeRepo,
		rateTables:     rateTables,
		logger:         logger.Named("payroll"),
		workers:        opts.Workers,
		loc:            opts.Location,
		now:            time.Now,
	}
}

// companyScope returns the caller's company when the request carries a token.
// Background callers such as the cron job have none and see every company.
func companyScope(ctx context.Context) (string, bool) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return "", false
	}
	return claims.CompanyID, true
}

func (s *PayrollServiceImpl) loadPeriod(ctx context.Context, payPeriodID string) (payroll.PayPeriod, error) {
	period, err := s.periodRepo.GetPeriodByID(ctx, payPeriodID)
	if err != nil {
		return payroll.PayPeriod{}, err
	}
	if companyID, ok := companyScope(ctx); ok && companyID != period.CompanyID {
		return payroll.PayPeriod{}, payroll.ErrPayPeriodNotFound
	}
	if err := period.Validate(); err != nil {
		return payroll.PayPeriod{}, err
	}
	return period, nil
}

func (s *PayrollServiceImpl) engineFor(period payroll.PayPeriod) (*Engine, error) {
	table, err := s.rateTables.ForDate(period.EndDate)
	if err != nil {
		return nil, err
	}
	return NewEngine(table)
}

// ========== PROCESSING ==========

func (s *PayrollServiceImpl) ProcessOne(ctx context.Context, employeeID string, payPeriodID string) (payroll.EmployeeOutcome, error) {
	period, err := s.loadPeriod(ctx, payPeriodID)
	if err != nil {
		return payroll.EmployeeOutcome{EmployeeID: employeeID, Status: payroll.OutcomeFailed, Err: err}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			err = payroll.ErrEmployeeNotFound
		}
		return payroll.EmployeeOutcome{EmployeeID: employeeID, Status: payroll.OutcomeFailed, Err: err}, err
	}
	if emp.CompanyID != period.CompanyID {
		err = payroll.ErrEmployeeNotFound
		return payroll.EmployeeOutcome{EmployeeID: employeeID, Status: payroll.OutcomeFailed, Err: err}, err
	}

	outcome := s.processEmployee(ctx, emp, period, func() (*Engine, error) { return s.engineFor(period) })
	if outcome.Status == payroll.OutcomeFailed {
		return outcome, outcome.Err
	}
	return outcome, nil
}

func (s *PayrollServiceImpl) ProcessPeriod(ctx context.Context, payPeriodID string) (payroll.ProcessingResult, error) {
	period, err := s.loadPeriod(ctx, payPeriodID)
	if err != nil {
		return payroll.ProcessingResult{}, err
	}

	engine, err := s.engineFor(period)
	if err != nil {
		return payroll.ProcessingResult{}, err
	}

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, period.CompanyID)
	if err != nil {
		return payroll.ProcessingResult{}, fmt.Errorf("failed to get employees: %w", err)
	}

	started := s.now()
	outcomes := make([]payroll.EmployeeOutcome, len(employees))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, emp := range employees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = payroll.EmployeeOutcome{EmployeeID: emp.ID, Status: payroll.OutcomeFailed, Err: err}
				return nil
			}
			outcomes[i] = s.processEmployee(ctx, emp, period, func() (*Engine, error) { return engine, nil })
			return nil
		})
	}
	_ = g.Wait()

	result := payroll.ProcessingResult{PayPeriodID: period.ID}
	for _, o := range outcomes {
		result.Add(o)
	}

	s.logger.Info("Payroll period processed",
		zap.String("pay_period_id", period.ID),
		zap.String("company_id", period.CompanyID),
		zap.String("rate_table_version", engine.Version()),
		zap.Int("processed", result.ProcessedCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("flagged", result.FlaggedCount),
		zap.Duration("duration", s.now().Sub(started)),
	)

	return result, nil
}

// processEmployee never returns an error; every failure becomes a typed outcome.
// An existing record wins over eligibility and rate-table checks, so engineFn
// is only called once the pair is known to be unprocessed.
func (s *PayrollServiceImpl) processEmployee(ctx context.Context, emp employee.Employee, period payroll.PayPeriod, engineFn func() (*Engine, error)) payroll.EmployeeOutcome {
	log := s.logger.With(zap.String("employee_id", emp.ID), zap.String("pay_period_id", period.ID))

	fail := func(err error) payroll.EmployeeOutcome {
		log.Error("Payroll processing failed", zap.Error(err))
		return payroll.EmployeeOutcome{EmployeeID: emp.ID, Status: payroll.OutcomeFailed, Err: err}
	}

	_, err := s.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, period.ID)
	if err == nil {
		return payroll.EmployeeOutcome{EmployeeID: emp.ID, Status: payroll.OutcomeAlreadyProcessed}
	}
	if !errors.Is(err, payroll.ErrPayrollRecordNotFound) {
		return fail(fmt.Errorf("failed to check existing payroll record: %w", err))
	}

	if !emp.EmployedDuring(period.StartDate, period.EndDate) {
		return fail(fmt.Errorf("%w: not employed between %s and %s", payroll.ErrEmployeeNotEligible,
			period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02")))
	}

	engine, err := engineFn()
	if err != nil {
		return fail(err)
	}

	pos, err := s.positionRepo.GetByID(ctx, emp.PositionID)
	if err != nil {
		return fail(fmt.Errorf("failed to get position: %w", err))
	}

	profile, err := ResolveCompensation(emp, pos)
	if err != nil {
		return fail(err)
	}

	rows, err := s.attendanceRepo.GetByEmployeeAndDateRange(ctx, emp.ID, period.StartDate, period.EndDate)
	if err != nil {
		return fail(fmt.Errorf("failed to get attendance: %w", err))
	}
	requests, err := s.overtimeRepo.GetByEmployeeAndDateRange(ctx, emp.ID, period.StartDate, period.EndDate)
	if err != nil {
		return fail(fmt.Errorf("failed to get overtime: %w", err))
	}

	calc, err := engine.Calculate(profile, s.inLocation(attendance.ToAttendanceDays(rows)), s.intervalsInLocation(overtime.ToIntervals(requests)), period)
	if err != nil {
		return fail(err)
	}

	for _, a := range calc.Anomalies {
		log.Warn("Payroll anomaly", zap.String("type", string(a.Type)), zap.String("message", a.Message))
	}

	record := payroll.PayrollRecord{
		ID:                 uuid.NewString(),
		CompanyID:          period.CompanyID,
		Status:             payroll.RecordStatusDraft,
		PayrollCalculation: calc,
		CreatedAt:          s.now(),
	}
	flagged := calc.HasAnomaly(payroll.AnomalyNegativeNet)
	if flagged {
		record.Status = payroll.RecordStatusNeedsReview
	}

	res, err := s.payrollRepo.UpsertIfAbsent(ctx, record)
	if err != nil {
		return fail(fmt.Errorf("failed to persist payroll record: %w", err))
	}

	switch {
	case res == payroll.UpsertAlreadyPresent:
		return payroll.EmployeeOutcome{EmployeeID: emp.ID, Status: payroll.OutcomeAlreadyProcessed}
	case flagged:
		return payroll.EmployeeOutcome{EmployeeID: emp.ID, Status: payroll.OutcomeFlagged, Err: payroll.ErrNegativeNetSalary}
	default:
		return payroll.EmployeeOutcome{EmployeeID: emp.ID, Status: payroll.OutcomeInserted}
	}
}

func (s *PayrollServiceImpl) inLocation(days []payroll.AttendanceDay) []payroll.AttendanceDay {
	for i := range days {
		if days[i].TimeIn != nil {
			t := days[i].TimeIn.In(s.loc)
			days[i].TimeIn = &t
		}
		if days[i].TimeOut != nil {
			t := days[i].TimeOut.In(s.loc)
			days[i].TimeOut = &t
		}
	}
	return days
}

func (s *PayrollServiceImpl) intervalsInLocation(intervals []payroll.OvertimeInterval) []payroll.OvertimeInterval {
	for i := range intervals {
		intervals[i].Start = intervals[i].Start.In(s.loc)
		intervals[i].End = intervals[i].End.In(s.loc)
	}
	return intervals
}

// ========== PREVIEW ==========

func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.PreviewCalculationRequest) (payroll.PayrollCalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}

	profile, days, intervals, period := req.ToDomain()

	engine, err := s.engineFor(period)
	if err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}

	calc, err := engine.Calculate(profile, s.inLocation(days), s.intervalsInLocation(intervals), period)
	if err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}
	return payroll.NewCalculationResponse(calc), nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, employeeID string, payPeriodID string) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetByEmployeePeriod(ctx, employeeID, payPeriodID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if companyID, ok := companyScope(ctx); ok && companyID != record.CompanyID {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordNotFound
	}
	return payroll.NewRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, payPeriodID string) ([]payroll.PayrollRecordResponse, error) {
	if _, err := s.loadPeriod(ctx, payPeriodID); err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByPeriod(ctx, payPeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}

	responses := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, payroll.NewRecordResponse(r))
	}
	return responses, nil
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)
