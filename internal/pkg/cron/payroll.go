package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"go.uber.org/zap"
)

type PayrollJobs struct {
	periodRepo payroll.PayPeriodRepository
	payrollSvc payroll.PayrollService
	logger     *zap.Logger
	now        func() time.Time
}

func NewPayrollJobs(periodRepo payroll.PayPeriodRepository, payrollSvc payroll.PayrollService, logger *zap.Logger) *PayrollJobs {
	return &PayrollJobs{
		periodRepo: periodRepo,
		payrollSvc: payrollSvc,
		logger:     logger.Named("cron.payroll"),
		now:        time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("process_closed_pay_periods", interval, j.ProcessClosedPeriods)
}

// ProcessClosedPeriods runs every ended period that still has unprocessed employees.
// Already processed employees are skipped by the service, so reruns are safe.
func (j *PayrollJobs) ProcessClosedPeriods(ctx context.Context) error {
	periods, err := j.periodRepo.ListClosedUnprocessed(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to list closed pay periods: %w", err)
	}

	if len(periods) == 0 {
		j.logger.Debug("No closed pay periods awaiting payroll")
		return nil
	}

	var errs []error
	for _, period := range periods {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		result, err := j.payrollSvc.ProcessPeriod(ctx, period.ID)
		if err != nil {
			j.logger.Error("Failed to process pay period",
				zap.String("pay_period_id", period.ID),
				zap.String("company_id", period.CompanyID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("pay period %s: %w", period.ID, err))
			continue
		}

		if result.FailedCount > 0 || result.FlaggedCount > 0 {
			j.logger.Warn("Pay period needs attention",
				zap.String("pay_period_id", period.ID),
				zap.Int("failed", result.FailedCount),
				zap.Int("flagged", result.FlaggedCount))
		}
	}

	return errors.Join(errs...)
}
