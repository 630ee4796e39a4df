package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type payPeriodRepository struct {
	db *database.DB
}

func NewPayPeriodRepository(db *database.DB) payroll.PayPeriodRepository {
	return &payPeriodRepository{db: db}
}

// GetPeriodByID implements payroll.PayPeriodRepository.
func (r *payPeriodRepository) GetPeriodByID(ctx context.Context, id string) (payroll.PayPeriod, error) {
	if !validator.IsValidUUID(id) {
		return payroll.PayPeriod{}, payroll.ErrPayPeriodNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, label, start_date, end_date, created_at
		FROM pay_periods
		WHERE id = $1
	`

	var p payroll.PayPeriod
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.CompanyID, &p.Label, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayPeriod{}, payroll.ErrPayPeriodNotFound
		}
		return payroll.PayPeriod{}, fmt.Errorf("failed to get pay period by id: %w", err)
	}
	return p, nil
}

// ListClosedUnprocessed implements payroll.PayPeriodRepository.
func (r *payPeriodRepository) ListClosedUnprocessed(ctx context.Context, asOf time.Time) ([]payroll.PayPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pp.id, pp.company_id, pp.label, pp.start_date, pp.end_date, pp.created_at
		FROM pay_periods pp
		WHERE pp.end_date < $1
			AND EXISTS (
				SELECT 1 FROM employees e
				WHERE e.company_id = pp.company_id
					AND e.employment_status = $2
					AND e.deleted_at IS NULL
					AND e.hire_date <= pp.end_date
					AND (e.base_salary IS NOT NULL OR e.hourly_rate IS NOT NULL)
					AND NOT EXISTS (
						SELECT 1 FROM payroll_records pr
						WHERE pr.employee_id = e.id AND pr.pay_period_id = pp.id
					)
			)
		ORDER BY pp.end_date, pp.id
	`

	rows, err := q.Query(ctx, query, asOf.Format("2006-01-02"), employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed pay periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayPeriod
	for rows.Next() {
		var p payroll.PayPeriod
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Label, &p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pay period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
