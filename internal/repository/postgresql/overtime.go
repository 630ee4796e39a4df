package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepository{db: db}
}

// GetByEmployeeAndDateRange implements overtime.OvertimeRepository.
// The range is widened by a day on each side so punches near midnight in any
// timezone are returned. The aggregator filters by the period itself.
func (r *overtimeRepository) GetByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, start_at, end_at, status, approved_by, approved_at, created_at, updated_at
		FROM overtime_requests
		WHERE employee_id = $1 AND start_at >= $2 AND start_at < $3
		ORDER BY start_at
	`

	rows, err := q.Query(ctx, query, employeeID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 2))
	if err != nil {
		return nil, fmt.Errorf("failed to get overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []overtime.OvertimeRequest
	for rows.Next() {
		var o overtime.OvertimeRequest
		if err := rows.Scan(
			&o.ID, &o.EmployeeID, &o.CompanyID, &o.StartAt, &o.EndAt, &o.Status,
			&o.ApprovedBy, &o.ApprovedAt, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, o)
	}
	return requests, rows.Err()
}
