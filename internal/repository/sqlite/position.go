package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
)

type positionRepository struct {
	s *Store
}

func scanPosition(row rowScanner) (position.Position, error) {
	var p position.Position
	var multiplier, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.PayCategory, &multiplier, &createdAt, &updatedAt); err != nil {
		return position.Position{}, err
	}
	var errs [3]error
	p.OvertimeMultiplier, errs[0] = parseDecimal(multiplier)
	p.CreatedAt, errs[1] = parseTimestamp(createdAt)
	p.UpdatedAt, errs[2] = parseTimestamp(updatedAt)
	if err := firstErr(errs[:]...); err != nil {
		return position.Position{}, err
	}
	return p, nil
}

// GetByID implements position.PositionRepository.
func (r *positionRepository) GetByID(ctx context.Context, id string) (position.Position, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, pay_category, overtime_multiplier, created_at, updated_at
		FROM positions WHERE id = ?`, id)
	p, err := scanPosition(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return position.Position{}, position.ErrPositionNotFound
		}
		return position.Position{}, fmt.Errorf("failed to get position by id: %w", err)
	}
	return p, nil
}

// GetByCompanyID implements position.PositionRepository.
func (r *positionRepository) GetByCompanyID(ctx context.Context, companyID string) ([]position.Position, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, company_id, name, pay_category, overtime_multiplier, created_at, updated_at
		FROM positions WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []position.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
