package position

import "context"

// PositionRepository reads positions and the pay policy they carry
type PositionRepository interface {
	GetByID(ctx context.Context, id string) (Position, error)
	// GetByCompanyID lists a company's positions ordered by name
	GetByCompanyID(ctx context.Context, companyID string) ([]Position, error)
}
