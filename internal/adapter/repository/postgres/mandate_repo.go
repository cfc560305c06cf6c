package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MandateRepository implements usecase.MandateRepository.
type MandateRepository struct {
	pool *pgxpool.Pool
}

// NewMandateRepository creates a new MandateRepository.
func NewMandateRepository(pool *pgxpool.Pool) *MandateRepository {
	return &MandateRepository{pool: pool}
}

// HasActiveMandate reports whether the grantee holds a mandate over the
// account valid at the given time.
func (r *MandateRepository) HasActiveMandate(ctx context.Context, accountID, granteeID string, at time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM mandates
			WHERE account_id = $1 AND grantee_id = $2 AND status = 'active'
			  AND (valid_until IS NULL OR valid_until >= $3)
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, accountID, granteeID, at).Scan(&exists)
	return exists, err
}
