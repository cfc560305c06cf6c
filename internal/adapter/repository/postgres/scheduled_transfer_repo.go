package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
)

const scheduledTransferColumns = `id, source_account_id, mode, destination_account_id, external_reference, beneficiary,
	amount, description, execution_date, status, error_message, executed_at, created_by, created_at`

// ScheduledTransferRepository implements usecase.ScheduledTransferRepository.
// Status transitions out of pending are single conditional UPDATEs, which is
// what makes concurrent sweeps and user cancellations race-safe.
type ScheduledTransferRepository struct {
	pool *pgxpool.Pool
}

// NewScheduledTransferRepository creates a new ScheduledTransferRepository.
func NewScheduledTransferRepository(pool *pgxpool.Pool) *ScheduledTransferRepository {
	return &ScheduledTransferRepository{pool: pool}
}

// Create persists a scheduled transfer.
func (r *ScheduledTransferRepository) Create(ctx context.Context, st *domain.ScheduledTransfer) error {
	query := `
		INSERT INTO scheduled_transfers (` + scheduledTransferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var destination pgtype.Text
	if st.DestinationAccountID != "" {
		destination = pgtype.Text{String: st.DestinationAccountID, Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		st.ID,
		st.SourceAccountID,
		st.Mode,
		destination,
		st.ExternalReference,
		st.Beneficiary,
		decimalToNumeric(st.Amount),
		st.Description,
		st.ExecutionDate,
		st.Status,
		st.ErrorMessage,
		timePtrToPgTimestamptz(st.ExecutedAt),
		st.CreatedBy,
		timeToPgTimestamptz(st.CreatedAt),
	)

	return err
}

// GetByID retrieves a scheduled transfer by ID.
func (r *ScheduledTransferRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+scheduledTransferColumns+` FROM scheduled_transfers WHERE id = $1`, id)

	st, err := scanScheduledTransfer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrScheduledItemNotFound
	}
	return st, err
}

// ListDue lists pending transfers whose execution date has arrived.
func (r *ScheduledTransferRepository) ListDue(ctx context.Context, day time.Time) ([]*domain.ScheduledTransfer, error) {
	query := `
		SELECT ` + scheduledTransferColumns + `
		FROM scheduled_transfers
		WHERE status = 'pending' AND execution_date <= $1
		ORDER BY execution_date, id
	`

	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduledTransfers(rows)
}

// ListBySourceAccount lists transfers scheduled from an account.
func (r *ScheduledTransferRepository) ListBySourceAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error) {
	query := `
		SELECT ` + scheduledTransferColumns + `
		FROM scheduled_transfers
		WHERE source_account_id = $1
		ORDER BY execution_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduledTransfers(rows)
}

// Claim transitions pending -> processing and reports whether this caller
// won the item.
func (r *ScheduledTransferRepository) Claim(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_transfers SET status = 'processing' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExecuted records a successful execution.
func (r *ScheduledTransferRepository) MarkExecuted(ctx context.Context, id string, executedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_transfers SET status = 'executed', executed_at = $2 WHERE id = $1`,
		id, timeToPgTimestamptz(executedAt))
	return err
}

// MarkError records a failed execution. The status is terminal; the item is
// never retried.
func (r *ScheduledTransferRepository) MarkError(ctx context.Context, id string, message string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_transfers SET status = 'error', error_message = $2 WHERE id = $1`,
		id, message)
	return err
}

// UpdatePending edits the item while it is still pending.
func (r *ScheduledTransferRepository) UpdatePending(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error) {
	query := `
		UPDATE scheduled_transfers
		SET amount = $2, description = $3, execution_date = $4
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id, decimalToNumeric(amount), description, executionDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CancelPending transitions pending -> cancelled.
func (r *ScheduledTransferRepository) CancelPending(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_transfers SET status = 'cancelled' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanScheduledTransfer(row pgx.Row) (*domain.ScheduledTransfer, error) {
	var (
		st          domain.ScheduledTransfer
		destination pgtype.Text
		amount      pgtype.Numeric
		executedAt  pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&st.ID,
		&st.SourceAccountID,
		&st.Mode,
		&destination,
		&st.ExternalReference,
		&st.Beneficiary,
		&amount,
		&st.Description,
		&st.ExecutionDate,
		&st.Status,
		&st.ErrorMessage,
		&executedAt,
		&st.CreatedBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if destination.Valid {
		st.DestinationAccountID = destination.String
	}
	st.Amount = numericToDecimal(amount)
	st.ExecutedAt = pgTimestamptzToTimePtr(executedAt)
	st.CreatedAt = createdAt.Time

	return &st, nil
}

func scanScheduledTransfers(rows pgx.Rows) ([]*domain.ScheduledTransfer, error) {
	var items []*domain.ScheduledTransfer
	for rows.Next() {
		st, err := scanScheduledTransfer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}
