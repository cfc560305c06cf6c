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

const scheduledDebitColumns = `id, source_account_id, destination_account_id, amount, description,
	execution_date, status, error_message, executed_at, created_by, created_at`

// ScheduledDebitRepository implements usecase.ScheduledDebitRepository.
type ScheduledDebitRepository struct {
	pool *pgxpool.Pool
}

// NewScheduledDebitRepository creates a new ScheduledDebitRepository.
func NewScheduledDebitRepository(pool *pgxpool.Pool) *ScheduledDebitRepository {
	return &ScheduledDebitRepository{pool: pool}
}

// Create persists a scheduled direct debit.
func (r *ScheduledDebitRepository) Create(ctx context.Context, sd *domain.ScheduledDebit) error {
	query := `
		INSERT INTO scheduled_debits (` + scheduledDebitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		sd.ID,
		sd.SourceAccountID,
		stringPtrToText(sd.DestinationAccountID),
		decimalToNumeric(sd.Amount),
		sd.Description,
		sd.ExecutionDate,
		sd.Status,
		sd.ErrorMessage,
		timePtrToPgTimestamptz(sd.ExecutedAt),
		sd.CreatedBy,
		timeToPgTimestamptz(sd.CreatedAt),
	)

	return err
}

// GetByID retrieves a scheduled debit by ID.
func (r *ScheduledDebitRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledDebit, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+scheduledDebitColumns+` FROM scheduled_debits WHERE id = $1`, id)

	sd, err := scanScheduledDebit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrScheduledItemNotFound
	}
	return sd, err
}

// ListDue lists pending debits whose execution date has arrived.
func (r *ScheduledDebitRepository) ListDue(ctx context.Context, day time.Time) ([]*domain.ScheduledDebit, error) {
	query := `
		SELECT ` + scheduledDebitColumns + `
		FROM scheduled_debits
		WHERE status = 'pending' AND execution_date <= $1
		ORDER BY execution_date, id
	`

	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduledDebits(rows)
}

// ListBySourceAccount lists debits scheduled against an account.
func (r *ScheduledDebitRepository) ListBySourceAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledDebit, error) {
	query := `
		SELECT ` + scheduledDebitColumns + `
		FROM scheduled_debits
		WHERE source_account_id = $1
		ORDER BY execution_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduledDebits(rows)
}

// Claim transitions pending -> processing.
func (r *ScheduledDebitRepository) Claim(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_debits SET status = 'processing' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExecuted records a successful execution.
func (r *ScheduledDebitRepository) MarkExecuted(ctx context.Context, id string, executedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_debits SET status = 'executed', executed_at = $2 WHERE id = $1`,
		id, timeToPgTimestamptz(executedAt))
	return err
}

// MarkError records a failed execution.
func (r *ScheduledDebitRepository) MarkError(ctx context.Context, id string, message string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_debits SET status = 'error', error_message = $2 WHERE id = $1`,
		id, message)
	return err
}

// UpdatePending edits the item while it is still pending.
func (r *ScheduledDebitRepository) UpdatePending(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error) {
	query := `
		UPDATE scheduled_debits
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
func (r *ScheduledDebitRepository) CancelPending(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_debits SET status = 'cancelled' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanScheduledDebit(row pgx.Row) (*domain.ScheduledDebit, error) {
	var (
		sd          domain.ScheduledDebit
		destination pgtype.Text
		amount      pgtype.Numeric
		executedAt  pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&sd.ID,
		&sd.SourceAccountID,
		&destination,
		&amount,
		&sd.Description,
		&sd.ExecutionDate,
		&sd.Status,
		&sd.ErrorMessage,
		&executedAt,
		&sd.CreatedBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	sd.DestinationAccountID = textToStringPtr(destination)
	sd.Amount = numericToDecimal(amount)
	sd.ExecutedAt = pgTimestamptzToTimePtr(executedAt)
	sd.CreatedAt = createdAt.Time

	return &sd, nil
}

func scanScheduledDebits(rows pgx.Rows) ([]*domain.ScheduledDebit, error) {
	var items []*domain.ScheduledDebit
	for rows.Next() {
		sd, err := scanScheduledDebit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sd)
	}
	return items, rows.Err()
}
