package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

const alertColumns = `id, account_id, opened_at, current_amount, duration_days, escalated, escalated_at, resolved, resolved_at`

// AlertRepository implements usecase.AlertRepository. A partial unique
// index guarantees at most one unresolved alert per account.
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// Create opens an alert inside the caller's transaction.
func (r *AlertRepository) Create(ctx context.Context, tx usecase.Transaction, alert *domain.OverdraftAlert) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO overdraft_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgxTx.Exec(ctx, query,
		alert.ID,
		alert.AccountID,
		timeToPgTimestamptz(alert.OpenedAt),
		decimalToNumeric(alert.CurrentAmount),
		alert.DurationDays,
		alert.Escalated,
		timePtrToPgTimestamptz(alert.EscalatedAt),
		alert.Resolved,
		timePtrToPgTimestamptz(alert.ResolvedAt),
	)

	return err
}

// GetUnresolvedForUpdate locks and returns the account's unresolved alert,
// or nil when none exists.
func (r *AlertRepository) GetUnresolvedForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.OverdraftAlert, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + alertColumns + `
		FROM overdraft_alerts
		WHERE account_id = $1 AND NOT resolved
		FOR UPDATE
	`

	alert, err := scanAlert(pgxTx.QueryRow(ctx, query, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return alert, err
}

// Update persists alert state inside the caller's transaction.
func (r *AlertRepository) Update(ctx context.Context, tx usecase.Transaction, alert *domain.OverdraftAlert) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE overdraft_alerts
		SET current_amount = $2, duration_days = $3, escalated = $4,
		    escalated_at = $5, resolved = $6, resolved_at = $7
		WHERE id = $1
	`

	_, err := pgxTx.Exec(ctx, query,
		alert.ID,
		decimalToNumeric(alert.CurrentAmount),
		alert.DurationDays,
		alert.Escalated,
		timePtrToPgTimestamptz(alert.EscalatedAt),
		alert.Resolved,
		timePtrToPgTimestamptz(alert.ResolvedAt),
	)

	return err
}

// ListByAccount lists an account's alert history, newest first.
func (r *AlertRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.OverdraftAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM overdraft_alerts
		WHERE account_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.OverdraftAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func scanAlert(row pgx.Row) (*domain.OverdraftAlert, error) {
	var (
		alert                   domain.OverdraftAlert
		amount                  pgtype.Numeric
		openedAt                pgtype.Timestamptz
		escalatedAt, resolvedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&alert.ID,
		&alert.AccountID,
		&openedAt,
		&amount,
		&alert.DurationDays,
		&alert.Escalated,
		&escalatedAt,
		&alert.Resolved,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	alert.OpenedAt = openedAt.Time
	alert.CurrentAmount = numericToDecimal(amount)
	alert.EscalatedAt = pgTimestamptzToTimePtr(escalatedAt)
	alert.ResolvedAt = pgTimestamptzToTimePtr(resolvedAt)

	return &alert, nil
}
