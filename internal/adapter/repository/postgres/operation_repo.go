package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

const operationColumns = `id, account_id, kind, amount, counterparty, category, note, balance_after, created_at`

// OperationRepository implements usecase.OperationRepository. The journal
// is append-only: there is no update or delete path.
type OperationRepository struct {
	pool *pgxpool.Pool
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

// Create appends a journal entry inside the caller's transaction.
func (r *OperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgxTx.Exec(ctx, query,
		op.ID,
		op.AccountID,
		op.Kind,
		decimalToNumeric(op.Amount),
		op.Counterparty,
		op.Category,
		op.Note,
		decimalToNumeric(op.BalanceAfter),
		timeToPgTimestamptz(op.CreatedAt),
	)

	return err
}

// ListByAccount lists an account's entries, newest first.
func (r *OperationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM operations
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// ListByAccountAsc lists the full journal of an account in creation order,
// as consumed by the replay check.
func (r *OperationRepository) ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM operations
		WHERE account_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

func scanOperations(rows pgx.Rows) ([]*domain.Operation, error) {
	var ops []*domain.Operation
	for rows.Next() {
		var (
			op                   domain.Operation
			amount, balanceAfter pgtype.Numeric
			createdAt            pgtype.Timestamptz
		)

		err := rows.Scan(
			&op.ID,
			&op.AccountID,
			&op.Kind,
			&amount,
			&op.Counterparty,
			&op.Category,
			&op.Note,
			&balanceAfter,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		op.Amount = numericToDecimal(amount)
		op.BalanceAfter = numericToDecimal(balanceAfter)
		op.CreatedAt = createdAt.Time

		ops = append(ops, &op)
	}
	return ops, rows.Err()
}
