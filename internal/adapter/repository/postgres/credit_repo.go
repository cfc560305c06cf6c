package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

const creditColumns = `id, owner_id, account_id, principal, annual_rate_pct, term_months, monthly_payment,
	start_date, end_date, remaining_principal, status, created_at, updated_at`

const installmentColumns = `id, credit_id, sequence, due_date, amount, status, paid_at, created_at`

// CreditRepository implements usecase.CreditRepository for contracts and
// their installments.
type CreditRepository struct {
	pool *pgxpool.Pool
}

// NewCreditRepository creates a new CreditRepository.
func NewCreditRepository(pool *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{pool: pool}
}

// Create persists a contract inside the caller's transaction.
func (r *CreditRepository) Create(ctx context.Context, tx usecase.Transaction, credit *domain.CreditContract) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO credit_contracts (` + creditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := pgxTx.Exec(ctx, query,
		credit.ID,
		credit.OwnerID,
		credit.AccountID,
		decimalToNumeric(credit.Principal),
		decimalToNumeric(credit.AnnualRatePct),
		credit.TermMonths,
		decimalToNumeric(credit.MonthlyPayment),
		credit.StartDate,
		credit.EndDate,
		decimalToNumeric(credit.RemainingPrincipal),
		credit.Status,
		timeToPgTimestamptz(credit.CreatedAt),
		timeToPgTimestamptz(credit.UpdatedAt),
	)

	return err
}

// GetByID retrieves a contract by ID.
func (r *CreditRepository) GetByID(ctx context.Context, id string) (*domain.CreditContract, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+creditColumns+` FROM credit_contracts WHERE id = $1`, id)

	credit, err := scanCredit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCreditNotFound
	}
	return credit, err
}

// GetByIDForUpdate locks and retrieves a contract inside the caller's
// transaction.
func (r *CreditRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditContract, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `SELECT `+creditColumns+` FROM credit_contracts WHERE id = $1 FOR UPDATE`, id)

	credit, err := scanCredit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCreditNotFound
	}
	return credit, err
}

// Update persists contract edits outside a transaction.
func (r *CreditRepository) Update(ctx context.Context, credit *domain.CreditContract) error {
	_, err := r.pool.Exec(ctx, creditUpdateQuery, creditUpdateArgs(credit)...)
	return err
}

// UpdateTx persists contract state inside the caller's transaction.
func (r *CreditRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, credit *domain.CreditContract) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, creditUpdateQuery, creditUpdateArgs(credit)...)
	return err
}

const creditUpdateQuery = `
	UPDATE credit_contracts
	SET principal = $2, annual_rate_pct = $3, end_date = $4,
	    remaining_principal = $5, status = $6, updated_at = $7
	WHERE id = $1
`

func creditUpdateArgs(credit *domain.CreditContract) []any {
	return []any{
		credit.ID,
		decimalToNumeric(credit.Principal),
		decimalToNumeric(credit.AnnualRatePct),
		credit.EndDate,
		decimalToNumeric(credit.RemainingPrincipal),
		credit.Status,
		timeToPgTimestamptz(credit.UpdatedAt),
	}
}

// List lists contracts with pagination.
func (r *CreditRepository) List(ctx context.Context, limit, offset int) ([]*domain.CreditContract, error) {
	query := `
		SELECT ` + creditColumns + `
		FROM credit_contracts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCredits(rows)
}

// ListByOwner lists a borrower's contracts.
func (r *CreditRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.CreditContract, error) {
	query := `
		SELECT ` + creditColumns + `
		FROM credit_contracts
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCredits(rows)
}

// CreateInstallment persists an installment inside the caller's transaction.
func (r *CreditRepository) CreateInstallment(ctx context.Context, tx usecase.Transaction, inst *domain.Installment) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		inst.ID,
		inst.CreditID,
		inst.Sequence,
		inst.DueDate,
		decimalToNumeric(inst.Amount),
		inst.Status,
		timePtrToPgTimestamptz(inst.PaidAt),
		timeToPgTimestamptz(inst.CreatedAt),
	)

	return err
}

// GetInstallment retrieves an installment by ID.
func (r *CreditRepository) GetInstallment(ctx context.Context, id string) (*domain.Installment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+installmentColumns+` FROM installments WHERE id = $1`, id)

	inst, err := scanInstallment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInstallmentNotFound
	}
	return inst, err
}

// ListInstallments lists a contract's schedule ordered by sequence.
func (r *CreditRepository) ListInstallments(ctx context.Context, creditID string) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE credit_id = $1
		ORDER BY sequence
	`

	rows, err := r.pool.Query(ctx, query, creditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInstallments(rows)
}

// ListDueInstallments lists pending installments due on or before day whose
// contract is still active.
func (r *CreditRepository) ListDueInstallments(ctx context.Context, day time.Time) ([]*domain.Installment, error) {
	query := `
		SELECT i.id, i.credit_id, i.sequence, i.due_date, i.amount, i.status, i.paid_at, i.created_at
		FROM installments i
		JOIN credit_contracts c ON c.id = i.credit_id
		WHERE i.status = 'pending' AND i.due_date <= $1 AND c.status = 'active'
		ORDER BY i.due_date, i.id
	`

	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInstallments(rows)
}

// MaxInstallmentSequence returns the highest sequence number on a contract.
func (r *CreditRepository) MaxInstallmentSequence(ctx context.Context, creditID string) (int, error) {
	var max int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence), 0) FROM installments WHERE credit_id = $1`, creditID).Scan(&max)
	return max, err
}

// MarkInstallmentPaid transitions pending -> paid inside the caller's
// transaction; the collection debit commits or rolls back with it.
func (r *CreditRepository) MarkInstallmentPaid(ctx context.Context, tx usecase.Transaction, id string, paidAt time.Time) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE installments SET status = 'paid', paid_at = $2 WHERE id = $1 AND status = 'pending'`,
		id, timeToPgTimestamptz(paidAt))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeletePendingInstallment removes the installment only while pending.
func (r *CreditRepository) DeletePendingInstallment(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM installments WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanCredit(row pgx.Row) (*domain.CreditContract, error) {
	var (
		credit               domain.CreditContract
		principal, rate      pgtype.Numeric
		payment, remaining   pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&credit.ID,
		&credit.OwnerID,
		&credit.AccountID,
		&principal,
		&rate,
		&credit.TermMonths,
		&payment,
		&credit.StartDate,
		&credit.EndDate,
		&remaining,
		&credit.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	credit.Principal = numericToDecimal(principal)
	credit.AnnualRatePct = numericToDecimal(rate)
	credit.MonthlyPayment = numericToDecimal(payment)
	credit.RemainingPrincipal = numericToDecimal(remaining)
	credit.CreatedAt = createdAt.Time
	credit.UpdatedAt = updatedAt.Time

	return &credit, nil
}

func scanCredits(rows pgx.Rows) ([]*domain.CreditContract, error) {
	var credits []*domain.CreditContract
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, credit)
	}
	return credits, rows.Err()
}

func scanInstallment(row pgx.Row) (*domain.Installment, error) {
	var (
		inst      domain.Installment
		amount    pgtype.Numeric
		paidAt    pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&inst.ID,
		&inst.CreditID,
		&inst.Sequence,
		&inst.DueDate,
		&amount,
		&inst.Status,
		&paidAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	inst.Amount = numericToDecimal(amount)
	inst.PaidAt = pgTimestamptzToTimePtr(paidAt)
	inst.CreatedAt = createdAt.Time

	return &inst, nil
}

func scanInstallments(rows pgx.Rows) ([]*domain.Installment, error) {
	var insts []*domain.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
	return insts, rows.Err()
}
