package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByNumberFunc       func(ctx context.Context, number string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatusFunc      func(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListByOwnerFunc       func(ctx context.Context, ownerID string) ([]*domain.Account, error)
	ListIDsFunc           func(ctx context.Context) ([]string, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Number == number {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Status = status
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListIDs(ctx context.Context) ([]string, error) {
	if m.ListIDsFunc != nil {
		return m.ListIDsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MockOperationRepository is a mock implementation of OperationRepository.
type MockOperationRepository struct {
	mu         sync.RWMutex
	operations []*domain.Operation

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error)
	ListByAccountAscFunc func(ctx context.Context, accountID string) ([]*domain.Operation, error)
}

func NewMockOperationRepository() *MockOperationRepository {
	return &MockOperationRepository{}
}

func (m *MockOperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations = append(m.operations, op)
	return nil
}

func (m *MockOperationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	asc, _ := m.ListByAccountAsc(ctx, accountID)
	desc := make([]*domain.Operation, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		desc = append(desc, asc[i])
	}
	return desc, nil
}

func (m *MockOperationRepository) ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.Operation, error) {
	if m.ListByAccountAscFunc != nil {
		return m.ListByAccountAscFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ops []*domain.Operation
	for _, op := range m.operations {
		if op.AccountID == accountID {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// MockAlertRepository is a mock implementation of AlertRepository.
type MockAlertRepository struct {
	mu     sync.RWMutex
	alerts map[string]*domain.OverdraftAlert

	CreateFunc                 func(ctx context.Context, tx usecase.Transaction, alert *domain.OverdraftAlert) error
	GetUnresolvedForUpdateFunc func(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.OverdraftAlert, error)
	UpdateFunc                 func(ctx context.Context, tx usecase.Transaction, alert *domain.OverdraftAlert) error
	ListByAccountFunc          func(ctx context.Context, accountID string, limit, offset int) ([]*domain.OverdraftAlert, error)
}

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{
		alerts: make(map[string]*domain.OverdraftAlert),
	}
}

func (m *MockAlertRepository) Create(ctx context.Context, tx usecase.Transaction, alert *domain.OverdraftAlert) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, alert)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[alert.ID] = alert
	return nil
}

func (m *MockAlertRepository) GetUnresolvedForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.OverdraftAlert, error) {
	if m.GetUnresolvedForUpdateFunc != nil {
		return m.GetUnresolvedForUpdateFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alerts {
		if a.AccountID == accountID && a.ResolvedAt == nil {
			return a, nil
		}
	}
	return nil, nil
}

func (m *MockAlertRepository) Update(ctx context.Context, tx usecase.Transaction, alert *domain.OverdraftAlert) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, alert)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[alert.ID] = alert
	return nil
}

func (m *MockAlertRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.OverdraftAlert, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var alerts []*domain.OverdraftAlert
	for _, a := range m.alerts {
		if a.AccountID == accountID {
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}

// MockScheduledTransferRepository is a mock implementation of
// ScheduledTransferRepository.
type MockScheduledTransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.ScheduledTransfer

	CreateFunc              func(ctx context.Context, st *domain.ScheduledTransfer) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.ScheduledTransfer, error)
	ListDueFunc             func(ctx context.Context, day time.Time) ([]*domain.ScheduledTransfer, error)
	ListBySourceAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error)
	ClaimFunc               func(ctx context.Context, id string) (bool, error)
	MarkExecutedFunc        func(ctx context.Context, id string, executedAt time.Time) error
	MarkErrorFunc           func(ctx context.Context, id string, message string) error
	UpdatePendingFunc       func(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error)
	CancelPendingFunc       func(ctx context.Context, id string) (bool, error)
}

func NewMockScheduledTransferRepository() *MockScheduledTransferRepository {
	return &MockScheduledTransferRepository{
		transfers: make(map[string]*domain.ScheduledTransfer),
	}
}

func (m *MockScheduledTransferRepository) Create(ctx context.Context, st *domain.ScheduledTransfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[st.ID] = st
	return nil
}

func (m *MockScheduledTransferRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.transfers[id]; ok {
		return st, nil
	}
	return nil, domain.ErrScheduledItemNotFound
}

func (m *MockScheduledTransferRepository) ListDue(ctx context.Context, day time.Time) ([]*domain.ScheduledTransfer, error) {
	if m.ListDueFunc != nil {
		return m.ListDueFunc(ctx, day)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.ScheduledTransfer
	for _, st := range m.transfers {
		if st.DueOn(day) {
			due = append(due, st)
		}
	}
	return due, nil
}

func (m *MockScheduledTransferRepository) ListBySourceAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error) {
	if m.ListBySourceAccountFunc != nil {
		return m.ListBySourceAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ScheduledTransfer
	for _, st := range m.transfers {
		if st.SourceAccountID == accountID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *MockScheduledTransferRepository) Claim(ctx context.Context, id string) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.transfers[id]
	if !ok || st.Status != domain.ScheduledStatusPending {
		return false, nil
	}
	st.Status = domain.ScheduledStatusProcessing
	return true, nil
}

func (m *MockScheduledTransferRepository) MarkExecuted(ctx context.Context, id string, executedAt time.Time) error {
	if m.MarkExecutedFunc != nil {
		return m.MarkExecutedFunc(ctx, id, executedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.transfers[id]; ok {
		st.Status = domain.ScheduledStatusExecuted
		st.ExecutedAt = &executedAt
	}
	return nil
}

func (m *MockScheduledTransferRepository) MarkError(ctx context.Context, id string, message string) error {
	if m.MarkErrorFunc != nil {
		return m.MarkErrorFunc(ctx, id, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.transfers[id]; ok {
		st.Status = domain.ScheduledStatusError
		st.ErrorMessage = message
	}
	return nil
}

func (m *MockScheduledTransferRepository) UpdatePending(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error) {
	if m.UpdatePendingFunc != nil {
		return m.UpdatePendingFunc(ctx, id, amount, description, executionDate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.transfers[id]
	if !ok || st.Status != domain.ScheduledStatusPending {
		return false, nil
	}
	st.Amount = amount
	st.Description = description
	st.ExecutionDate = executionDate
	return true, nil
}

func (m *MockScheduledTransferRepository) CancelPending(ctx context.Context, id string) (bool, error) {
	if m.CancelPendingFunc != nil {
		return m.CancelPendingFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.transfers[id]
	if !ok || st.Status != domain.ScheduledStatusPending {
		return false, nil
	}
	st.Status = domain.ScheduledStatusCancelled
	return true, nil
}

// MockScheduledDebitRepository is a mock implementation of
// ScheduledDebitRepository.
type MockScheduledDebitRepository struct {
	mu     sync.RWMutex
	debits map[string]*domain.ScheduledDebit

	CreateFunc              func(ctx context.Context, sd *domain.ScheduledDebit) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.ScheduledDebit, error)
	ListDueFunc             func(ctx context.Context, day time.Time) ([]*domain.ScheduledDebit, error)
	ListBySourceAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledDebit, error)
	ClaimFunc               func(ctx context.Context, id string) (bool, error)
	MarkExecutedFunc        func(ctx context.Context, id string, executedAt time.Time) error
	MarkErrorFunc           func(ctx context.Context, id string, message string) error
	UpdatePendingFunc       func(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error)
	CancelPendingFunc       func(ctx context.Context, id string) (bool, error)
}

func NewMockScheduledDebitRepository() *MockScheduledDebitRepository {
	return &MockScheduledDebitRepository{
		debits: make(map[string]*domain.ScheduledDebit),
	}
}

func (m *MockScheduledDebitRepository) Create(ctx context.Context, sd *domain.ScheduledDebit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sd)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debits[sd.ID] = sd
	return nil
}

func (m *MockScheduledDebitRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledDebit, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sd, ok := m.debits[id]; ok {
		return sd, nil
	}
	return nil, domain.ErrScheduledItemNotFound
}

func (m *MockScheduledDebitRepository) ListDue(ctx context.Context, day time.Time) ([]*domain.ScheduledDebit, error) {
	if m.ListDueFunc != nil {
		return m.ListDueFunc(ctx, day)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.ScheduledDebit
	for _, sd := range m.debits {
		if sd.DueOn(day) {
			due = append(due, sd)
		}
	}
	return due, nil
}

func (m *MockScheduledDebitRepository) ListBySourceAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledDebit, error) {
	if m.ListBySourceAccountFunc != nil {
		return m.ListBySourceAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ScheduledDebit
	for _, sd := range m.debits {
		if sd.SourceAccountID == accountID {
			out = append(out, sd)
		}
	}
	return out, nil
}

func (m *MockScheduledDebitRepository) Claim(ctx context.Context, id string) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sd, ok := m.debits[id]
	if !ok || sd.Status != domain.ScheduledStatusPending {
		return false, nil
	}
	sd.Status = domain.ScheduledStatusProcessing
	return true, nil
}

func (m *MockScheduledDebitRepository) MarkExecuted(ctx context.Context, id string, executedAt time.Time) error {
	if m.MarkExecutedFunc != nil {
		return m.MarkExecutedFunc(ctx, id, executedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sd, ok := m.debits[id]; ok {
		sd.Status = domain.ScheduledStatusExecuted
		sd.ExecutedAt = &executedAt
	}
	return nil
}

func (m *MockScheduledDebitRepository) MarkError(ctx context.Context, id string, message string) error {
	if m.MarkErrorFunc != nil {
		return m.MarkErrorFunc(ctx, id, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sd, ok := m.debits[id]; ok {
		sd.Status = domain.ScheduledStatusError
		sd.ErrorMessage = message
	}
	return nil
}

func (m *MockScheduledDebitRepository) UpdatePending(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error) {
	if m.UpdatePendingFunc != nil {
		return m.UpdatePendingFunc(ctx, id, amount, description, executionDate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sd, ok := m.debits[id]
	if !ok || sd.Status != domain.ScheduledStatusPending {
		return false, nil
	}
	sd.Amount = amount
	sd.Description = description
	sd.ExecutionDate = executionDate
	return true, nil
}

func (m *MockScheduledDebitRepository) CancelPending(ctx context.Context, id string) (bool, error) {
	if m.CancelPendingFunc != nil {
		return m.CancelPendingFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sd, ok := m.debits[id]
	if !ok || sd.Status != domain.ScheduledStatusPending {
		return false, nil
	}
	sd.Status = domain.ScheduledStatusCancelled
	return true, nil
}

// MockCreditRepository is a mock implementation of CreditRepository.
type MockCreditRepository struct {
	mu           sync.RWMutex
	credits      map[string]*domain.CreditContract
	installments map[string]*domain.Installment

	CreateFunc                   func(ctx context.Context, tx usecase.Transaction, credit *domain.CreditContract) error
	GetByIDFunc                  func(ctx context.Context, id string) (*domain.CreditContract, error)
	GetByIDForUpdateFunc         func(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditContract, error)
	UpdateFunc                   func(ctx context.Context, credit *domain.CreditContract) error
	UpdateTxFunc                 func(ctx context.Context, tx usecase.Transaction, credit *domain.CreditContract) error
	ListFunc                     func(ctx context.Context, limit, offset int) ([]*domain.CreditContract, error)
	ListByOwnerFunc              func(ctx context.Context, ownerID string) ([]*domain.CreditContract, error)
	CreateInstallmentFunc        func(ctx context.Context, tx usecase.Transaction, inst *domain.Installment) error
	GetInstallmentFunc           func(ctx context.Context, id string) (*domain.Installment, error)
	ListInstallmentsFunc         func(ctx context.Context, creditID string) ([]*domain.Installment, error)
	ListDueInstallmentsFunc      func(ctx context.Context, day time.Time) ([]*domain.Installment, error)
	MaxInstallmentSequenceFunc   func(ctx context.Context, creditID string) (int, error)
	MarkInstallmentPaidFunc      func(ctx context.Context, tx usecase.Transaction, id string, paidAt time.Time) (bool, error)
	DeletePendingInstallmentFunc func(ctx context.Context, id string) (bool, error)
}

func NewMockCreditRepository() *MockCreditRepository {
	return &MockCreditRepository{
		credits:      make(map[string]*domain.CreditContract),
		installments: make(map[string]*domain.Installment),
	}
}

func (m *MockCreditRepository) Create(ctx context.Context, tx usecase.Transaction, credit *domain.CreditContract) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, credit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credits[credit.ID] = credit
	return nil
}

func (m *MockCreditRepository) GetByID(ctx context.Context, id string) (*domain.CreditContract, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.credits[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCreditNotFound
}

func (m *MockCreditRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditContract, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockCreditRepository) Update(ctx context.Context, credit *domain.CreditContract) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, credit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credits[credit.ID] = credit
	return nil
}

func (m *MockCreditRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, credit *domain.CreditContract) error {
	if m.UpdateTxFunc != nil {
		return m.UpdateTxFunc(ctx, tx, credit)
	}
	return m.Update(ctx, credit)
}

func (m *MockCreditRepository) List(ctx context.Context, limit, offset int) ([]*domain.CreditContract, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var credits []*domain.CreditContract
	for _, c := range m.credits {
		credits = append(credits, c)
	}
	return credits, nil
}

func (m *MockCreditRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.CreditContract, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var credits []*domain.CreditContract
	for _, c := range m.credits {
		if c.OwnerID == ownerID {
			credits = append(credits, c)
		}
	}
	return credits, nil
}

func (m *MockCreditRepository) CreateInstallment(ctx context.Context, tx usecase.Transaction, inst *domain.Installment) error {
	if m.CreateInstallmentFunc != nil {
		return m.CreateInstallmentFunc(ctx, tx, inst)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installments[inst.ID] = inst
	return nil
}

func (m *MockCreditRepository) GetInstallment(ctx context.Context, id string) (*domain.Installment, error) {
	if m.GetInstallmentFunc != nil {
		return m.GetInstallmentFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inst, ok := m.installments[id]; ok {
		return inst, nil
	}
	return nil, domain.ErrInstallmentNotFound
}

func (m *MockCreditRepository) ListInstallments(ctx context.Context, creditID string) ([]*domain.Installment, error) {
	if m.ListInstallmentsFunc != nil {
		return m.ListInstallmentsFunc(ctx, creditID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var insts []*domain.Installment
	for _, inst := range m.installments {
		if inst.CreditID == creditID {
			insts = append(insts, inst)
		}
	}
	sort.Slice(insts, func(i, j int) bool { return insts[i].Sequence < insts[j].Sequence })
	return insts, nil
}

func (m *MockCreditRepository) ListDueInstallments(ctx context.Context, day time.Time) ([]*domain.Installment, error) {
	if m.ListDueInstallmentsFunc != nil {
		return m.ListDueInstallmentsFunc(ctx, day)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.Installment
	for _, inst := range m.installments {
		if inst.Status != domain.InstallmentStatusPending || inst.DueDate.After(day) {
			continue
		}
		if c, ok := m.credits[inst.CreditID]; ok && c.Status == domain.CreditStatusActive {
			due = append(due, inst)
		}
	}
	return due, nil
}

func (m *MockCreditRepository) MaxInstallmentSequence(ctx context.Context, creditID string) (int, error) {
	if m.MaxInstallmentSequenceFunc != nil {
		return m.MaxInstallmentSequenceFunc(ctx, creditID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for _, inst := range m.installments {
		if inst.CreditID == creditID && inst.Sequence > max {
			max = inst.Sequence
		}
	}
	return max, nil
}

func (m *MockCreditRepository) MarkInstallmentPaid(ctx context.Context, tx usecase.Transaction, id string, paidAt time.Time) (bool, error) {
	if m.MarkInstallmentPaidFunc != nil {
		return m.MarkInstallmentPaidFunc(ctx, tx, id, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.installments[id]
	if !ok || inst.Status != domain.InstallmentStatusPending {
		return false, nil
	}
	inst.Status = domain.InstallmentStatusPaid
	inst.PaidAt = &paidAt
	return true, nil
}

func (m *MockCreditRepository) DeletePendingInstallment(ctx context.Context, id string) (bool, error) {
	if m.DeletePendingInstallmentFunc != nil {
		return m.DeletePendingInstallmentFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.installments[id]
	if !ok || inst.Status != domain.InstallmentStatusPending {
		return false, nil
	}
	delete(m.installments, id)
	return true, nil
}

// MockMandateRepository is a mock implementation of MandateRepository.
type MockMandateRepository struct {
	mu       sync.RWMutex
	mandates []*domain.Mandate

	HasActiveMandateFunc func(ctx context.Context, accountID, granteeID string, at time.Time) (bool, error)
}

func NewMockMandateRepository() *MockMandateRepository {
	return &MockMandateRepository{}
}

// Grant registers a mandate for the default in-memory behavior.
func (m *MockMandateRepository) Grant(mandate *domain.Mandate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mandates = append(m.mandates, mandate)
}

func (m *MockMandateRepository) HasActiveMandate(ctx context.Context, accountID, granteeID string, at time.Time) (bool, error) {
	if m.HasActiveMandateFunc != nil {
		return m.HasActiveMandateFunc(ctx, accountID, granteeID, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mandate := range m.mandates {
		if mandate.AccountID == accountID && mandate.GranteeID == granteeID && mandate.ValidAt(at) {
			return true, nil
		}
	}
	return false, nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
	ListFunc   func(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]*domain.AuditLog, len(m.logs))
	copy(logs, m.logs)
	return logs, nil
}

// Logs returns the recorded entries.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]*domain.AuditLog, len(m.logs))
	copy(logs, m.logs)
	return logs
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// SentNotification is one message captured by MockNotifier.
type SentNotification struct {
	OwnerID  string
	Subject  string
	Body     string
	Severity domain.Severity
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mu   sync.RWMutex
	sent []SentNotification

	SendFunc func(ctx context.Context, ownerID, subject, body string, severity domain.Severity)
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, ownerID, subject, body string, severity domain.Severity) {
	if m.SendFunc != nil {
		m.SendFunc(ctx, ownerID, subject, body, severity)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotification{OwnerID: ownerID, Subject: subject, Body: body, Severity: severity})
}

// Sent returns the captured notifications.
func (m *MockNotifier) Sent() []SentNotification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sent := make([]SentNotification, len(m.sent))
	copy(sent, m.sent)
	return sent
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
