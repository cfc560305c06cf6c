package domain

import "time"

// AuditLog records who performed a mutation and on what.
type AuditLog struct {
	ID           string
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	Detail       string
	CreatedAt    time.Time
}

// Auditable actions.
const (
	AuditActionOperationCreate   = "operation.create"
	AuditActionTransferCreate    = "transfer.create"
	AuditActionAccountCreate     = "account.create"
	AuditActionAccountStatus     = "account.status"
	AuditActionAccountClose      = "account.close"
	AuditActionScheduledCreate   = "scheduled.create"
	AuditActionScheduledEdit     = "scheduled.edit"
	AuditActionScheduledCancel   = "scheduled.cancel"
	AuditActionCreditIssue       = "credit.issue"
	AuditActionCreditEdit        = "credit.edit"
	AuditActionInstallmentAdd    = "installment.add"
	AuditActionInstallmentDelete = "installment.delete"
	AuditActionSweepRun          = "scheduler.sweep"
)
