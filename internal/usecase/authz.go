package usecase

import (
	"context"
	"time"

	"github.com/corebank/bankd/internal/domain"
)

// Authorizer decides whether an actor may operate on an account: admins
// always may, owners may, and so may holders of a currently valid mandate.
type Authorizer struct {
	mandateRepo MandateRepository
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(mandateRepo MandateRepository) *Authorizer {
	return &Authorizer{mandateRepo: mandateRepo}
}

// CanOperate returns nil when the actor may mutate or inspect the account.
func (a *Authorizer) CanOperate(ctx context.Context, actor *domain.User, account *domain.Account) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}

	if actor.Role.IsAdmin() || account.OwnerID == actor.ID {
		return nil
	}

	ok, err := a.mandateRepo.HasActiveMandate(ctx, account.ID, actor.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}

	return nil
}

// RequireAdmin returns nil only for administrators.
func (a *Authorizer) RequireAdmin(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
