package account

import (
	"context"

	id "sahay/pkg/domain"
)

// Store persists accounts. Implementations return sentinel.ErrNotFound for
// missing records and sentinel.ErrConflict when a unique key (email or
// mobile) is already taken; the uniqueness constraint of the backing store
// is the authoritative guard against racing registrations.
type Store interface {
	Create(ctx context.Context, acct *Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByMobile(ctx context.Context, mobile string) (*Account, error)
}
