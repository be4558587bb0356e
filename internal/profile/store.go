package profile

import (
	"context"

	id "sahay/pkg/domain"
)

// Store persists profiles keyed by account ID. Save is a whole-record
// upsert; merge semantics live in the model, not the store.
// Implementations return sentinel.ErrNotFound for missing records.
type Store interface {
	Save(ctx context.Context, p *Profile) error
	FindByAccount(ctx context.Context, accountID id.AccountID) (*Profile, error)
}
