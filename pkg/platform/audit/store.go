package audit

import (
	"context"

	id "sahay/pkg/domain"
)

// Store is the sink contract the publisher fans out to. Implementations
// must tolerate concurrent Append calls.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]Event, error)
}
