package audit

import (
	"context"

	id "sahay/pkg/domain"
)

// Streamer is a write-only destination for audit events, typically a
// message broker. Stream failures must not lose the primary record.
type Streamer interface {
	Publish(ctx context.Context, event Event) error
}

// TeeStore appends to a primary store and then streams the event. Reads
// are served from the primary; the stream is fire-and-forget from the
// caller's point of view except that stream errors are surfaced.
type TeeStore struct {
	primary Store
	stream  Streamer
}

func NewTeeStore(primary Store, stream Streamer) *TeeStore {
	return &TeeStore{primary: primary, stream: stream}
}

func (t *TeeStore) Append(ctx context.Context, event Event) error {
	if err := t.primary.Append(ctx, event); err != nil {
		return err
	}
	return t.stream.Publish(ctx, event)
}

func (t *TeeStore) ListByAccount(ctx context.Context, accountID id.AccountID) ([]Event, error) {
	return t.primary.ListByAccount(ctx, accountID)
}
