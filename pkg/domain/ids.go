// Package domain holds the typed identifiers shared across bounded contexts.
//
// IDs are distinct named types over uuid.UUID so the compiler rejects
// cross-assignment between identifier kinds. Parsing is the trust boundary:
// anything reaching a service as an ID type has already been validated.
package domain

import (
	"github.com/google/uuid"

	dErrors "sahay/pkg/domain-errors"
)

// AccountID identifies an authentication account.
type AccountID uuid.UUID

// NewAccountID returns a freshly generated account identifier.
func NewAccountID() AccountID {
	return AccountID(uuid.New())
}

// ParseAccountID validates and converts a string into an AccountID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account id cannot be the nil UUID")
	}
	return AccountID(parsed), nil
}

func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero UUID.
func (id AccountID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so IDs render as canonical
// UUID strings in JSON payloads.
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with full validation.
func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
