package account

import (
	"strings"
	"time"

	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
)

// Account is the authentication identity record.
//
// Invariants:
//   - Email and Mobile are non-empty and unique across accounts
//   - PasswordHash is a bcrypt hash, never plaintext
//   - Immutable after creation except PasswordHash
type Account struct {
	ID           id.AccountID `json:"id"`
	Email        string       `json:"email"`
	Mobile       string       `json:"mobile"`
	PasswordHash string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
}

// New validates invariants and constructs an Account. The password hash
// must already be computed by the caller.
func New(accountID id.AccountID, email, mobile, passwordHash string, now time.Time) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	mobile = strings.TrimSpace(mobile)

	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email must contain @")
	}
	if mobile == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mobile cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &Account{
		ID:           accountID,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}
