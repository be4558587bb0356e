package identity

import (
	"sahay/internal/account"
	"sahay/internal/profile"
)

// CombinedView joins an account with its optional profile. Profile is nil
// until the first onboarding submission creates one.
type CombinedView struct {
	Account *account.Account `json:"account"`
	Profile *profile.Profile `json:"profile,omitempty"`
}

// ProfileComplete reports whether the view's profile exists and has the
// minimal onboarding fields filled in.
func (v *CombinedView) ProfileComplete() bool {
	return v.Profile != nil && v.Profile.Complete()
}
