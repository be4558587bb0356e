package httptransport

import (
	"sahay/internal/identity"
	"sahay/internal/profile"
)

// successBody is the success envelope, mirroring the failure envelope in
// pkg/platform/httputil.
type successBody struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`

	User    *identity.CombinedView `json:"user,omitempty"`
	Profile *profile.Profile       `json:"profile,omitempty"`
}

func ok() successBody {
	return successBody{Success: true}
}

func okRedirect(target string) successBody {
	return successBody{Success: true, Redirect: target}
}
