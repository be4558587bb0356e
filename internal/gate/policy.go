package gate

import "strings"

// Policy classifies request paths into access tiers. Matching is by exact
// path or by segment-aligned prefix, so "/dashboard/profile" falls under
// "/dashboard" but "/dashboards" does not.
type Policy struct {
	public          []string
	onboarding      []string
	completeProfile []string
}

// DefaultPolicy is the portal's routing policy.
//
//   - public: no session required
//   - onboarding: reachable with a temporary session
//   - completeProfile: full session plus a complete profile
func DefaultPolicy() *Policy {
	return &Policy{
		public:          []string{"/", "/auth", "/healthz", "/metrics"},
		onboarding:      []string{"/detailed-info", "/api/user-details", "/auth"},
		completeProfile: []string{"/dashboard", "/profile", "/settings"},
	}
}

func (p *Policy) Public(path string) bool {
	// Root is exact; everything else would make the whole tree public.
	for _, prefix := range p.public {
		if prefix == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if matches(path, prefix) {
			return true
		}
	}
	return false
}

func (p *Policy) OnboardingScoped(path string) bool {
	return matchesAny(path, p.onboarding)
}

func (p *Policy) RequiresCompleteProfile(path string) bool {
	return matchesAny(path, p.completeProfile)
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if matches(path, prefix) {
			return true
		}
	}
	return false
}

func matches(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
