package audit

import (
	"time"

	id "sahay/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Examples: account creation, selection decisions on applicants.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: failed logins, session promotions, forced session purges.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility. Examples: routine logins, profile updates.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	AccountID id.AccountID
	Subject   string
	Action    string
	Reason    string
	// Email is populated when the account identity matters to the trail
	// (e.g. duplicate registration attempts).
	Email string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
}

// AuditEvent names every action the portal records.
type AuditEvent string

const (
	EventAccountRegistered AuditEvent = "account_registered"
	EventLoginSucceeded    AuditEvent = "login_succeeded"
	EventAuthFailed        AuditEvent = "auth_failed"
	EventLoggedOut         AuditEvent = "logged_out"
	EventSessionPromoted   AuditEvent = "session_promoted"
	EventSessionPurged     AuditEvent = "session_purged"
	EventProfileUpdated    AuditEvent = "profile_updated"
	EventSelectionUpdated  AuditEvent = "selection_updated"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventAccountRegistered: CategoryCompliance,
	EventSelectionUpdated:  CategoryCompliance,

	EventAuthFailed:      CategorySecurity,
	EventSessionPromoted: CategorySecurity,
	EventSessionPurged:   CategorySecurity,

	EventLoginSucceeded: CategoryOperations,
	EventLoggedOut:      CategoryOperations,
	EventProfileUpdated: CategoryOperations,
}

// Category resolves the category for an event, defaulting to operations
// for unknown actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if category, ok := eventCategories[e]; ok {
		return category
	}
	return CategoryOperations
}
