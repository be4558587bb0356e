// Package identity orchestrates accounts and profiles behind a single
// credential and lookup surface. The access gate and the HTTP handlers
// only ever talk to this service, never to the stores directly.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"sahay/internal/account"
	"sahay/internal/platform/metrics"
	"sahay/internal/profile"
	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
	"sahay/pkg/email"
	"sahay/pkg/platform/audit"
	"sahay/pkg/platform/secrets"
	"sahay/pkg/platform/sentinel"
	"sahay/pkg/requestcontext"
)

// ViewCache is a short-TTL read-through cache for combined views. A miss
// is reported as sentinel.ErrNotFound. Implementations must be safe for
// concurrent use; cache failures are never fatal to the caller.
type ViewCache interface {
	Get(ctx context.Context, accountID id.AccountID) (*CombinedView, error)
	Set(ctx context.Context, accountID id.AccountID, view *CombinedView) error
	Invalidate(ctx context.Context, accountID id.AccountID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// RegisterInput carries the registration form. FullName, Gender and
// WhatsappUpdates seed the profile stub created alongside the account.
type RegisterInput struct {
	Email           string
	Mobile          string
	Password        string
	FullName        string
	Gender          string
	WhatsappUpdates bool
}

// Service orchestrates account and profile management.
type Service struct {
	accounts       account.Store
	profiles       profile.Store
	cache          ViewCache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithViewCache(cache ViewCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service.
func New(accounts account.Store, profiles profile.Store, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		profiles: profiles,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account plus its profile stub. The uniqueness of
// email and mobile is enforced by the store; a conflict on either key
// surfaces as a single duplicate-identity error so callers cannot probe
// which one collided.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*CombinedView, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}

	hash, err := secrets.Hash(in.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := s.now()
	acct, err := account.New(id.NewAccountID(), in.Email, in.Mobile, hash, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.logAudit(ctx, string(audit.EventAuthFailed), id.AccountID{},
				"reason", "duplicate identity", "email", acct.Email)
			return nil, dErrors.New(dErrors.CodeDuplicateIdentity,
				"an account with this email or mobile already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	prof := profile.New(acct.ID, now)
	prof.FullName = strings.TrimSpace(in.FullName)
	if prof.FullName == "" {
		prof.FullName = email.DeriveDisplayName(acct.Email)
	}
	prof.Gender = strings.TrimSpace(in.Gender)
	prof.WhatsappUpdates = in.WhatsappUpdates
	if err := s.profiles.Save(ctx, prof); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}

	s.logAudit(ctx, string(audit.EventAccountRegistered), acct.ID, "email", acct.Email)
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}

	return &CombinedView{Account: acct, Profile: prof}, nil
}

// Authenticate verifies credentials. An identifier containing '@' is
// treated as an email, anything else as a mobile number. Lookup misses and
// hash mismatches are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*CombinedView, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalidCredentials()
	}

	var (
		acct *account.Account
		err  error
	)
	if strings.Contains(identifier, "@") {
		acct, err = s.accounts.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		acct, err = s.accounts.FindByMobile(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.noteAuthFailure(ctx, id.AccountID{}, "unknown identifier")
			return nil, invalidCredentials()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	if err := secrets.Verify(password, acct.PasswordHash); err != nil {
		s.noteAuthFailure(ctx, acct.ID, "password mismatch")
		return nil, invalidCredentials()
	}

	view, err := s.loadView(ctx, acct)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, string(audit.EventLoginSucceeded), acct.ID)
	s.metrics.IncLogin("success")
	return view, nil
}

// GetByID resolves the combined view, reading through the cache when one
// is configured. Cache failures degrade to a store read.
func (s *Service) GetByID(ctx context.Context, accountID id.AccountID) (*CombinedView, error) {
	if s.cache != nil {
		view, err := s.cache.Get(ctx, accountID)
		if err == nil {
			s.metrics.IncCache("hit")
			return view, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "view cache read failed", "error", err)
		}
		s.metrics.IncCache("miss")
	}

	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	view, err := s.loadView(ctx, acct)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, accountID, view); err != nil {
			s.logger.WarnContext(ctx, "view cache write failed", "error", err)
		}
	}
	return view, nil
}

// IsProfileComplete reports whether the account's profile clears the
// onboarding bar. The gate calls this on every complete-profile path.
func (s *Service) IsProfileComplete(ctx context.Context, accountID id.AccountID) (bool, error) {
	view, err := s.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return view.ProfileComplete(), nil
}

// UpsertProfile merges a partial revision into the account's profile,
// creating the profile on first submission. Selection fields are owned by
// SetSelection and survive any form payload unchanged.
func (s *Service) UpsertProfile(ctx context.Context, accountID id.AccountID, update *profile.Update) (*profile.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	// The account must still exist; a dangling session must not be able
	// to recreate state for a deleted account.
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	now := s.now()
	prof, err := s.profiles.FindByAccount(ctx, accountID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
		}
		prof = profile.New(accountID, now)
	}

	prof.ApplyUpdate(update, now)
	if err := s.profiles.Save(ctx, prof); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}

	s.invalidate(ctx, accountID)
	s.logAudit(ctx, string(audit.EventProfileUpdated), accountID)
	return prof, nil
}

// SetSelection records the scoring outcome for an account. This is the
// only write path for Selected and PredictionPercentage.
func (s *Service) SetSelection(ctx context.Context, accountID id.AccountID, selected bool, predictionPercentage float64) (*profile.Profile, error) {
	if predictionPercentage < 0 || predictionPercentage > 100 {
		return nil, dErrors.New(dErrors.CodeValidation, "prediction percentage must be between 0 and 100")
	}

	prof, err := s.profiles.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	prof.ApplySelection(selected, predictionPercentage, s.now())
	if err := s.profiles.Save(ctx, prof); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}

	s.invalidate(ctx, accountID)
	s.logAudit(ctx, string(audit.EventSelectionUpdated), accountID,
		"selected", selected)
	return prof, nil
}

func (s *Service) loadView(ctx context.Context, acct *account.Account) (*CombinedView, error) {
	prof, err := s.profiles.FindByAccount(ctx, acct.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &CombinedView{Account: acct}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return &CombinedView{Account: acct, Profile: prof}, nil
}

func (s *Service) invalidate(ctx context.Context, accountID id.AccountID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, accountID); err != nil {
		s.logger.WarnContext(ctx, "view cache invalidation failed",
			"account_id", accountID, "error", err)
	}
}

func (s *Service) noteAuthFailure(ctx context.Context, accountID id.AccountID, reason string) {
	s.logAudit(ctx, string(audit.EventAuthFailed), accountID, "reason", reason)
	s.metrics.IncLogin("failure")
}

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeInvalidCredentials, "invalid credentials")
}

func validateRegistration(in *RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)

	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if in.Mobile == "" {
		return dErrors.New(dErrors.CodeValidation, "a mobile number is required")
	}
	if len(in.Password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event string, accountID id.AccountID, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	evt := audit.Event{
		AccountID: accountID,
		Action:    event,
		RequestID: requestcontext.RequestID(ctx),
	}
	if !accountID.IsNil() {
		evt.Subject = accountID.String()
	}
	_ = s.auditPublisher.Emit(ctx, evt)
}
