package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sahay/internal/identity"
	"sahay/internal/platform/metrics"
	"sahay/internal/profile"
	"sahay/internal/session"
	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
	"sahay/pkg/platform/audit"
	"sahay/pkg/platform/httputil"
	"sahay/pkg/requestcontext"
)

// IdentityService is the slice of the identity service the handlers use.
type IdentityService interface {
	Register(ctx context.Context, in identity.RegisterInput) (*identity.CombinedView, error)
	Authenticate(ctx context.Context, identifier, password string) (*identity.CombinedView, error)
	GetByID(ctx context.Context, accountID id.AccountID) (*identity.CombinedView, error)
	IsProfileComplete(ctx context.Context, accountID id.AccountID) (bool, error)
	UpsertProfile(ctx context.Context, accountID id.AccountID, update *profile.Update) (*profile.Profile, error)
	SetSelection(ctx context.Context, accountID id.AccountID, selected bool, predictionPercentage float64) (*profile.Profile, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// SessionTTLs carries the three cookie lifetimes from configuration.
type SessionTTLs struct {
	Full       time.Duration
	RememberMe time.Duration
	Temporary  time.Duration
}

// AuthHandler owns POST /auth, the single action-dispatched auth endpoint.
type AuthHandler struct {
	svc     IdentityService
	codec   *session.Codec
	ttls    SessionTTLs
	secure  bool
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
}

type AuthOption func(*AuthHandler)

func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(h *AuthHandler) {
		h.metrics = m
	}
}

func WithAuthAuditPublisher(publisher AuditPublisher) AuthOption {
	return func(h *AuthHandler) {
		h.audit = publisher
	}
}

func NewAuthHandler(svc IdentityService, codec *session.Codec, ttls SessionTTLs, secure bool, logger *slog.Logger, opts ...AuthOption) *AuthHandler {
	h := &AuthHandler{
		svc:    svc,
		codec:  codec,
		ttls:   ttls,
		secure: secure,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the auth routes with the chi router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth", h.handleAuth)
	r.Get("/auth/login", h.handleLoginPage)
}

// handleLoginPage serves the login page data. The gate has already
// bounced visitors that hold a full session.
func (h *AuthHandler) handleLoginPage(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ok())
}

func (h *AuthHandler) handleAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[authRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	switch req.Action {
	case actionRegister:
		h.register(w, r, req)
	case actionLogin:
		h.login(w, r, req)
	case actionLogout:
		h.logout(w, r)
	case actionConvert:
		h.convertToFullSession(w, r)
	case actionResetPassword:
		h.resetPassword(w)
	default:
		h.logger.WarnContext(ctx, "unknown auth action",
			"request_id", requestID, "action", req.Action)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown action"))
	}
}

// register creates the account and signs the visitor in. The profile stub
// is never complete at this point, so the session issued is the
// onboarding-scoped temporary one.
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, req *authRequest) {
	ctx := r.Context()

	view, err := h.svc.Register(ctx, identity.RegisterInput{
		Email:           req.Email,
		Mobile:          req.Mobile,
		Password:        req.Password,
		FullName:        req.FullName,
		Gender:          req.Gender,
		WhatsappUpdates: req.WhatsappUpdates,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestcontext.RequestID(ctx), "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	if err := h.issue(w, view, session.KindTemporary, h.ttls.Temporary); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session"))
		return
	}

	body := okRedirect("/detailed-info")
	body.User = view
	httputil.WriteJSON(w, http.StatusCreated, body)
}

// login issues a full session when the profile is complete, a temporary
// one otherwise. rememberMe stretches the full-session lifetime.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, req *authRequest) {
	ctx := r.Context()

	view, err := h.svc.Authenticate(ctx, req.Identifier, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body successBody
	if view.ProfileComplete() {
		ttl := h.ttls.Full
		if req.RememberMe {
			ttl = h.ttls.RememberMe
		}
		if err := h.issue(w, view, session.KindFull, ttl); err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session"))
			return
		}
		body = okRedirect("/dashboard")
	} else {
		if err := h.issue(w, view, session.KindTemporary, h.ttls.Temporary); err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session"))
			return
		}
		body = okRedirect("/detailed-info")
	}

	body.User = view
	httputil.WriteJSON(w, http.StatusOK, body)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session.ClearAll(w, h.secure)
	if accountID := requestcontext.AccountID(ctx); !accountID.IsNil() {
		h.emitAudit(ctx, audit.EventLoggedOut, accountID)
	}
	httputil.WriteJSON(w, http.StatusOK, okRedirect("/"))
}

// convertToFullSession promotes a temporary session once the profile
// clears the onboarding bar. Anything else is a 400.
func (h *AuthHandler) convertToFullSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if requestcontext.Kind(ctx) != requestcontext.SessionTemporary {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "no temporary session to convert"))
		return
	}
	accountID := requestcontext.AccountID(ctx)

	complete, err := h.svc.IsProfileComplete(ctx, accountID)
	if err != nil {
		h.purgeIfGone(w, ctx, accountID, err)
		return
	}
	if !complete {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "profile is not complete"))
		return
	}

	view, err := h.svc.GetByID(ctx, accountID)
	if err != nil {
		h.purgeIfGone(w, ctx, accountID, err)
		return
	}

	if err := h.issue(w, view, session.KindFull, h.ttls.Full); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session"))
		return
	}

	h.emitAudit(ctx, audit.EventSessionPromoted, accountID)
	if h.metrics != nil {
		h.metrics.SessionsPromoted.Inc()
	}
	httputil.WriteJSON(w, http.StatusOK, okRedirect("/dashboard"))
}

// resetPassword is a stub: the response is identical whether or not the
// identifier maps to an account, so it cannot be used to probe existence.
func (h *AuthHandler) resetPassword(w http.ResponseWriter) {
	body := ok()
	body.Message = "if the account exists, reset instructions have been sent"
	httputil.WriteJSON(w, http.StatusOK, body)
}

// issue sets the session cookie for the view and clears the other tier's
// cookie so the two can never coexist on a client.
func (h *AuthHandler) issue(w http.ResponseWriter, view *identity.CombinedView, kind session.Kind, ttl time.Duration) error {
	payload := session.Payload{
		AccountID: view.Account.ID,
		Kind:      kind,
	}
	if view.Profile != nil {
		payload.FullName = view.Profile.FullName
		payload.Gender = view.Profile.Gender
	}
	if err := h.codec.Issue(w, payload, ttl, h.secure); err != nil {
		return err
	}
	if kind == session.KindFull {
		session.Clear(w, session.TempCookieName, h.secure)
	} else {
		session.Clear(w, session.CookieName, h.secure)
	}
	return nil
}

// purgeIfGone handles service errors during session operations: a
// vanished account costs the client both cookies, anything else passes
// through as-is.
func (h *AuthHandler) purgeIfGone(w http.ResponseWriter, ctx context.Context, accountID id.AccountID, err error) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		session.ClearAll(w, h.secure)
		h.emitAudit(ctx, audit.EventSessionPurged, accountID)
	}
	httputil.WriteError(w, err)
}

func (h *AuthHandler) emitAudit(ctx context.Context, event audit.AuditEvent, accountID id.AccountID) {
	if h.audit == nil {
		return
	}
	_ = h.audit.Emit(ctx, audit.Event{
		AccountID: accountID,
		Subject:   accountID.String(),
		Action:    string(event),
		RequestID: requestcontext.RequestID(ctx),
	})
}
