package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sahay/internal/platform/metrics"
	"sahay/internal/session"
	dErrors "sahay/pkg/domain-errors"
	"sahay/pkg/platform/audit"
	"sahay/pkg/platform/httputil"
	"sahay/pkg/requestcontext"
)

// PageHandler serves the page-data endpoints. The gate has already done
// the heavy lifting: anything reaching /dashboard or /settings holds a
// full session over a complete profile.
type PageHandler struct {
	svc     IdentityService
	codec   *session.Codec
	ttls    SessionTTLs
	secure  bool
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
}

type PageOption func(*PageHandler)

func WithPageMetrics(m *metrics.Metrics) PageOption {
	return func(h *PageHandler) {
		h.metrics = m
	}
}

func WithPageAuditPublisher(publisher AuditPublisher) PageOption {
	return func(h *PageHandler) {
		h.audit = publisher
	}
}

func NewPageHandler(svc IdentityService, codec *session.Codec, ttls SessionTTLs, secure bool, logger *slog.Logger, opts ...PageOption) *PageHandler {
	h := &PageHandler{
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

// Register registers the page routes with the chi router.
func (h *PageHandler) Register(r chi.Router) {
	r.Get("/detailed-info", h.handleOnboardingData)
	r.Post("/detailed-info", h.handleOnboardingSubmit)
	r.Get("/dashboard", h.handlePageData)
	r.Get("/dashboard/profile", h.handlePageData)
	r.Get("/settings", h.handlePageData)
}

// handleOnboardingData returns the current profile so the onboarding form
// can prefill previously submitted fields.
func (h *PageHandler) handleOnboardingData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)

	view, err := h.svc.GetByID(ctx, accountID)
	if err != nil {
		h.lookupError(w, r, err)
		return
	}

	body := ok()
	body.User = view
	httputil.WriteJSON(w, http.StatusOK, body)
}

// handleOnboardingSubmit merges the submitted fields and, when the profile
// becomes complete under a temporary session, promotes it to a full one in
// the same response.
func (h *PageHandler) handleOnboardingSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	accountID := requestcontext.AccountID(ctx)

	req, okBody := httputil.DecodeAndPrepare[profileUpdateRequest](w, r, h.logger, ctx, requestID)
	if !okBody {
		return
	}

	prof, err := h.svc.UpsertProfile(ctx, accountID, req.toUpdate())
	if err != nil {
		h.lookupError(w, r, err)
		return
	}

	body := ok()
	body.Profile = prof

	if prof.Complete() && requestcontext.Kind(ctx) == requestcontext.SessionTemporary {
		view, err := h.svc.GetByID(ctx, accountID)
		if err != nil {
			h.lookupError(w, r, err)
			return
		}
		payload := session.Payload{AccountID: accountID, Kind: session.KindFull}
		if view.Profile != nil {
			payload.FullName = view.Profile.FullName
			payload.Gender = view.Profile.Gender
		}
		if err := h.codec.Issue(w, payload, h.ttls.Full, h.secure); err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session"))
			return
		}
		session.Clear(w, session.TempCookieName, h.secure)

		if h.audit != nil {
			_ = h.audit.Emit(ctx, audit.Event{
				AccountID: accountID,
				Subject:   accountID.String(),
				Action:    string(audit.EventSessionPromoted),
				RequestID: requestID,
			})
		}
		if h.metrics != nil {
			h.metrics.SessionsPromoted.Inc()
		}
		body.Redirect = "/dashboard"
	}

	httputil.WriteJSON(w, http.StatusOK, body)
}

// handlePageData serves the authenticated page payload for the dashboard,
// profile and settings views.
func (h *PageHandler) handlePageData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.svc.GetByID(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		h.lookupError(w, r, err)
		return
	}

	body := ok()
	body.User = view
	httputil.WriteJSON(w, http.StatusOK, body)
}

// lookupError on pages mirrors the gate's policy for dead sessions: purge
// and send the visitor back to login.
func (h *PageHandler) lookupError(w http.ResponseWriter, r *http.Request, err error) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		session.ClearAll(w, h.secure)
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return
	}
	h.logger.ErrorContext(r.Context(), "page data load failed",
		"request_id", requestcontext.RequestID(r.Context()), "error", err.Error())
	httputil.WriteError(w, err)
}
