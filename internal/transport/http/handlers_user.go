package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sahay/internal/session"
	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
	"sahay/pkg/platform/audit"
	"sahay/pkg/platform/httputil"
	"sahay/pkg/requestcontext"
)

// UserHandler owns the JSON API under /api.
type UserHandler struct {
	svc    IdentityService
	secure bool
	logger *slog.Logger
	audit  AuditPublisher
}

type UserOption func(*UserHandler)

func WithUserAuditPublisher(publisher AuditPublisher) UserOption {
	return func(h *UserHandler) {
		h.audit = publisher
	}
}

func NewUserHandler(svc IdentityService, secure bool, logger *slog.Logger, opts ...UserOption) *UserHandler {
	h := &UserHandler{
		svc:    svc,
		secure: secure,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the API routes with the chi router.
func (h *UserHandler) Register(r chi.Router) {
	r.Get("/api/user", h.handleGetUser)
	r.Post("/api/user-details", h.handleUpsertDetails)
	r.Patch("/api/user-details", h.handleSetSelection)
}

// handleGetUser returns the combined view for the session's account. An
// account that vanished after session issuance yields a 404 and costs the
// client both cookies.
func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)

	view, err := h.svc.GetByID(ctx, accountID)
	if err != nil {
		h.handleLookupError(w, ctx, accountID, err)
		return
	}

	body := ok()
	body.User = view
	httputil.WriteJSON(w, http.StatusOK, body)
}

func (h *UserHandler) handleUpsertDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	accountID := requestcontext.AccountID(ctx)

	req, okBody := httputil.DecodeAndPrepare[profileUpdateRequest](w, r, h.logger, ctx, requestID)
	if !okBody {
		return
	}

	prof, err := h.svc.UpsertProfile(ctx, accountID, req.toUpdate())
	if err != nil {
		h.handleLookupError(w, ctx, accountID, err)
		return
	}

	body := ok()
	body.Profile = prof
	httputil.WriteJSON(w, http.StatusOK, body)
}

// handleSetSelection is the scoring write. The gate admits temporary
// sessions to this path for the onboarding form's POST, so the PATCH
// restriction to full sessions is enforced here.
func (h *UserHandler) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if requestcontext.Kind(ctx) != requestcontext.SessionFull {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "a full session is required"))
		return
	}
	accountID := requestcontext.AccountID(ctx)

	req, okBody := httputil.DecodeAndPrepare[selectionRequest](w, r, h.logger, ctx, requestID)
	if !okBody {
		return
	}

	prof, err := h.svc.SetSelection(ctx, accountID, req.Selected, req.PredictionPercentage)
	if err != nil {
		h.handleLookupError(w, ctx, accountID, err)
		return
	}

	body := ok()
	body.Profile = prof
	httputil.WriteJSON(w, http.StatusOK, body)
}

func (h *UserHandler) handleLookupError(w http.ResponseWriter, ctx context.Context, accountID id.AccountID, err error) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		h.logger.WarnContext(ctx, "session referenced missing record",
			"request_id", requestcontext.RequestID(ctx), "account_id", accountID)
		session.ClearAll(w, h.secure)
		if h.audit != nil {
			_ = h.audit.Emit(ctx, audit.Event{
				AccountID: accountID,
				Subject:   accountID.String(),
				Action:    string(audit.EventSessionPurged),
				RequestID: requestcontext.RequestID(ctx),
			})
		}
		httputil.WriteError(w, err)
		return
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "identity operation failed",
			"request_id", requestcontext.RequestID(ctx), "error", err.Error())
	}
	httputil.WriteError(w, err)
}
