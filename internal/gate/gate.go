// Package gate implements the per-request access state machine. Every
// request resolves to one of four states (anonymous, pending onboarding,
// authenticated, invalid session) before any handler runs, and the gate is
// the only component that reads session cookies.
package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sahay/internal/platform/metrics"
	"sahay/internal/session"
	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
	"sahay/pkg/platform/httputil"
	"sahay/pkg/requestcontext"
)

// Redirect targets. Redirects use 307 so the method survives.
const (
	loginPath      = "/auth/login"
	onboardingPath = "/detailed-info"
	dashboardPath  = "/dashboard"
)

// ProfileChecker is the slice of the identity service the gate needs. A
// not-found error means the account behind the session no longer exists.
type ProfileChecker interface {
	IsProfileComplete(ctx context.Context, accountID id.AccountID) (bool, error)
}

// Gate is the access control middleware.
type Gate struct {
	codec   *session.Codec
	checker ProfileChecker
	policy  *Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	secure  bool
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func WithPolicy(p *Policy) Option {
	return func(g *Gate) {
		g.policy = p
	}
}

// WithSecureCookies controls the Secure attribute on cookies the gate
// purges. Matches the codec's production setting.
func WithSecureCookies(secure bool) Option {
	return func(g *Gate) {
		g.secure = secure
	}
}

func New(codec *session.Codec, checker ProfileChecker, opts ...Option) *Gate {
	g := &Gate{
		codec:   codec,
		checker: checker,
		policy:  DefaultPolicy(),
		logger:  slog.Default(),
		tracer:  otel.Tracer("sahay/internal/gate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// state is the resolved request state before authorization.
type state struct {
	payload *session.Payload
	kind    requestcontext.SessionKind
}

// Middleware runs the state machine for every request.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := g.tracer.Start(r.Context(), "gate.decide",
			trace.WithAttributes(attribute.String("http.path", r.URL.Path)))
		defer span.End()

		st := g.resolve(w, r)
		outcome, proceed := g.authorize(ctx, w, r, st)

		span.SetAttributes(attribute.String("gate.outcome", outcome))
		g.metrics.IncGateDecision(outcome)
		if !proceed {
			return
		}

		if st.kind != requestcontext.SessionNone {
			ctx = requestcontext.WithAccountID(ctx, st.payload.AccountID)
			ctx = requestcontext.WithSessionKind(ctx, st.kind)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve decodes cookies into a request state. A cookie that fails to
// decode is expired on the response and does not stop resolution; the
// request degrades to the next tier instead of failing.
func (g *Gate) resolve(w http.ResponseWriter, r *http.Request) state {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		payload, err := g.codec.Decode(cookie.Value)
		if err == nil && payload.Kind == session.KindFull {
			return state{payload: payload, kind: requestcontext.SessionFull}
		}
		session.Clear(w, session.CookieName, g.secure)
	}

	if cookie, err := r.Cookie(session.TempCookieName); err == nil {
		payload, err := g.codec.Decode(cookie.Value)
		if err == nil && payload.Kind == session.KindTemporary {
			return state{payload: payload, kind: requestcontext.SessionTemporary}
		}
		session.Clear(w, session.TempCookieName, g.secure)
	}

	return state{kind: requestcontext.SessionNone}
}

// authorize applies the path policy to a resolved state. It returns the
// decision outcome label and whether the request may proceed.
func (g *Gate) authorize(ctx context.Context, w http.ResponseWriter, r *http.Request, st state) (string, bool) {
	path := r.URL.Path

	if g.policy.Public(path) {
		// A logged-in visitor has no business on the login page.
		if st.kind == requestcontext.SessionFull && isLoginPage(path) {
			http.Redirect(w, r, dashboardPath, http.StatusTemporaryRedirect)
			return "redirect_dashboard", false
		}
		return "allow", true
	}

	switch st.kind {
	case requestcontext.SessionNone:
		return g.deny(w, r, loginPath)

	case requestcontext.SessionTemporary:
		if g.policy.OnboardingScoped(path) {
			return "allow", true
		}
		// A temporary session grants nothing beyond onboarding.
		return g.deny(w, r, onboardingPath)

	default: // full session
		if !g.policy.RequiresCompleteProfile(path) {
			return "allow", true
		}
		complete, err := g.checker.IsProfileComplete(ctx, st.payload.AccountID)
		if err != nil {
			return g.failClosed(w, r, st, err)
		}
		if !complete {
			http.Redirect(w, r, onboardingPath, http.StatusTemporaryRedirect)
			return "redirect_onboarding", false
		}
		return "allow", true
	}
}

// deny rejects an unauthorized request: JSON 401 for API paths, a
// method-preserving redirect for pages.
func (g *Gate) deny(w http.ResponseWriter, r *http.Request, target string) (string, bool) {
	if isAPI(r.URL.Path) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "unauthorized", false
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	if target == onboardingPath {
		return "redirect_onboarding", false
	}
	return "redirect_login", false
}

// failClosed handles store failures during the completeness check. The
// request is always rejected; an account that vanished additionally loses
// both cookies.
func (g *Gate) failClosed(w http.ResponseWriter, r *http.Request, st state, err error) (string, bool) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		session.ClearAll(w, g.secure)
		g.logger.WarnContext(r.Context(), "session referenced missing account",
			"account_id", st.payload.AccountID, "path", r.URL.Path)
		if isAPI(r.URL.Path) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return "reject", false
		}
		http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
		return "reject", false
	}

	g.logger.ErrorContext(r.Context(), "profile completeness check failed",
		"account_id", st.payload.AccountID, "path", r.URL.Path, "error", err)
	if isAPI(r.URL.Path) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal error"))
		return "reject", false
	}
	http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
	return "reject", false
}

func isAPI(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func isLoginPage(path string) bool {
	return path == loginPath
}
