package gate

//go:generate mockgen -source=gate.go -destination=mocks/mocks.go -package=mocks ProfileChecker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sahay/internal/gate/mocks"
	"sahay/internal/session"
	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
	"sahay/pkg/requestcontext"
)

type stubChecker struct {
	complete bool
	err      error
}

func (s *stubChecker) IsProfileComplete(context.Context, id.AccountID) (bool, error) {
	return s.complete, s.err
}

type harness struct {
	gate  *Gate
	codec *session.Codec
}

func newHarness(t *testing.T, checker ProfileChecker) *harness {
	t.Helper()
	codec := session.NewCodec("test-signing-key")
	return &harness{
		gate:  New(codec, checker),
		codec: codec,
	}
}

// do routes a request through the gate into a handler that records the
// context the gate attached.
func (h *harness) do(t *testing.T, method, path string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var seen *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.gate.Middleware(next).ServeHTTP(rec, req)
	return rec, seen
}

func (h *harness) cookie(t *testing.T, kind session.Kind, accountID id.AccountID, ttl time.Duration) *http.Cookie {
	t.Helper()
	value, err := h.codec.Encode(session.Payload{AccountID: accountID, Kind: kind}, ttl)
	require.NoError(t, err)
	name := session.CookieName
	if kind == session.KindTemporary {
		name = session.TempCookieName
	}
	return &http.Cookie{Name: name, Value: value}
}

func purgedCookies(rec *httptest.ResponseRecorder) map[string]bool {
	purged := make(map[string]bool)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			purged[c.Name] = true
		}
	}
	return purged
}

func TestAnonymous_PublicPathAllowed(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	rec, seen := h.do(t, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, requestcontext.SessionNone, requestcontext.Kind(seen.Context()))
}

func TestAnonymous_ProtectedPageRedirectsToLogin(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	rec, seen := h.do(t, http.MethodGet, "/dashboard")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Nil(t, seen)
}

func TestAnonymous_APIGets401JSON(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	rec, seen := h.do(t, http.MethodGet, "/api/user")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, string(dErrors.CodeUnauthorized), body.Error)
}

func TestFullSession_ProtectedPathAllowed(t *testing.T) {
	h := newHarness(t, &stubChecker{complete: true})
	accountID := id.NewAccountID()

	rec, seen := h.do(t, http.MethodGet, "/api/user",
		h.cookie(t, session.KindFull, accountID, time.Hour))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, accountID, requestcontext.AccountID(seen.Context()))
	assert.Equal(t, requestcontext.SessionFull, requestcontext.Kind(seen.Context()))
}

func TestFullSession_IncompleteProfileRedirectsToOnboarding(t *testing.T) {
	h := newHarness(t, &stubChecker{complete: false})

	rec, seen := h.do(t, http.MethodGet, "/dashboard",
		h.cookie(t, session.KindFull, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/detailed-info", rec.Header().Get("Location"))
	assert.Nil(t, seen)
}

func TestFullSession_CompleteProfileReachesDashboard(t *testing.T) {
	h := newHarness(t, &stubChecker{complete: true})

	rec, seen := h.do(t, http.MethodGet, "/dashboard/profile",
		h.cookie(t, session.KindFull, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, seen)
}

func TestFullSession_LoginPageRedirectsToDashboard(t *testing.T) {
	h := newHarness(t, &stubChecker{complete: true})

	rec, seen := h.do(t, http.MethodGet, "/auth/login",
		h.cookie(t, session.KindFull, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Nil(t, seen)
}

func TestTemporarySession_OnboardingPathsAllowed(t *testing.T) {
	h := newHarness(t, &stubChecker{})
	accountID := id.NewAccountID()
	cookie := h.cookie(t, session.KindTemporary, accountID, time.Hour)

	for _, path := range []string{"/detailed-info", "/api/user-details"} {
		rec, seen := h.do(t, http.MethodPost, path, cookie)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		require.NotNil(t, seen, path)
		assert.Equal(t, requestcontext.SessionTemporary, requestcontext.Kind(seen.Context()))
		assert.Equal(t, accountID, requestcontext.AccountID(seen.Context()))
	}
}

func TestTemporarySession_DashboardRedirectsToOnboarding(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	rec, seen := h.do(t, http.MethodGet, "/dashboard",
		h.cookie(t, session.KindTemporary, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/detailed-info", rec.Header().Get("Location"))
	assert.Nil(t, seen)
}

func TestTemporarySession_APIOutsideScopeGets401(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	rec, seen := h.do(t, http.MethodGet, "/api/user",
		h.cookie(t, session.KindTemporary, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestMalformedCookie_DegradesToAnonymousAndPurges(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	rec, seen := h.do(t, http.MethodGet, "/dashboard",
		&http.Cookie{Name: session.CookieName, Value: "not-a-token"})

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Nil(t, seen)
	assert.True(t, purgedCookies(rec)[session.CookieName], "undecodable cookie should be expired")
}

func TestExpiredCookie_DegradesToAnonymous(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	rec, _ := h.do(t, http.MethodGet, "/dashboard",
		h.cookie(t, session.KindFull, id.NewAccountID(), -time.Minute))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.True(t, purgedCookies(rec)[session.CookieName])
}

func TestInvalidFullCookie_FallsBackToTempCookie(t *testing.T) {
	h := newHarness(t, &stubChecker{})
	accountID := id.NewAccountID()

	rec, seen := h.do(t, http.MethodGet, "/detailed-info",
		&http.Cookie{Name: session.CookieName, Value: "garbage"},
		h.cookie(t, session.KindTemporary, accountID, time.Hour))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, requestcontext.SessionTemporary, requestcontext.Kind(seen.Context()))
	assert.True(t, purgedCookies(rec)[session.CookieName])
}

func TestKindMismatch_TempPayloadInFullCookieRejected(t *testing.T) {
	h := newHarness(t, &stubChecker{})

	// A temporary-kind payload smuggled into the full-session cookie must
	// not grant full access.
	value, err := h.codec.Encode(session.Payload{
		AccountID: id.NewAccountID(),
		Kind:      session.KindTemporary,
	}, time.Hour)
	require.NoError(t, err)

	rec, seen := h.do(t, http.MethodGet, "/dashboard",
		&http.Cookie{Name: session.CookieName, Value: value})

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Nil(t, seen)
}

func TestStoreError_FailsClosedOnPages(t *testing.T) {
	h := newHarness(t, &stubChecker{err: dErrors.Wrap(errors.New("connection refused"), dErrors.CodeInternal, "store down")})

	rec, seen := h.do(t, http.MethodGet, "/dashboard",
		h.cookie(t, session.KindFull, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Nil(t, seen)
}

func TestAccountGone_PurgesBothCookies(t *testing.T) {
	h := newHarness(t, &stubChecker{err: dErrors.New(dErrors.CodeNotFound, "account not found")})

	rec, seen := h.do(t, http.MethodGet, "/dashboard",
		h.cookie(t, session.KindFull, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Nil(t, seen)

	purged := purgedCookies(rec)
	assert.True(t, purged[session.CookieName])
	assert.True(t, purged[session.TempCookieName])
}

func TestPolicy_PrefixMatchingIsSegmentAligned(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.RequiresCompleteProfile("/dashboard"))
	assert.True(t, p.RequiresCompleteProfile("/dashboard/profile"))
	assert.False(t, p.RequiresCompleteProfile("/dashboards"))

	assert.True(t, p.Public("/auth/login"))
	assert.True(t, p.Public("/"))
	assert.False(t, p.Public("/dashboard"))

	assert.True(t, p.OnboardingScoped("/api/user-details"))
	assert.False(t, p.OnboardingScoped("/api/user"))
}

func TestChecker_ConsultedOncePerProtectedRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockProfileChecker(ctrl)
	h := newHarness(t, checker)
	accountID := id.NewAccountID()

	checker.EXPECT().
		IsProfileComplete(gomock.Any(), accountID).
		Return(true, nil).
		Times(1)

	rec, _ := h.do(t, http.MethodGet, "/dashboard",
		h.cookie(t, session.KindFull, accountID, time.Hour))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChecker_NotConsultedOnOnboardingPaths(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockProfileChecker(ctrl)
	h := newHarness(t, checker)

	// No EXPECT: any call would fail the test. The onboarding scope admits
	// temporary sessions without a completeness lookup.
	rec, seen := h.do(t, http.MethodGet, "/detailed-info",
		h.cookie(t, session.KindTemporary, id.NewAccountID(), time.Hour))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
}
