package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/northwind-admin/northwind-admin/internal/auth"
	"github.com/northwind-admin/northwind-admin/internal/shared"
	"github.com/northwind-admin/northwind-admin/internal/view"
	_ "github.com/northwind-admin/northwind-admin/testing"
)

type stubRepo struct {
	operator *auth.Operator
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Operator, error) {
	if s.operator == nil || !strings.EqualFold(s.operator.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.operator, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, operatorID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = map[string]int64{}
	}
	s.sessions[id] = operatorID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type harness struct {
	router   http.Handler
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
}

func newHarness(t *testing.T, repo auth.Repository) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	handler := auth.NewHandler(nil, auth.NewService(repo), templates, sessionManager, csrfManager)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	r.With(auth.RequireOperator).Get("/dashboard/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("products for " + shared.OperatorFromContext(r.Context()).Email))
	})
	return &harness{router: r, sessions: sessionManager, csrf: csrfManager}
}

// serve runs req inside the session identified by sessionID ("" for a new
// one) and returns the committed session.
func (h *harness) serve(t *testing.T, req *http.Request, sessionID string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: h.sessions.CookieName(), Value: sessionID})
	}
	sess, err := h.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, req)
	require.NoError(t, h.sessions.Commit(ctx, res, req, sess))
	return res, sess
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func activeOperator(t *testing.T) *auth.Operator {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.Operator{ID: 1, Email: "nancy@northwind.test", Name: "Nancy", PasswordHash: string(hashed), IsActive: true}
}

func TestLoginPage(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	res, sess := h.serve(t, httptest.NewRequest(http.MethodGet, "/auth/login?next=/dashboard/products/add", nil), "")

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.Contains(t, res.Body.String(), `value="/dashboard/products/add"`)
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, &stubRepo{operator: activeOperator(t)})
	_, sess := h.serve(t, httptest.NewRequest(http.MethodGet, "/auth/login", nil), "")

	res, _ := h.serve(t, postForm("/auth/login", url.Values{
		"email":    {"nancy@northwind.test"},
		"password": {"wrongpass"},
	}), sess.ID)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid email or password")
}

func TestLoginValidationErrors(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	res, _ := h.serve(t, postForm("/auth/login", url.Values{"email": {"not-an-email"}, "password": {"short"}}), "")

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Enter a valid email address")
	assert.Contains(t, res.Body.String(), "Password must be at least 8 characters")
}

func TestLoginSuccessThenDashboard(t *testing.T) {
	repo := &stubRepo{operator: activeOperator(t)}
	h := newHarness(t, repo)

	res, sess := h.serve(t, postForm("/auth/login", url.Values{
		"email":    {"Nancy@northwind.test"},
		"password": {"correctpass"},
		"next":     {"/dashboard/products"},
	}), "")
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/products", res.Header().Get("Location"))
	assert.Equal(t, int64(1), repo.sessions[sess.ID])

	res, _ = h.serve(t, httptest.NewRequest(http.MethodGet, "/dashboard/products", nil), sess.ID)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "products for nancy@northwind.test", res.Body.String())
}

func TestLoginRejectsForeignRedirect(t *testing.T) {
	h := newHarness(t, &stubRepo{operator: activeOperator(t)})

	res, _ := h.serve(t, postForm("/auth/login", url.Values{
		"email":    {"nancy@northwind.test"},
		"password": {"correctpass"},
		"next":     {"//evil.example"},
	}), "")

	assert.Equal(t, auth.DefaultLanding, res.Header().Get("Location"))
}

func TestRequireOperatorRedirects(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	res, _ := h.serve(t, httptest.NewRequest(http.MethodGet, "/dashboard/products", nil), "")

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login?next=%2Fdashboard%2Fproducts", res.Header().Get("Location"))
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := &stubRepo{operator: activeOperator(t)}
	h := newHarness(t, repo)
	_, sess := h.serve(t, postForm("/auth/login", url.Values{
		"email":    {"nancy@northwind.test"},
		"password": {"correctpass"},
	}), "")

	res, _ := h.serve(t, postForm("/auth/logout", nil), sess.ID)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.NotContains(t, repo.sessions, sess.ID)

	res, _ = h.serve(t, httptest.NewRequest(http.MethodGet, "/dashboard/products", nil), sess.ID)
	assert.Equal(t, http.StatusSeeOther, res.Code)
}
