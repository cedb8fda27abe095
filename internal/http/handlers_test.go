package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChielvanV/BugBeheer/internal/config"
	"github.com/ChielvanV/BugBeheer/internal/domain"
	"github.com/ChielvanV/BugBeheer/internal/services"
)

// stubService returns canned results so the handler tests only exercise
// routing, gating and status-code mapping.
type stubService struct {
	bug *domain.BugRecord
	err error
}

func (s *stubService) Create(ctx context.Context, in services.BugInput) (*domain.BugRecord, error) {
	return s.bug, s.err
}

func (s *stubService) Update(ctx context.Context, id string, in services.BugInput) (*domain.BugRecord, error) {
	return s.bug, s.err
}

func (s *stubService) Complete(ctx context.Context, id string) (*domain.BugRecord, error) {
	return s.bug, s.err
}

func (s *stubService) Delete(ctx context.Context, id string) error { return s.err }

func (s *stubService) DeleteAllNonReference(ctx context.Context) (int64, int64, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	return 2, 3, nil
}

func (s *stubService) Get(ctx context.Context, id string) (*domain.BugRecord, error) {
	return s.bug, s.err
}

func (s *stubService) List(ctx context.Context, opts services.ViewOptions) ([]domain.BugRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.bug == nil {
		return []domain.BugRecord{}, nil
	}
	return []domain.BugRecord{*s.bug}, nil
}

func (s *stubService) Matrix(ctx context.Context, opts services.ViewOptions) ([]domain.MatrixCell, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.GroupMatrix(nil), nil
}

func testRouter(t *testing.T, svc bugService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		AppEnv:       "test",
		AuthUsername: "admin",
		AuthPassword: "hunter2",
		SessionTTL:   5 * time.Minute,
	}
	sessions := services.NewSessions(cfg, zerolog.Nop())
	r := NewRouter(cfg, zerolog.Nop(), svc, sessions)

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"username":"admin","password":"hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, 300, resp.ExpiresIn)
	return r, resp.Token
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz_Ungated(t *testing.T) {
	r, _ := testRouter(t, &stubService{})
	w := do(r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	r, _ := testRouter(t, &stubService{})
	w := do(r, http.MethodPost, "/login", "", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatedRoutes_RequireSession(t *testing.T) {
	r, _ := testRouter(t, &stubService{})
	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/bugs"},
		{http.MethodGet, "/bugs/matrix"},
		{http.MethodPost, "/bugs"},
		{http.MethodGet, "/bugs/abc"},
		{http.MethodPut, "/bugs/abc"},
		{http.MethodPost, "/bugs/abc/complete"},
		{http.MethodDelete, "/bugs/abc"},
		{http.MethodDelete, "/bugs"},
	} {
		w := do(r, rt.method, rt.path, "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: no", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: gone", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: twice", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: down", domain.ErrStorage), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r, token := testRouter(t, &stubService{err: tc.err})
		w := do(r, http.MethodPost, "/bugs/abc/complete", token, "")
		assert.Equal(t, tc.want, w.Code, "error %v", tc.err)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	}
}

func TestStorageFailure_MessageIsGeneric(t *testing.T) {
	r, token := testRouter(t, &stubService{err: fmt.Errorf("%w: dial tcp: refused", domain.ErrStorage)})
	w := do(r, http.MethodGet, "/bugs", token, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")
}

func TestCreateBug_Created(t *testing.T) {
	bug := &domain.BugRecord{ID: "01ABC", Description: "fix X", Impact: 4, Likelihood: 3, CreatedAt: 1}
	r, token := testRouter(t, &stubService{bug: bug})
	w := do(r, http.MethodPost, "/bugs", token, `{"description":"fix X"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "01ABC", got["id"])
	assert.Equal(t, float64(12), got["riskScore"], "derived fields are serialized")
	assert.Equal(t, "High", got["riskCategory"])
}

func TestDeleteBug_NoContent(t *testing.T) {
	r, token := testRouter(t, &stubService{})
	w := do(r, http.MethodDelete, "/bugs/abc", token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteAllBugs_ReportsPreservedCount(t *testing.T) {
	r, token := testRouter(t, &stubService{})
	w := do(r, http.MethodDelete, "/bugs", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got["deleted"])
	assert.Equal(t, int64(3), got["preserved"])
}

func TestMatrix_ReturnsFullGrid(t *testing.T) {
	r, token := testRouter(t, &stubService{})
	w := do(r, http.MethodGet, "/bugs/matrix", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Cells []domain.MatrixCell `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Cells, 25)
}

func TestLogout_ClosesSession(t *testing.T) {
	r, token := testRouter(t, &stubService{})
	w := do(r, http.MethodPost, "/logout", token, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/bugs", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
