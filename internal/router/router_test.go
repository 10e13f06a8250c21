package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return New(cfg, NewServices(db))
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &config.Config{JWTSecret: "secret"})

	rec := serve(r, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, &config.Config{JWTSecret: "secret"})

	for _, path := range []string{"/api/v1/budgets", "/api/v1/categories", "/api/v1/expenses", "/api/v1/incomes", "/api/v1/performance", "/api/v1/balance", "/api/v1/budget-history"} {
		rec := serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestPipelineDisabledWithoutKey(t *testing.T) {
	r := newTestRouter(t, &config.Config{JWTSecret: "secret"})

	rec := serve(r, http.MethodPost, "/api/v1/pipeline/budgets/rollover", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPipelineRollover(t *testing.T) {
	r := newTestRouter(t, &config.Config{JWTSecret: "secret", PipelineAPIKey: "key"})

	rec := serve(r, http.MethodPost, "/api/v1/pipeline/budgets/rollover", http.Header{"X-Api-Key": {"key"}})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, http.MethodPost, "/api/v1/pipeline/budgets/rollover", http.Header{"X-Api-Key": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, &config.Config{JWTSecret: "secret", CORSAllowOrigins: []string{"http://localhost:5173"}})

	rec := serve(r, http.MethodOptions, "/api/v1/budgets", http.Header{
		"Origin":                        {"http://localhost:5173"},
		"Access-Control-Request-Method": {"GET"},
	})

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, &config.Config{JWTSecret: "secret"})

	rec := serve(r, http.MethodPatch, "/api/health", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
