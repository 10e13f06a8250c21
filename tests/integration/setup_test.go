package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/router"
)

const (
	testSecret      = "integration-test-secret"
	testPipelineKey = "integration-pipeline-key"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates the production router backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	cfg := &config.Config{
		JWTSecret:      testSecret,
		PipelineAPIKey: testPipelineKey,
	}

	return &testApp{DB: db, Router: router.New(cfg, router.NewServices(db))}
}

// newUserToken signs an access token for a fresh user id.
func newUserToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.GenerateAccessToken(testSecret, uuid.NewString(), time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustStatus fails the test unless the response has the expected status.
func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// object returns the nested object stored under key.
func object(t *testing.T, rec *httptest.ResponseRecorder, key string) map[string]interface{} {
	t.Helper()
	v, ok := parseJSON(t, rec)[key].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no %q object: %s", key, rec.Body.String())
	}
	return v
}

// errorCode returns error.code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := object(t, rec, "error")["code"].(string)
	return code
}

// createCategory creates a category and returns its id. An empty parentID
// makes it top-level.
func (app *testApp) createCategory(t *testing.T, token, name, parentID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q}`, name)
	if parentID != "" {
		body = fmt.Sprintf(`{"name":%q,"parent_id":%q}`, name, parentID)
	}
	rec := app.request("POST", "/api/v1/categories", body, token)
	mustStatus(t, rec, 201)
	return object(t, rec, "category")["id"].(string)
}

// createBudget creates a monthly budget over categoryID and returns its id.
func (app *testApp) createBudget(t *testing.T, token, categoryID string, limit int64) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%q,"limit":%d,"period":"monthly"}`, categoryID, limit), token)
	mustStatus(t, rec, 201)
	return object(t, rec, "budget")["id"].(string)
}

// createExpense books an expense dated now and returns its id.
func (app *testApp) createExpense(t *testing.T, token, budgetID, categoryID string, amount int64) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/expenses",
		fmt.Sprintf(`{"budget_id":%q,"category_id":%q,"amount":%d}`, budgetID, categoryID, amount), token)
	mustStatus(t, rec, 201)
	return object(t, rec, "expense")["id"].(string)
}

// categorySpent reads a category's spent through the API.
func (app *testApp) categorySpent(t *testing.T, token, categoryID string) float64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/categories/"+categoryID, "", token)
	mustStatus(t, rec, 200)
	return object(t, rec, "category")["spent"].(float64)
}

// budgetSpent reads a budget's tracked spent through the API.
func (app *testApp) budgetSpent(t *testing.T, token, budgetID string) float64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/budgets/"+budgetID, "", token)
	mustStatus(t, rec, 200)
	return object(t, rec, "budget")["spent"].(float64)
}
