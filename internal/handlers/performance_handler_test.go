package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetbuddy/internal/services"
)

type mockPerformanceService struct {
	performanceFn func(ctx context.Context, userID string) (*services.PerformanceMetrics, error)
	balanceFn     func(ctx context.Context, userID string) (*services.Balance, error)
}

func (m *mockPerformanceService) Performance(ctx context.Context, userID string) (*services.PerformanceMetrics, error) {
	if m.performanceFn != nil {
		return m.performanceFn(ctx, userID)
	}
	return &services.PerformanceMetrics{}, nil
}

func (m *mockPerformanceService) Balance(ctx context.Context, userID string) (*services.Balance, error) {
	if m.balanceFn != nil {
		return m.balanceFn(ctx, userID)
	}
	return &services.Balance{}, nil
}

var _ services.PerformanceServicer = (*mockPerformanceService)(nil)

func setupPerformanceRouter(handler *PerformanceHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/performance", handler.GetPerformance)
	auth.GET("/balance", handler.GetBalance)
	return r
}

func TestPerformanceHandler_GetPerformance(t *testing.T) {
	t.Run("returns metrics", func(t *testing.T) {
		svc := &mockPerformanceService{
			performanceFn: func(_ context.Context, userID string) (*services.PerformanceMetrics, error) {
				if userID != testUserID {
					t.Errorf("expected %s, got %s", testUserID, userID)
				}
				return &services.PerformanceMetrics{TotalBudgets: 3, OverBudgetCount: 1, AveragePercentageUsed: 72}, nil
			},
		}
		r := setupPerformanceRouter(NewPerformanceHandler(svc))

		rec := doRequest(r, "GET", "/performance", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		perf := parseJSON(t, rec)["performance"].(map[string]interface{})
		if perf["total_budgets"].(float64) != 3 || perf["average_percentage_used"].(float64) != 72 {
			t.Errorf("unexpected metrics: %v", perf)
		}
	})

	t.Run("hides unexpected errors", func(t *testing.T) {
		svc := &mockPerformanceService{
			performanceFn: func(_ context.Context, _ string) (*services.PerformanceMetrics, error) {
				return nil, errors.New("connection reset")
			},
		}
		r := setupPerformanceRouter(NewPerformanceHandler(svc))

		rec := doRequest(r, "GET", "/performance", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}

func TestPerformanceHandler_GetBalance(t *testing.T) {
	svc := &mockPerformanceService{
		balanceFn: func(_ context.Context, _ string) (*services.Balance, error) {
			return &services.Balance{TotalIncome: 100, TotalExpenses: 150, Balance: -50, Status: services.BalanceDeficit}, nil
		},
	}
	r := setupPerformanceRouter(NewPerformanceHandler(svc))

	rec := doRequest(r, "GET", "/balance", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	balance := parseJSON(t, rec)["balance"].(map[string]interface{})
	if balance["status"] != "deficit" || balance["balance"].(float64) != -50 {
		t.Errorf("unexpected balance: %v", balance)
	}
}
