package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
	"budgetbuddy/internal/services"
)

type mockIncomeService struct {
	createIncomeFn func(userID string, amount int64, date time.Time, source, description string) (*models.Income, error)
	updateIncomeFn func(userID, incomeID string, amount *int64, date *time.Time, source, description *string) (*models.Income, error)
	getIncomeFn    func(userID, incomeID string) (*models.Income, error)
}

func (m *mockIncomeService) CreateIncome(userID string, amount int64, date time.Time, source, description string) (*models.Income, error) {
	if m.createIncomeFn != nil {
		return m.createIncomeFn(userID, amount, date, source, description)
	}
	return &models.Income{}, nil
}

func (m *mockIncomeService) GetUserIncomes(_ string, _ pagination.PageRequest) (*pagination.PageResponse[models.Income], error) {
	resp := pagination.NewPageResponse([]models.Income{{Source: "Salary"}}, 1, 20, 1)
	return &resp, nil
}

func (m *mockIncomeService) GetIncomeByID(userID, incomeID string) (*models.Income, error) {
	if m.getIncomeFn != nil {
		return m.getIncomeFn(userID, incomeID)
	}
	return &models.Income{}, nil
}

func (m *mockIncomeService) UpdateIncome(userID, incomeID string, amount *int64, date *time.Time, source, description *string) (*models.Income, error) {
	if m.updateIncomeFn != nil {
		return m.updateIncomeFn(userID, incomeID, amount, date, source, description)
	}
	return &models.Income{}, nil
}

func (m *mockIncomeService) DeleteIncome(_, _ string) error { return nil }

var _ services.IncomeServicer = (*mockIncomeService)(nil)

func setupIncomeRouter(handler *IncomeHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/incomes", handler.CreateIncome)
	auth.GET("/incomes", handler.GetUserIncomes)
	auth.GET("/incomes/:id", handler.GetIncomeByID)
	auth.PUT("/incomes/:id", handler.UpdateIncome)
	auth.DELETE("/incomes/:id", handler.DeleteIncome)
	return r
}

func TestIncomeHandler_CreateIncome(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockIncomeService{
			createIncomeFn: func(_ string, amount int64, _ time.Time, source, _ string) (*models.Income, error) {
				if source != "" {
					t.Errorf("expected empty source to reach service, got %q", source)
				}
				return &models.Income{Amount: amount, Source: models.DefaultIncomeSource}, nil
			},
		}
		r := setupIncomeRouter(NewIncomeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/incomes", `{"amount":300000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		income := parseJSON(t, rec)["income"].(map[string]interface{})
		if income["source"] != "Salary" {
			t.Errorf("expected Salary, got %v", income["source"])
		}
	})

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		r := setupIncomeRouter(NewIncomeHandler(&mockIncomeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/incomes", `{"amount":-1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestIncomeHandler_GetIncomeByID(t *testing.T) {
	svc := &mockIncomeService{
		getIncomeFn: func(_, _ string) (*models.Income, error) { return nil, apperrors.ErrIncomeNotFound },
	}
	r := setupIncomeRouter(NewIncomeHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/incomes/"+testIncomeID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "INCOME_NOT_FOUND")
}

func TestIncomeHandler_UpdateIncome(t *testing.T) {
	var gotSource *string
	var gotAmount *int64
	svc := &mockIncomeService{
		updateIncomeFn: func(_, _ string, amount *int64, _ *time.Time, source, _ *string) (*models.Income, error) {
			gotAmount, gotSource = amount, source
			return &models.Income{}, nil
		},
	}
	r := setupIncomeRouter(NewIncomeHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "PUT", "/incomes/"+testIncomeID, `{"source":"Bonus"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSource == nil || *gotSource != "Bonus" {
		t.Errorf("expected source Bonus, got %v", gotSource)
	}
	if gotAmount != nil {
		t.Errorf("expected amount untouched, got %d", *gotAmount)
	}
}

func TestIncomeHandler_ListAndDelete(t *testing.T) {
	r := setupIncomeRouter(NewIncomeHandler(&mockIncomeService{}, &mockAuditService{}))

	rec := doRequest(r, "GET", "/incomes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["total_items"].(float64) != 1 {
		t.Error("expected total_items=1")
	}

	rec = doRequest(r, "DELETE", "/incomes/"+testIncomeID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
