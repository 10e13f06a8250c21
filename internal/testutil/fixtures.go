package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetbuddy/internal/models"
	"budgetbuddy/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh user id. Users live in the identity provider, so
// there is no row to create.
func NewUserID() string {
	return uuid.New()
}

// CreateTestCategory creates a top-level category owned by userID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return createCategory(t, db, &userID, nil)
}

// CreateTestChildCategory creates a category under parentID owned by userID.
func CreateTestChildCategory(t *testing.T, db *gorm.DB, userID, parentID string) *models.Category {
	t.Helper()
	return createCategory(t, db, &userID, &parentID)
}

// CreateTestSharedCategory creates a top-level category with no owner.
func CreateTestSharedCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return createCategory(t, db, nil, nil)
}

func createCategory(t *testing.T, db *gorm.DB, userID, parentID *string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:   userID,
		ParentID: parentID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		Icon:     models.DefaultCategoryIcon,
		Color:    models.DefaultCategoryColor,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates a monthly budget of 1000.00 for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithLimit(t, db, userID, categoryID, 100000)
}

// CreateTestBudgetWithLimit creates a monthly budget with the given limit (in cents).
func CreateTestBudgetWithLimit(t *testing.T, db *gorm.DB, userID, categoryID string, limit int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:          userID,
		CategoryID:      categoryID,
		Limit:           limit,
		Period:          models.BudgetPeriodMonthly,
		IsActive:        true,
		ResetPreference: models.ResetPreferenceManual,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense inserts a ledger row directly. It does not touch any
// aggregate, so tests use it to set up archive and metrics scenarios.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, budgetID, categoryID string, amount int64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:        userID,
		BudgetID:      budgetID,
		CategoryID:    categoryID,
		Amount:        amount,
		Date:          date,
		Note:          models.DefaultExpenseNote,
		SubCategories: []string{},
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestIncome records an income of the given amount (in cents) dated now.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID string, amount int64) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID: userID,
		Amount: amount,
		Date:   time.Now(),
		Source: models.DefaultIncomeSource,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}
