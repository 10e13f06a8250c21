package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// SpendPropagator keeps category and budget spend aggregates consistent with
// the expense ledger. Callers pass the open transaction of the ledger write so
// the walk commits or rolls back with it.
type SpendPropagator interface {
	ApplyDelta(tx *gorm.DB, ownerID, categoryID string, delta int64) error
}

// CategoryServicer defines the contract for category tree operations.
type CategoryServicer interface {
	CreateCategory(userID, name, description, icon, color string, parentID, budgetID *string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, description, icon, color string, parentID *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	SeedDefaultCategories() (int, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	BudgetID   *string
	CategoryID *string
	FromDate   *time.Time
	ToDate     *time.Time
}

// ExpenseUpdate carries the fields of an expense edit. Nil fields are left
// unchanged.
type ExpenseUpdate struct {
	Amount        *int64
	Date          *time.Time
	Note          *string
	SubCategories []string
	CategoryID    *string
	BudgetID      *string
}

// ExpenseServicer defines the contract for the expense ledger.
type ExpenseServicer interface {
	CreateExpense(userID, budgetID, categoryID string, amount int64, date time.Time, note string, subCategories []string) (*models.Expense, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
}

// BudgetProgress compares a budget's tracked aggregate with the ledger for its
// current period.
type BudgetProgress struct {
	BudgetID       string              `json:"budget_id"`
	Limit          int64               `json:"limit"`
	Spent          int64               `json:"spent"`
	TrackedSpent   int64               `json:"tracked_spent"`
	Remaining      int64               `json:"remaining"`
	PercentageUsed int64               `json:"percentage_used"`
	Status         models.BudgetStatus `json:"status"`
	PeriodStart    time.Time           `json:"period_start"`
	PeriodEnd      time.Time           `json:"period_end"`
}

// RolloverResult summarizes one scheduler-triggered rollover batch.
type RolloverResult struct {
	Checked    int      `json:"checked"`
	Archived   int      `json:"archived"`
	Failed     int      `json:"failed"`
	ArchiveIDs []string `json:"archive_ids"`
}

// BudgetServicer defines the contract for the budget lifecycle.
type BudgetServicer interface {
	CreateBudget(userID, categoryID string, limit int64, period models.BudgetPeriod) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, limit *int64, period *models.BudgetPeriod, isActive *bool, resetPreference *models.ResetPreference) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	ArchiveAndReset(userID, budgetID string, now time.Time) (*models.BudgetArchive, error)
	UpdateResetPreference(userID, budgetID string, preference models.ResetPreference) (*models.Budget, error)
	GetBudgetProgress(userID, budgetID string, now time.Time) (*BudgetProgress, error)
	RolloverDueBudgets(ctx context.Context, now time.Time) (*RolloverResult, error)
}

// ArchiveServicer defines the contract for the append-only budget archive.
type ArchiveServicer interface {
	ArchiveBudget(tx *gorm.DB, budget *models.Budget, now time.Time) (*models.BudgetArchive, error)
	GetBudgetHistory(userID string, period *models.BudgetPeriod) ([]models.BudgetArchive, error)
}

// PerformanceMetrics summarizes how a user's budgets are tracking.
type PerformanceMetrics struct {
	TotalBudgets          int   `json:"total_budgets"`
	UnderBudgetCount      int   `json:"under_budget_count"`
	AtLimitCount          int   `json:"at_limit_count"`
	OverBudgetCount       int   `json:"over_budget_count"`
	AveragePercentageUsed int64 `json:"average_percentage_used"`
	Streak                int   `json:"streak"`
}

// BalanceStatus is "healthy" when income covers expenses, "deficit" otherwise.
type BalanceStatus string

const (
	BalanceHealthy BalanceStatus = "healthy"
	BalanceDeficit BalanceStatus = "deficit"
)

// Balance is total income minus total expenses.
type Balance struct {
	TotalIncome   int64         `json:"total_income"`
	TotalExpenses int64         `json:"total_expenses"`
	Balance       int64         `json:"balance"`
	Status        BalanceStatus `json:"status"`
}

// PerformanceServicer defines the contract for derived budget metrics.
type PerformanceServicer interface {
	Performance(ctx context.Context, userID string) (*PerformanceMetrics, error)
	Balance(ctx context.Context, userID string) (*Balance, error)
}

// IncomeServicer defines the contract for income records.
type IncomeServicer interface {
	CreateIncome(userID string, amount int64, date time.Time, source, description string) (*models.Income, error)
	GetUserIncomes(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Income], error)
	GetIncomeByID(userID, incomeID string) (*models.Income, error)
	UpdateIncome(userID, incomeID string, amount *int64, date *time.Time, source, description *string) (*models.Income, error)
	DeleteIncome(userID, incomeID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
