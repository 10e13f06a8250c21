package testutil_test

import (
	"testing"
	"time"

	"budgetbuddy/internal/errors"
	"budgetbuddy/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"categories", "budgets", "expenses", "budget_archives", "incomes", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestSharedCategory(t, first)

	var count int64
	second.Table("categories").Count(&count)
	if count != 0 {
		t.Errorf("expected empty second database, found %d categories", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	userID := testutil.NewUserID()

	root := testutil.CreateTestCategory(t, db, userID)
	if root.ID == "" {
		t.Fatal("category should have an ID")
	}

	child := testutil.CreateTestChildCategory(t, db, userID, root.ID)
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Errorf("expected child of %s, got %v", root.ID, child.ParentID)
	}

	shared := testutil.CreateTestSharedCategory(t, db)
	if !shared.IsShared() {
		t.Error("expected shared category")
	}

	budget := testutil.CreateTestBudget(t, db, userID, root.ID)
	if budget.Limit != 100000 {
		t.Errorf("expected limit 100000, got %d", budget.Limit)
	}

	expense := testutil.CreateTestExpense(t, db, userID, budget.ID, child.ID, 1500, time.Now())
	if expense.Amount != 1500 {
		t.Errorf("expected amount 1500, got %d", expense.Amount)
	}
	if testutil.CategorySpent(t, db, child.ID) != 0 {
		t.Error("fixture expenses must not touch aggregates")
	}

	income := testutil.CreateTestIncome(t, db, userID, 5000)
	if income.Source != "Salary" {
		t.Errorf("expected default source, got %q", income.Source)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
