package testutil

import (
	"errors"
	"testing"

	apperrors "budgetbuddy/internal/errors"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// CategorySpent reloads a category and returns its stored aggregate.
func CategorySpent(t *testing.T, db *gorm.DB, categoryID string) int64 {
	t.Helper()

	var spent int64
	if err := db.Table("categories").Select("spent").Where("id = ?", categoryID).Scan(&spent).Error; err != nil {
		t.Fatalf("failed to read category spent: %v", err)
	}
	return spent
}

// BudgetSpent reloads a budget and returns its stored aggregate.
func BudgetSpent(t *testing.T, db *gorm.DB, budgetID string) int64 {
	t.Helper()

	var spent int64
	if err := db.Table("budgets").Select("spent").Where("id = ?", budgetID).Scan(&spent).Error; err != nil {
		t.Fatalf("failed to read budget spent: %v", err)
	}
	return spent
}
