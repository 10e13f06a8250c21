package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// expenseService handles the expense ledger. Every write runs in one database
// transaction together with the spend propagation it causes.
type expenseService struct {
	db         *gorm.DB
	propagator SpendPropagator
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, propagator SpendPropagator) ExpenseServicer {
	return &expenseService{db: db, propagator: propagator}
}

// CreateExpense books an expense and propagates +amount up its category chain.
func (s *expenseService) CreateExpense(
	userID string,
	budgetID string,
	categoryID string,
	amount int64,
	date time.Time,
	note string,
	subCategories []string,
) (*models.Expense, error) {
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if err := s.checkCategory(userID, categoryID); err != nil {
		return nil, err
	}
	if err := s.checkBudget(userID, budgetID); err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = time.Now()
	}
	if note == "" {
		note = models.DefaultExpenseNote
	}
	if subCategories == nil {
		subCategories = []string{}
	}

	expense := &models.Expense{
		UserID:        userID,
		BudgetID:      budgetID,
		CategoryID:    categoryID,
		Amount:        amount,
		Date:          date,
		Note:          note,
		SubCategories: subCategories,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.propagator.ApplyDelta(tx, userID, categoryID, amount)
	})
	if err != nil {
		return nil, toAppError(err)
	}

	return expense, nil
}

// checkCategory verifies the category is the user's own or shared.
func (s *expenseService) checkCategory(userID, categoryID string) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Scopes(visibleTo(userID)).
		Where("id = ?", categoryID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// checkBudget verifies the budget belongs to the user.
func (s *expenseService) checkBudget(userID, budgetID string) error {
	var count int64
	if err := s.db.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

// GetUserExpenses returns a paginated, filtered list of the user's expenses, newest first.
func (s *expenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.BudgetID != nil {
		q = q.Where("budget_id = ?", *f.BudgetID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	return q
}

// GetExpenseByID returns an expense if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense edits an expense. The delta is computed once from the stored
// row: new minus previous on the same category, or -previous on the old chain
// and +new on the new chain when the category changes.
func (s *expenseService) UpdateExpense(userID, expenseID string, update ExpenseUpdate) (*models.Expense, error) {
	existing, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	prevAmount, prevCategory := existing.Amount, existing.CategoryID
	newAmount, newCategory := prevAmount, prevCategory

	updates := make(map[string]interface{})
	if update.Amount != nil {
		if *update.Amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		newAmount = *update.Amount
		updates["amount"] = newAmount
	}
	if update.CategoryID != nil && *update.CategoryID != prevCategory {
		if err := s.checkCategory(userID, *update.CategoryID); err != nil {
			return nil, err
		}
		newCategory = *update.CategoryID
		updates["category_id"] = newCategory
	}
	if update.BudgetID != nil && *update.BudgetID != existing.BudgetID {
		if err := s.checkBudget(userID, *update.BudgetID); err != nil {
			return nil, err
		}
		updates["budget_id"] = *update.BudgetID
	}
	if update.Date != nil {
		updates["date"] = *update.Date
	}
	if update.Note != nil {
		updates["note"] = *update.Note
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Expense{}).Where("id = ?", expenseID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if update.SubCategories != nil {
			existing.SubCategories = update.SubCategories
			if err := tx.Model(existing).Select("sub_categories").Updates(existing).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if newCategory == prevCategory {
			return s.propagator.ApplyDelta(tx, userID, newCategory, newAmount-prevAmount)
		}
		if err := s.propagator.ApplyDelta(tx, userID, prevCategory, -prevAmount); err != nil {
			return err
		}
		return s.propagator.ApplyDelta(tx, userID, newCategory, newAmount)
	})
	if err != nil {
		return nil, toAppError(err)
	}

	return s.GetExpenseByID(userID, expenseID)
}

// DeleteExpense removes an expense and propagates -amount up its category chain.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.propagator.ApplyDelta(tx, userID, expense.CategoryID, -expense.Amount)
	})
	return toAppError(err)
}
