package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/metrics"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// budgetService handles the budget lifecycle.
type budgetService struct {
	db         *gorm.DB
	propagator SpendPropagator
	archives   ArchiveServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, propagator SpendPropagator, archives ArchiveServicer) BudgetServicer {
	return &budgetService{
		db:         db,
		propagator: propagator,
		archives:   archives,
	}
}

// CreateBudget creates a budget over a category the user owns or shares.
// The category's current parent is stored as a snapshot.
func (s *budgetService) CreateBudget(
	userID, categoryID string,
	limit int64,
	period models.BudgetPeriod,
) (*models.Budget, error) {
	if limit < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must not be negative")
	}
	if period == "" {
		period = models.BudgetPeriodMonthly
	}
	if !period.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
	}

	var category models.Category
	if err := s.db.Scopes(visibleTo(userID)).Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget := &models.Budget{
		UserID:           userID,
		CategoryID:       categoryID,
		ParentCategoryID: category.ParentID,
		Limit:            limit,
		Period:           period,
		IsActive:         true,
		ResetPreference:  models.ResetPreferenceManual,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	userID string,
	page pagination.PageRequest,
	isActive *bool,
	period *models.BudgetPeriod,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").
		Preload("ParentCategory").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates the patchable fields of a budget. Spent and the
// governed category are never changed here.
func (s *budgetService) UpdateBudget(
	userID, budgetID string,
	limit *int64,
	period *models.BudgetPeriod,
	isActive *bool,
	resetPreference *models.ResetPreference,
) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if limit != nil {
		if *limit < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must not be negative")
		}
		updates["limit_amount"] = *limit
	}
	if period != nil {
		if !period.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
		}
		updates["period"] = *period
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if resetPreference != nil {
		if !resetPreference.Valid() {
			return nil, apperrors.ErrInvalidResetPreference
		}
		updates["reset_preference"] = *resetPreference
	}

	if len(updates) == 0 {
		return budget, nil
	}
	if err := s.db.Model(&models.Budget{}).Where("id = ?", budget.ID).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget removes a budget with its expenses and the categories linked
// to it through budget_id, all in one transaction. Descendants of a linked
// category go with it, and so does every expense booked on any removed
// category, whichever budget it was booked under. Each expense is reversed
// out of its category chain first. Archives are kept.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	var reversed, deletedExpenses, deletedCategories int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		categoryIDs, err := cascadedCategoryIDs(tx, budget.ID)
		if err != nil {
			return err
		}

		expenseScope := tx.Where("budget_id = ?", budget.ID)
		if len(categoryIDs) > 0 {
			expenseScope = tx.Where("budget_id = ? OR category_id IN ?", budget.ID, categoryIDs)
		}

		// Reverse while every linked category still exists, so ancestors
		// outside the cascade drop the deleted amounts too.
		var expenses []models.Expense
		if err := expenseScope.Find(&expenses).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, e := range expenses {
			if err := s.propagator.ApplyDelta(tx, e.UserID, e.CategoryID, -e.Amount); err != nil {
				return err
			}
			reversed++
		}

		expenseIDs := make([]string, len(expenses))
		for i, e := range expenses {
			expenseIDs[i] = e.ID
		}
		if len(expenseIDs) > 0 {
			res := tx.Where("id IN ?", expenseIDs).Delete(&models.Expense{})
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			deletedExpenses = res.RowsAffected
		}

		if len(categoryIDs) > 0 {
			res := tx.Where("id IN ?", categoryIDs).Delete(&models.Category{})
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			deletedCategories = res.RowsAffected
		}

		if err := tx.Delete(&models.Budget{}, "id = ?", budget.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		logger.Get().Errorw("budget cascade delete rolled back",
			"budget_id", budgetID,
			"user_id", userID,
			"error", err,
		)
		return toAppError(err)
	}

	logger.Get().Infow("budget deleted",
		"budget_id", budgetID,
		"user_id", userID,
		"expenses_deleted", deletedExpenses,
		"expenses_reversed", reversed,
		"categories_deleted", deletedCategories,
	)
	return nil
}

// cascadedCategoryIDs returns the categories linked to budgetID and all of
// their descendants.
func cascadedCategoryIDs(tx *gorm.DB, budgetID string) ([]string, error) {
	var frontier []string
	if err := tx.Model(&models.Category{}).Where("budget_id = ?", budgetID).Pluck("id", &frontier).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seen := make(map[string]struct{}, len(frontier))
	var ids []string
	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			next = append(next, id)
		}
		if len(next) == 0 {
			break
		}

		frontier = nil
		if err := tx.Model(&models.Category{}).Where("parent_id IN ?", next).Pluck("id", &frontier).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return ids, nil
}

// ArchiveAndReset snapshots the budget's current period and starts a new one at now.
func (s *budgetService) ArchiveAndReset(userID, budgetID string, now time.Time) (*models.BudgetArchive, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	archive, err := s.archive(s.db, budget, now)
	if err != nil {
		return nil, err
	}
	metrics.BudgetArchives.WithLabelValues("manual").Inc()
	return archive, nil
}

func (s *budgetService) archive(db *gorm.DB, budget *models.Budget, now time.Time) (*models.BudgetArchive, error) {
	var archive *models.BudgetArchive
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		archive, txErr = s.archives.ArchiveBudget(tx, budget, now)
		return txErr
	})
	if err != nil {
		return nil, toAppError(err)
	}

	logger.Get().Infow("budget archived",
		"budget_id", budget.ID,
		"user_id", budget.UserID,
		"archive_id", archive.ID,
		"spent", archive.Spent,
		"status", archive.Status,
	)
	return archive, nil
}

// UpdateResetPreference sets who triggers archive-and-reset for the budget.
func (s *budgetService) UpdateResetPreference(userID, budgetID string, preference models.ResetPreference) (*models.Budget, error) {
	if !preference.Valid() {
		return nil, apperrors.ErrInvalidResetPreference
	}
	return s.UpdateBudget(userID, budgetID, nil, nil, nil, &preference)
}

// GetBudgetProgress compares the tracked aggregate with the ledger for the
// budget's current period.
func (s *budgetService) GetBudgetProgress(userID, budgetID string, now time.Time) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	spent, err := sumBudgetExpenses(s.db, budget, now)
	if err != nil {
		return nil, err
	}
	percentage, status := ClassifyBudget(spent, budget.Limit)
	start := budget.PeriodAnchor()

	return &BudgetProgress{
		BudgetID:       budget.ID,
		Limit:          budget.Limit,
		Spent:          spent,
		TrackedSpent:   budget.Spent,
		Remaining:      budget.Limit - spent,
		PercentageUsed: percentage,
		Status:         status,
		PeriodStart:    start,
		PeriodEnd:      budget.Period.Next(start),
	}, nil
}

// RolloverDueBudgets archives every active automatic budget whose period has
// elapsed by now. Each budget is archived in its own transaction; a failure is
// logged and counted without stopping the batch.
func (s *budgetService) RolloverDueBudgets(ctx context.Context, now time.Time) (*RolloverResult, error) {
	db := s.db.WithContext(ctx)

	var candidates []models.Budget
	if err := db.Where("is_active = ? AND reset_preference = ?", true, models.ResetPreferenceAutomatic).
		Order("created_at ASC").
		Find(&candidates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &RolloverResult{ArchiveIDs: []string{}}
	log := logger.Named("rollover")

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return result, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		budget := &candidates[i]
		result.Checked++
		if budget.Period.Next(budget.PeriodAnchor()).After(now) {
			continue
		}

		archive, err := s.archive(db, budget, now)
		if err != nil {
			result.Failed++
			log.Errorw("rollover failed", "budget_id", budget.ID, "user_id", budget.UserID, "error", err)
			continue
		}
		result.Archived++
		result.ArchiveIDs = append(result.ArchiveIDs, archive.ID)
		metrics.BudgetArchives.WithLabelValues("rollover").Inc()
	}

	log.Infow("rollover completed",
		"checked", result.Checked,
		"archived", result.Archived,
		"failed", result.Failed,
	)
	return result, nil
}
