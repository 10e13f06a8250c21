package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
)

const (
	historyLimit        = 50
	unknownCategoryName = "Unknown"
)

// archiveService writes and reads the append-only budget archive.
type archiveService struct {
	db *gorm.DB
}

// NewArchiveService creates a new ArchiveServicer.
func NewArchiveService(db *gorm.DB) ArchiveServicer {
	return &archiveService{db: db}
}

// ArchiveBudget snapshots budget inside tx and starts a new period at now.
// Spent is recomputed from the ledger over (last reset, now] rather than read
// from the cached aggregate. The budget's own spent is left untouched.
func (s *archiveService) ArchiveBudget(tx *gorm.DB, budget *models.Budget, now time.Time) (*models.BudgetArchive, error) {
	spent, err := sumBudgetExpenses(tx, budget, now)
	if err != nil {
		return nil, err
	}
	percentage, status := ClassifyBudget(spent, budget.Limit)

	categoryName := unknownCategoryName
	var category models.Category
	if err := tx.Select("id", "name").Where("id = ?", budget.CategoryID).First(&category).Error; err == nil {
		categoryName = category.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	archive := &models.BudgetArchive{
		UserID:           budget.UserID,
		OriginalBudgetID: budget.ID,
		CategoryID:       budget.CategoryID,
		CategoryName:     categoryName,
		Limit:            budget.Limit,
		Spent:            spent,
		Period:           budget.Period,
		Status:           status,
		PercentageUsed:   percentage,
		ArchivedAt:       now,
		PeriodStartDate:  budget.PeriodAnchor(),
		PeriodEndDate:    now,
	}
	if err := tx.Create(archive).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Model(&models.Budget{}).Where("id = ?", budget.ID).Update("last_reset_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.LastResetAt = &now

	return archive, nil
}

// sumBudgetExpenses totals the ledger rows of budget dated after its last
// reset (or ever, if it was never reset) and no later than now.
func sumBudgetExpenses(db *gorm.DB, budget *models.Budget, now time.Time) (int64, error) {
	q := db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ? AND date <= ?", budget.ID, now)
	if budget.LastResetAt != nil {
		q = q.Where("date > ?", *budget.LastResetAt)
	}

	var spent int64
	if err := q.Scan(&spent).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// GetBudgetHistory returns the user's newest archives, optionally for one period type.
func (s *archiveService) GetBudgetHistory(userID string, period *models.BudgetPeriod) ([]models.BudgetArchive, error) {
	q := s.db.Where("user_id = ?", userID)
	if period != nil {
		q = q.Where("period = ?", *period)
	}

	archives := []models.BudgetArchive{}
	if err := q.Order("archived_at DESC").Limit(historyLimit).Find(&archives).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return archives, nil
}
