package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
)

// performanceService derives budget metrics and the income/expense balance.
type performanceService struct {
	db *gorm.DB
}

// NewPerformanceService creates a new PerformanceServicer.
func NewPerformanceService(db *gorm.DB) PerformanceServicer {
	return &performanceService{db: db}
}

// Performance classifies each budget by the ledger spend of its current
// period: only expenses dated after last_reset_at count, so an archived period
// stops weighing on the metrics. This differs on purpose from an all-time sum
// of the budget's expenses, which would keep every reset budget over its
// limit. Budgets and expenses are loaded concurrently.
func (s *performanceService) Performance(ctx context.Context, userID string) (*PerformanceMetrics, error) {
	var (
		budgets  []models.Budget
		expenses []models.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("user_id = ?", userID).Find(&budgets).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Select("budget_id", "amount", "date").
			Where("user_id = ?", userID).
			Find(&expenses).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byBudget := make(map[string][]models.Expense, len(budgets))
	for _, e := range expenses {
		byBudget[e.BudgetID] = append(byBudget[e.BudgetID], e)
	}

	metrics := &PerformanceMetrics{TotalBudgets: len(budgets)}
	percentages := make([]int64, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		var spent int64
		for _, e := range byBudget[b.ID] {
			if b.LastResetAt != nil && !e.Date.After(*b.LastResetAt) {
				continue
			}
			spent += e.Amount
		}

		percentage, status := ClassifyBudget(spent, b.Limit)
		percentages = append(percentages, percentage)
		switch status {
		case models.BudgetStatusOver:
			metrics.OverBudgetCount++
		case models.BudgetStatusAtLimit:
			metrics.AtLimitCount++
		default:
			metrics.UnderBudgetCount++
		}
	}

	metrics.AveragePercentageUsed = averagePercentage(percentages)
	// Placeholder heuristic: one streak point per two budgets under limit.
	metrics.Streak = metrics.UnderBudgetCount / 2
	return metrics, nil
}

// Balance returns total income minus total expenses for the user.
func (s *performanceService) Balance(ctx context.Context, userID string) (*Balance, error) {
	var income, expenses int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Income{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ?", userID).
			Scan(&income).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Expense{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ?", userID).
			Scan(&expenses).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := &Balance{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income - expenses,
		Status:        BalanceHealthy,
	}
	if balance.Balance < 0 {
		balance.Status = BalanceDeficit
	}
	return balance, nil
}
