package services

import (
	"github.com/shopspring/decimal"

	"budgetbuddy/internal/models"
)

const atLimitThreshold = 80

var hundred = decimal.NewFromInt(100)

// ClassifyBudget returns the share of limit used by spent as a whole
// percentage, rounded half away from zero, and the matching status:
// below 80 is under, 80 to 99 is at-limit, 100 and above is over.
//
// A zero limit reads as 0% (under) while nothing is spent and 100% (over)
// as soon as anything is.
func ClassifyBudget(spent, limit int64) (int64, models.BudgetStatus) {
	var percentage int64
	if limit <= 0 {
		if spent > 0 {
			percentage = 100
		}
	} else {
		percentage = decimal.NewFromInt(spent).
			Mul(hundred).
			Div(decimal.NewFromInt(limit)).
			Round(0).
			IntPart()
	}

	switch {
	case percentage >= 100:
		return percentage, models.BudgetStatusOver
	case percentage >= atLimitThreshold:
		return percentage, models.BudgetStatusAtLimit
	default:
		return percentage, models.BudgetStatusUnder
	}
}

// averagePercentage returns the mean of percentages rounded half away from
// zero, or 0 for an empty slice.
func averagePercentage(percentages []int64) int64 {
	if len(percentages) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, p := range percentages {
		sum = sum.Add(decimal.NewFromInt(p))
	}
	return sum.Div(decimal.NewFromInt(int64(len(percentages)))).Round(0).IntPart()
}
