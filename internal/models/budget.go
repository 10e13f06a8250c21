package models

import "time"

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is a known period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

// Next returns the end of the period that starts at from.
func (p BudgetPeriod) Next(from time.Time) time.Time {
	switch p {
	case BudgetPeriodWeekly:
		return from.AddDate(0, 0, 7)
	case BudgetPeriodYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// ResetPreference selects who triggers archive-and-reset for a budget.
type ResetPreference string

const (
	ResetPreferenceManual    ResetPreference = "manual"
	ResetPreferenceAutomatic ResetPreference = "automatic"
)

// Valid reports whether r is a known reset preference.
func (r ResetPreference) Valid() bool {
	return r == ResetPreferenceManual || r == ResetPreferenceAutomatic
}

// BudgetStatus classifies how much of a budget's limit has been used.
type BudgetStatus string

const (
	BudgetStatusUnder   BudgetStatus = "under"
	BudgetStatusAtLimit BudgetStatus = "at-limit"
	BudgetStatusOver    BudgetStatus = "over"
)

// Budget caps spending on one category tree for a period.
//
// ParentCategoryID is the governed category's parent at creation time and is
// not kept in sync when the category is reparented. Spent mirrors the
// governed category's aggregate and is written only by the spend propagator.
type Budget struct {
	Base
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID       string          `gorm:"type:uuid;not null;index" json:"category_id"`
	ParentCategoryID *string         `gorm:"type:uuid" json:"parent_category_id"`
	Limit            int64           `gorm:"column:limit_amount;not null" json:"limit"`
	Period           BudgetPeriod    `gorm:"not null;default:'monthly'" json:"period"`
	Spent            int64           `gorm:"not null;default:0" json:"spent"`
	IsActive         bool            `gorm:"not null;default:true" json:"is_active"`
	ResetPreference  ResetPreference `gorm:"not null;default:'manual'" json:"reset_preference"`
	LastResetAt      *time.Time      `json:"last_reset_at,omitempty"`

	// Relationships
	Category       *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ParentCategory *Category `gorm:"foreignKey:ParentCategoryID" json:"parent_category,omitempty"`
}

// PeriodAnchor returns the start of the budget's current period: the last
// reset, or the creation time when the budget was never reset.
func (b *Budget) PeriodAnchor() time.Time {
	if b.LastResetAt != nil {
		return *b.LastResetAt
	}
	return b.CreatedAt
}
