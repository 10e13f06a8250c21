package models

import "time"

// BudgetArchive is an immutable snapshot of a budget written by
// archive-and-reset. Rows are never updated.
type BudgetArchive struct {
	Base
	UserID           string       `gorm:"type:uuid;not null;index" json:"user_id"`
	OriginalBudgetID string       `gorm:"type:uuid;not null;index" json:"original_budget_id"`
	CategoryID       string       `gorm:"type:uuid" json:"category_id"`
	CategoryName     string       `json:"category_name"`
	Limit            int64        `gorm:"column:limit_amount;not null" json:"limit"`
	Spent            int64        `gorm:"not null" json:"spent"`
	Period           BudgetPeriod `gorm:"not null" json:"period"`
	Status           BudgetStatus `gorm:"not null" json:"status"`
	PercentageUsed   int64        `gorm:"not null" json:"percentage_used"`
	ArchivedAt       time.Time    `gorm:"not null;index" json:"archived_at"`
	PeriodStartDate  time.Time    `json:"period_start_date"`
	PeriodEndDate    time.Time    `json:"period_end_date"`
}
