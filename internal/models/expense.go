package models

import "time"

// DefaultExpenseNote is stored when an expense is created without a note.
const DefaultExpenseNote = "Hey there! please take care of my expenses🥲"

// Expense is a single spend event booked to one category and one budget.
type Expense struct {
	Base
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetID      string    `gorm:"type:uuid;not null;index" json:"budget_id"`
	CategoryID    string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Date          time.Time `gorm:"not null;index" json:"date"`
	SubCategories []string  `gorm:"type:text;serializer:json" json:"sub_categories"`
	Note          string    `json:"note"`
}
