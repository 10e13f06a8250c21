package models

import "time"

// DefaultIncomeSource is used when an income is recorded without a source.
const DefaultIncomeSource = "Salary"

// Income records money received by a user.
type Income struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
}
