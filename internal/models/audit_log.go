package models

// AuditLog records budget and ledger mutations for later inspection.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}

// AllModels lists every persisted model, in dependency order, for
// auto-migration in tests.
func AllModels() []interface{} {
	return []interface{}{
		&Category{},
		&Budget{},
		&Expense{},
		&BudgetArchive{},
		&Income{},
		&AuditLog{},
	}
}
