package models

// Default presentation values applied to new categories.
const (
	DefaultCategoryIcon  = "💰"
	DefaultCategoryColor = "#CCCCCC"
)

// DefaultCategoryNames are the shared categories seeded for every user.
var DefaultCategoryNames = []string{
	"Food",
	"Transport",
	"Bills & Utilities",
	"Entertainment",
	"Shopping",
	"Education",
	"Health",
	"Travel",
	"Groceries",
	"Others",
}

// Category is a node in the spending category tree. A nil UserID marks a
// shared default category.
//
// Spent is a denormalized aggregate: the sum of expense amounts booked
// directly to this node plus the Spent of its children. Only the spend
// propagator writes it.
type Category struct {
	Base
	UserID      *string `gorm:"type:uuid;index" json:"user_id"`
	BudgetID    *string `gorm:"type:uuid;index" json:"budget_id,omitempty"`
	Name        string  `gorm:"not null" json:"name"`
	ParentID    *string `gorm:"type:uuid;index" json:"parent_id"`
	Spent       int64   `gorm:"not null;default:0" json:"spent"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`

	// Relationships
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// IsShared reports whether the category is a shared default.
func (c *Category) IsShared() bool {
	return c.UserID == nil
}

// IsTopLevel reports whether the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
