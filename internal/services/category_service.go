package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// categoryService handles category tree operations.
type categoryService struct {
	db         *gorm.DB
	propagator SpendPropagator
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, propagator SpendPropagator) CategoryServicer {
	return &categoryService{db: db, propagator: propagator}
}

// visibleTo scopes a category query to the user's own and the shared rows.
func visibleTo(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? OR user_id IS NULL", userID)
	}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(
	userID string,
	name string,
	description string,
	icon string,
	color string,
	parentID *string,
	budgetID *string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	if err := s.ensureNameAvailable(userID, name, ""); err != nil {
		return nil, err
	}

	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if _, err := s.GetCategoryByID(userID, *parentID); err != nil {
			if errors.Is(err, apperrors.ErrCategoryNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, err
		}
	}

	if budgetID != nil && *budgetID == "" {
		budgetID = nil
	}
	if budgetID != nil {
		var count int64
		if err := s.db.Model(&models.Budget{}).Where("id = ? AND user_id = ?", *budgetID, userID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrBudgetNotFound
		}
	}

	if icon == "" {
		icon = models.DefaultCategoryIcon
	}
	if color == "" {
		color = models.DefaultCategoryColor
	}

	owner := userID
	category := &models.Category{
		UserID:      &owner,
		BudgetID:    budgetID,
		Name:        name,
		Description: description,
		Icon:        icon,
		Color:       color,
		ParentID:    parentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// ensureNameAvailable rejects a name already used by another of the user's
// own categories. Shared categories do not reserve names.
func (s *categoryService) ensureNameAvailable(userID, name, exceptID string) error {
	query := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrDuplicateCategory, "category with this name already exists")
	}
	return nil
}

// GetUserCategories returns the user's own and the shared categories, sorted by name.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Category{}).Scopes(visibleTo(userID))
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range categories {
		hideSharedSpent(&categories[i])
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID returns a category the user owns or a shared one.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Scopes(visibleTo(userID)).Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	hideSharedSpent(&category)
	return &category, nil
}

// hideSharedSpent zeroes the spent of a shared category. Its stored aggregate
// sums every user's expenses and is never shown to a single user.
func hideSharedSpent(c *models.Category) {
	if c.UserID == nil {
		c.Spent = 0
	}
}

func (s *categoryService) getOwnedCategory(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates one of the user's own categories. A non-nil parentID
// reparents the node; an empty string makes it top-level. Reparenting moves
// the node's spent from the old ancestor chain to the new one.
func (s *categoryService) UpdateCategory(
	userID string,
	categoryID string,
	name string,
	description string,
	icon string,
	color string,
	parentID *string,
) (*models.Category, error) {
	category, err := s.getOwnedCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if name != "" && name != category.Name {
		if err := s.ensureNameAvailable(userID, name, categoryID); err != nil {
			return nil, err
		}
	}

	reparent := false
	if parentID != nil {
		if *parentID == categoryID {
			return nil, apperrors.ErrSelfParentCategory
		}
		if *parentID != "" {
			if _, err := s.GetCategoryByID(userID, *parentID); err != nil {
				if errors.Is(err, apperrors.ErrCategoryNotFound) {
					return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
				}
				return nil, err
			}
			cycle, err := ancestorChainContains(s.db, *parentID, categoryID)
			if err != nil {
				return nil, err
			}
			if cycle {
				return nil, apperrors.ErrCategoryCycle
			}
		}
		reparent = !sameParent(category.ParentID, *parentID)
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}
	if reparent {
		if *parentID == "" {
			updates["parent_id"] = nil
		} else {
			updates["parent_id"] = *parentID
		}
	}

	if len(updates) == 0 {
		return category, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Category{}).Where("id = ?", categoryID).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !reparent || category.Spent == 0 {
			return nil
		}
		if !category.IsTopLevel() {
			if err := s.propagator.ApplyDelta(tx, userID, *category.ParentID, -category.Spent); err != nil {
				return err
			}
		}
		if *parentID != "" {
			return s.propagator.ApplyDelta(tx, userID, *parentID, category.Spent)
		}
		return nil
	})
	if err != nil {
		return nil, toAppError(err)
	}

	if reparent {
		logger.Get().Infow("category reparented",
			"category_id", categoryID,
			"user_id", userID,
			"spent_moved", category.Spent,
		)
	}

	return s.getOwnedCategory(userID, categoryID)
}

func sameParent(current *string, next string) bool {
	if current == nil || *current == "" {
		return next == ""
	}
	return *current == next
}

// DeleteCategory removes one of the user's own categories. Categories with
// children or with expenses booked to them are kept.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.getOwnedCategory(userID, categoryID)
	if err != nil {
		return err
	}

	var childCount int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&childCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	var expenseCount int64
	if err := s.db.Model(&models.Expense{}).Where("category_id = ?", categoryID).Count(&expenseCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenseCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SeedDefaultCategories creates any missing shared default category and
// returns how many were created.
func (s *categoryService) SeedDefaultCategories() (int, error) {
	created := 0
	for _, name := range models.DefaultCategoryNames {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("user_id IS NULL AND name = ?", name).Count(&count).Error; err != nil {
			return created, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			continue
		}

		category := &models.Category{
			Name:  name,
			Icon:  models.DefaultCategoryIcon,
			Color: models.DefaultCategoryColor,
		}
		if err := s.db.Create(category).Error; err != nil {
			return created, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created++
	}

	if created > 0 {
		logger.Get().Infow("seeded default categories", "created", created)
	}
	return created, nil
}
