package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/metrics"
	"budgetbuddy/internal/models"
)

// spendPropagator walks a category's ancestor chain applying a signed delta
// to every node, then to the owner's budgets on the top-level node.
type spendPropagator struct{}

// NewSpendPropagator creates a new SpendPropagator.
func NewSpendPropagator() SpendPropagator {
	return &spendPropagator{}
}

// ApplyDelta adds delta to the spent of categoryID, each of its ancestors and
// every budget owned by ownerID on the top-level ancestor. Each increment is a
// single atomic UPDATE. A node seen twice aborts the walk with
// ErrHierarchyCorrupted; a missing node aborts with ErrCategoryNotFound.
// Either way the caller's transaction must be rolled back.
func (p *spendPropagator) ApplyDelta(tx *gorm.DB, ownerID, categoryID string, delta int64) error {
	if delta == 0 {
		metrics.PropagationWalks.WithLabelValues("noop").Inc()
		return nil
	}

	log := logger.Named("propagation")
	visited := make(map[string]struct{})
	currentID := categoryID

	for {
		if _, seen := visited[currentID]; seen {
			metrics.PropagationWalks.WithLabelValues("cycle").Inc()
			log.Errorw("category hierarchy cycle detected",
				"origin_category_id", categoryID,
				"revisited_category_id", currentID,
				"depth", len(visited),
			)
			return apperrors.Wrap(apperrors.ErrHierarchyCorrupted,
				fmt.Errorf("category %s revisited while propagating from %s", currentID, categoryID))
		}
		visited[currentID] = struct{}{}

		var node models.Category
		if err := tx.Select("id", "parent_id").Where("id = ?", currentID).First(&node).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				metrics.PropagationWalks.WithLabelValues("missing_node").Inc()
				log.Errorw("propagation target missing",
					"origin_category_id", categoryID,
					"missing_category_id", currentID,
					"delta", delta,
				)
				return apperrors.Wrap(apperrors.ErrCategoryNotFound,
					fmt.Errorf("propagation target %s missing", currentID))
			}
			metrics.PropagationWalks.WithLabelValues("error").Inc()
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.Category{}).
			Where("id = ?", node.ID).
			UpdateColumn("spent", gorm.Expr("spent + ?", delta)).Error; err != nil {
			metrics.PropagationWalks.WithLabelValues("error").Inc()
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if node.IsTopLevel() {
			break
		}
		currentID = *node.ParentID
	}

	// Shared top-level categories can carry budgets of several users; only
	// the expense owner's budgets move.
	if err := tx.Model(&models.Budget{}).
		Where("category_id = ? AND user_id = ?", currentID, ownerID).
		UpdateColumn("spent", gorm.Expr("spent + ?", delta)).Error; err != nil {
		metrics.PropagationWalks.WithLabelValues("error").Inc()
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	metrics.PropagationWalks.WithLabelValues("applied").Inc()
	metrics.PropagationDepth.Observe(float64(len(visited)))
	return nil
}

// ancestorChainContains reports whether targetID is startID or one of its
// ancestors. It is the write-time cycle check for reparenting.
func ancestorChainContains(tx *gorm.DB, startID, targetID string) (bool, error) {
	visited := make(map[string]struct{})
	currentID := startID

	for currentID != "" {
		if currentID == targetID {
			return true, nil
		}
		if _, seen := visited[currentID]; seen {
			return false, apperrors.Wrap(apperrors.ErrHierarchyCorrupted,
				fmt.Errorf("category %s revisited while checking ancestors of %s", currentID, startID))
		}
		visited[currentID] = struct{}{}

		var node models.Category
		if err := tx.Select("id", "parent_id").Where("id = ?", currentID).First(&node).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if node.IsTopLevel() {
			return false, nil
		}
		currentID = *node.ParentID
	}
	return false, nil
}

// toAppError normalizes errors coming out of db.Transaction: callbacks return
// AppErrors, but commit failures surface as raw driver errors.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
