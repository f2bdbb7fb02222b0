package repositories

import (
	"fmt"

	"github.com/biolink-hub/biolink_api/dto"
	"gorm.io/gorm"
)

// positionStore is the single capability the reorder algorithm needs: update
// one row's position, scoped to its owner, reporting how many rows matched.
// The gorm transaction satisfies it in production; tests substitute a fake.
type positionStore interface {
	UpdatePosition(id, ownerID string, position int) (int64, error)
}

// ValidateReorderItems checks batch shape. An empty batch is a valid no-op;
// a negative order or blank id rejects the whole batch before anything is
// written.
func ValidateReorderItems(items []dto.ReorderItem) error {
	for i, item := range items {
		if item.ID == "" {
			return fmt.Errorf("item %d: id is required", i)
		}
		if item.Order < 0 {
			return fmt.Errorf("item %d: order must be non-negative", i)
		}
	}
	return nil
}

// applyReorder walks the batch against the store. Rows that do not belong to
// the owner match zero rows and are silently skipped; the returned count is
// the number of rows actually moved.
func applyReorder(store positionStore, ownerID string, items []dto.ReorderItem) (int64, error) {
	var updated int64
	for _, item := range items {
		n, err := store.UpdatePosition(item.ID, ownerID, item.Order)
		if err != nil {
			return updated, err
		}
		updated += n
	}
	return updated, nil
}

// gormPositionStore applies position updates for one model within a
// transaction. Ownership is part of the WHERE clause, so the check and the
// write are one atomic statement.
type gormPositionStore struct {
	tx       *gorm.DB
	modelPtr interface{}
}

func (s gormPositionStore) UpdatePosition(id, ownerID string, position int) (int64, error) {
	res := s.tx.Model(s.modelPtr).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("position", position)
	return res.RowsAffected, res.Error
}

// ReorderScoped validates and applies a reorder batch for any content model
// as one transaction. All-or-nothing across the batch: a store error rolls
// back every position already written.
func (r *ContentRepository) ReorderScoped(modelPtr interface{}, ownerID string, items []dto.ReorderItem) (int64, error) {
	if err := ValidateReorderItems(items); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	var updated int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		n, err := applyReorder(gormPositionStore{tx: tx, modelPtr: modelPtr}, ownerID, items)
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	return updated, err
}
