package repository

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/database"
	"gorm.io/gorm"
)

const maxToggleAttempts = 3

// toggleRow flips the presence of the row matching where, inside one
// transaction. The delete is the compare-and-swap: when it removes a row the
// membership was true and is now false; otherwise the row is inserted. A
// concurrent insert of the same pair surfaces as a unique violation and the
// whole transaction is retried against the new state.
func toggleRow(ctx context.Context, db *gorm.DB, model interface{}, where map[string]interface{}, newRow func() interface{}) (bool, error) {
	return toggleRowGuarded(ctx, db, model, where, newRow, nil)
}

// toggleRowGuarded is toggleRow with a precondition evaluated inside the same
// transaction. A guard error aborts the toggle and is returned unchanged.
func toggleRowGuarded(ctx context.Context, db *gorm.DB, model interface{}, where map[string]interface{}, newRow func() interface{}, guard func(tx *gorm.DB) error) (bool, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		var present bool
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if guard != nil {
				if err := guard(tx); err != nil {
					return err
				}
			}
			res := tx.Where(where).Delete(model)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				present = false
				return nil
			}
			if err := tx.Create(newRow()).Error; err != nil {
				return err
			}
			present = true
			return nil
		})
		if err == nil {
			return present, nil
		}
		if !database.IsUniqueViolation(err) {
			return false, err
		}
	}
	return false, domain.ErrToggleContended
}

// newContentID returns a time-ordered id for posts, comments, lists and notifications.
func newContentID() string {
	return ulid.Make().String()
}

// excludeCreators adds "creator_id NOT IN ?" when ids is non-empty.
func excludeCreators(q *gorm.DB, column string, ids []string) *gorm.DB {
	if len(ids) == 0 {
		return q
	}
	return q.Where(column+" NOT IN ?", ids)
}
