package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/models"
)

// itemService handles linked item state.
type itemService struct {
	db *gorm.DB
}

// NewItemService creates a new ItemServicer.
func NewItemService(db *gorm.DB) ItemServicer {
	return &itemService{db: db}
}

// GetItemByExternalID loads an item by its Plaid item id.
func (s *itemService) GetItemByExternalID(ctx context.Context, plaidItemID string) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).Where("plaid_item_id = ?", plaidItemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// GetUserItems lists all of a user's items, archived ones included.
func (s *itemService) GetUserItems(ctx context.Context, userID uint) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// AdvanceCursor persists the continuation token reached by a live fetch and
// stamps the sync time. It is the only writer of Item.Cursor.
func (s *itemService) AdvanceCursor(ctx context.Context, itemID uint, cursor string, syncedAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"cursor":         cursor,
			"last_synced_at": syncedAt.UTC(),
		})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrItemNotFound
	}
	return nil
}

// ArchiveItem stops future syncs for an item. Its data stays in place.
func (s *itemService) ArchiveItem(userID, itemID uint) (*models.Item, error) {
	var item models.Item
	if err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if item.IsArchived {
		return nil, apperrors.ErrItemArchived
	}

	if err := s.db.Model(&item).Update("is_archived", true).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// GetUserIDsWithActiveItems returns the ids of users owning at least one
// non-archived item.
func (s *itemService) GetUserIDsWithActiveItems(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("is_archived = ?", false).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}
