package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/coffee_shop/internal/models"
)

// AddItem increments the user's line for productID or creates it with
// quantity 1 in a single upsert on (user_id, product_id).
// gorm.ErrRecordNotFound means the product does not exist.
func (r *GormRepo) AddItem(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prod models.Product
		if err := tx.Select("id").First(&prod, productID).Error; err != nil {
			return err
		}

		line := models.CartItem{UserID: userID, ProductID: productID, Quantity: 1}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("cart_items.quantity + ?", 1)}),
		}).Create(&line).Error
		if err != nil {
			return err
		}

		return tx.Preload("Product").
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetQuantity overwrites the quantity of a line owned by userID, or removes
// the line when quantity <= 0.
func (r *GormRepo) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (deleted bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := forUpdate(tx).First(&item, itemID).Error; err != nil {
			return err
		}
		if item.UserID != userID {
			return ErrNotOwner
		}
		if quantity <= 0 {
			deleted = true
			return tx.Delete(&models.CartItem{}, item.ID).Error
		}
		return tx.Model(&models.CartItem{}).Where("id = ?", item.ID).Update("quantity", quantity).Error
	})
	return deleted, err
}

func (r *GormRepo) ListItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return listItems(r.DB.WithContext(ctx), userID)
}

func listItems(db *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := db.Preload("Product").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// TakeCart reads the user's cart, hands it to check and, if check accepts it,
// deletes every line in the same transaction.
func (r *GormRepo) TakeCart(ctx context.Context, userID uint, check func([]models.CartItem) error) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if items, err = listItems(forUpdate(tx), userID); err != nil {
			return err
		}
		if check != nil {
			if err := check(items); err != nil {
				return err
			}
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	var removed int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", userID).Delete(&models.CartItem{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}

func (r *GormRepo) ListCartItems(ctx context.Context, offset, limit int) (int64, []models.CartItem, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").Preload("User").
		Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
