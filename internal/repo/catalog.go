package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/coffee_shop/internal/models"
)

func (r *GormRepo) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("category = ?", category).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(prod).Error
	})
}

// DeleteProduct removes the product and every cart line referencing it.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (*models.Product, int64, error) {
	var (
		prod    models.Product
		removed int64
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&prod, id).Error; err != nil {
			return err
		}
		res := tx.Where("product_id = ?", id).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &prod, removed, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchProducts is the database fallback when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	db := r.DB.WithContext(ctx).Model(&models.Product{})
	if strings.EqualFold(r.DB.Dialector.Name(), "postgres") {
		db = db.Where("name ILIKE ? OR description ILIKE ?", likePattern(q), likePattern(q))
	} else {
		lq := likePattern(strings.ToLower(q))
		db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", lq, lq)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := db.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
