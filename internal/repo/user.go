package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/coffee_shop/internal/models"
)

func (r *GormRepo) UserTaken(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureAdmin creates the account when missing and grants the admin flag.
// An existing password is left untouched.
func (r *GormRepo) EnsureAdmin(ctx context.Context, u *models.User) (created bool, err error) {
	tx := r.DB.WithContext(ctx).Where("username = ?", u.Username).Attrs(models.User{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsAdmin:      true,
	}).FirstOrCreate(u)
	if tx.Error != nil {
		return false, tx.Error
	}
	created = tx.RowsAffected > 0
	if !u.IsAdmin {
		if err := r.DB.WithContext(ctx).Model(u).Update("is_admin", true).Error; err != nil {
			return created, err
		}
	}
	return created, nil
}

func (r *GormRepo) SetPasswordHash(ctx context.Context, userID uint, hash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

// UserIsAdmin reads the stored admin flag. A missing user is not an admin.
func (r *GormRepo) UserIsAdmin(ctx context.Context, userID uint) (bool, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Select("id", "is_admin").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}
