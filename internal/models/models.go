package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null;size:80"  json:"username"`
	Email        string    `gorm:"unique;not null;size:120" json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false"   json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name        string          `gorm:"not null;size:100"          json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string          `gorm:"not null"                   json:"description"`
	ImageURL    string          `gorm:"not null;size:200"          json:"image_url"`
	Category    string          `gorm:"not null;size:50;index"     json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"              json:"id"`
	UserID    uint    `gorm:"uniqueIndex:idx_user_product;not null" json:"user_id"`
	ProductID uint    `gorm:"uniqueIndex:idx_user_product;not null" json:"product_id"`
	Quantity  int     `gorm:"not null;default:1;check:quantity>0"   json:"quantity"`
	Product   Product `gorm:"foreignKey:ProductID"                  json:"product"`
	User      User    `gorm:"foreignKey:UserID"                     json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// All returns every model in migration order.
func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}}
}
