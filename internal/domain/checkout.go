package domain

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/coffee_shop/internal/models"
)

// DiscountRate is the flat checkout discount.
var DiscountRate = decimal.RequireFromString("0.20")

var ErrEmptyCart = errors.New("cart is empty")

// ComputeTotal sums price times quantity over items.
func ComputeTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func ItemTotal(it models.CartItem) decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Count is the number of units in the cart, shown on the cart badge.
func Count(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

type Quote struct {
	Original decimal.Decimal `json:"original_total"`
	Discount decimal.Decimal `json:"discount_amount"`
	Final    decimal.Decimal `json:"final_total"`
}

func NewQuote(items []models.CartItem) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrEmptyCart
	}
	original := ComputeTotal(items)
	discount := original.Mul(DiscountRate)
	return Quote{
		Original: original,
		Discount: discount,
		Final:    original.Sub(discount),
	}, nil
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

const (
	CategoryDrink = "drink"
	CategoryFood  = "food"
)

func ValidCategory(c string) bool {
	return c == CategoryDrink || c == CategoryFood
}

// Money formats an amount with two decimals for display.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
