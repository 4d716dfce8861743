package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/coffee_shop/internal/domain"
	"github.com/Skotchmaster/coffee_shop/internal/events"
	"github.com/Skotchmaster/coffee_shop/internal/models"
	"github.com/Skotchmaster/coffee_shop/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// CartSummary is what the storefront shows after a cart mutation.
type CartSummary struct {
	Items []models.CartItem
	Total string
	Count int
}

func (s *CartService) AddItem(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}

	item, err := s.Repo.AddItem(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, key(userID), events.New(events.CartItemAdded, map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   item.Quantity,
	}))
	return item, nil
}

func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (bool, error) {
	deleted, err := s.Repo.SetQuantity(ctx, userID, itemID, quantity)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	case errors.Is(err, repo.ErrNotOwner):
		return false, fmt.Errorf("cart item %d: %w", itemID, ErrUnauthorized)
	case err != nil:
		return false, err
	}

	typ := events.CartItemUpdated
	if deleted {
		typ = events.CartItemRemoved
	}
	publish(ctx, s.Events, events.TopicCart, key(userID), events.New(typ, map[string]any{
		"user_id":  userID,
		"item_id":  itemID,
		"quantity": max(quantity, 0),
	}))
	return deleted, nil
}

func (s *CartService) ListItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.ListItems(ctx, userID)
}

func (s *CartService) Summary(ctx context.Context, userID uint) (*CartSummary, error) {
	items, err := s.Repo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CartSummary{
		Items: items,
		Total: domain.Money(domain.ComputeTotal(items)),
		Count: domain.Count(items),
	}, nil
}
