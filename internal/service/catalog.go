package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/coffee_shop/internal/domain"
	"github.com/Skotchmaster/coffee_shop/internal/events"
	"github.com/Skotchmaster/coffee_shop/internal/models"
	"github.com/Skotchmaster/coffee_shop/internal/repo"
	"github.com/Skotchmaster/coffee_shop/internal/storage"
	"github.com/Skotchmaster/coffee_shop/internal/util"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
)

type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ref string) error
}

// ProductIndex is the optional full-text index kept next to the database.
type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Images ImageStore
	Index  ProductIndex
	Events events.Publisher
}

type ProductInput struct {
	Name        string
	Price       string
	Description string
	Category    string
}

type Image struct {
	Filename string
	Content  io.Reader
}

type Menu struct {
	Drinks []models.Product
	Foods  []models.Product
}

type AdminOverview struct {
	Users     []models.User
	Products  []models.Product
	CartItems []models.CartItem
	Meta      util.Meta
}

type SearchResult struct {
	Items []models.Product `json:"data"`
	Meta  util.Meta        `json:"meta"`
}

func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	if !domain.ValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q: %w", category, ErrValidation)
	}
	return s.Repo.ProductsByCategory(ctx, category)
}

func (s *CatalogService) Menu(ctx context.Context) (*Menu, error) {
	drinks, err := s.ListByCategory(ctx, domain.CategoryDrink)
	if err != nil {
		return nil, err
	}
	foods, err := s.ListByCategory(ctx, domain.CategoryFood)
	if err != nil {
		return nil, err
	}
	return &Menu{Drinks: drinks, Foods: foods}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, img *Image) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Description == "" || strings.TrimSpace(in.Price) == "" || in.Category == "" {
		return nil, fmt.Errorf("name, price, description and category are required: %w", ErrValidation)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return nil, fmt.Errorf("price %q is not a number: %w", in.Price, ErrValidation)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative: %w", ErrValidation)
	}
	if !domain.ValidCategory(in.Category) {
		return nil, fmt.Errorf("category must be drink or food: %w", ErrValidation)
	}
	if img == nil || img.Filename == "" || img.Content == nil {
		return nil, fmt.Errorf("image is required: %w", ErrValidation)
	}
	if _, ok := storage.Extension(img.Filename); !ok {
		return nil, fmt.Errorf("image %q: %w", img.Filename, ErrUnsupportedMediaType)
	}

	ref, err := s.Images.Save(ctx, img.Filename, img.Content)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedExtension) {
			return nil, fmt.Errorf("image %q: %w", img.Filename, ErrUnsupportedMediaType)
		}
		return nil, fmt.Errorf("save image: %w", err)
	}

	prod := models.Product{
		Name:        in.Name,
		Price:       price.Round(2),
		Description: in.Description,
		ImageURL:    ref,
		Category:    in.Category,
	}
	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		if rmErr := s.Images.Remove(ref); rmErr != nil {
			l.Warn("image_cleanup_failed", "ref", ref, "error", rmErr)
		}
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.Index(ctx, prod); err != nil {
			l.Warn("search_index_failed", "product_id", prod.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, key(prod.ID), events.New(events.ProductCreated, map[string]any{
		"product_id": prod.ID,
		"name":       prod.Name,
		"category":   prod.Category,
		"price":      domain.Money(prod.Price),
	}))
	return &prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product")

	prod, removed, err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if s.Images != nil && prod.ImageURL != "" {
		if err := s.Images.Remove(prod.ImageURL); err != nil {
			l.Warn("image_cleanup_failed", "ref", prod.ImageURL, "error", err)
		}
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, prod.ID); err != nil {
			l.Warn("search_unindex_failed", "product_id", prod.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, key(prod.ID), events.New(events.ProductDeleted, map[string]any{
		"product_id":         prod.ID,
		"cart_items_removed": removed,
	}))
	return prod, nil
}

func (s *CatalogService) AdminOverview(ctx context.Context, page, size int) (*AdminOverview, error) {
	offset, limit := util.Calculate(page, size)

	users, userList, err := s.Repo.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	products, productList, err := s.Repo.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	items, itemList, err := s.Repo.ListCartItems(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	return &AdminOverview{
		Users:     userList,
		Products:  productList,
		CartItems: itemList,
		Meta:      util.NewMeta(page, limit, max(users, products, items)),
	}, nil
}

// Search uses the index when configured and falls back to a LIKE query.
func (s *CatalogService) Search(ctx context.Context, q string, page, size int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("query is required: %w", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)

	var (
		total int64
		items []models.Product
		err   error
	)
	if s.Index != nil {
		total, items, err = s.Index.Search(ctx, q, offset, limit)
	} else {
		total, items, err = s.Repo.SearchProducts(ctx, q, offset, limit)
	}
	if err != nil {
		return nil, err
	}
	return &SearchResult{Items: items, Meta: util.NewMeta(page, limit, total)}, nil
}
