package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/coffee_shop/internal/events"
	"github.com/Skotchmaster/coffee_shop/internal/models"
	"github.com/Skotchmaster/coffee_shop/internal/repo"
	"github.com/Skotchmaster/coffee_shop/pkg/db"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), ":memory:", "")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return &repo.GormRepo{DB: gdb}
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
	topics []string
}

func (r *recorder) Publish(_ context.Context, topic, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.events = append(r.events, event.(events.Event))
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func seedUser(t *testing.T, r *repo.GormRepo, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, r.DB.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, r *repo.GormRepo, name, price, category string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Description: name + " description",
		ImageURL:    "/static/images/" + name + ".png",
		Category:    category,
	}
	require.NoError(t, r.DB.Create(&p).Error)
	return p
}

func countItems(t *testing.T, r *repo.GormRepo, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(&models.CartItem{}).Where(where, args...).Count(&n).Error)
	return n
}
