package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/coffee_shop/internal/domain"
	"github.com/Skotchmaster/coffee_shop/internal/events"
	"github.com/Skotchmaster/coffee_shop/internal/models"
	"github.com/Skotchmaster/coffee_shop/internal/repo"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
)

type CheckoutService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type PaymentResult struct {
	Method domain.PaymentMethod
	Quote  domain.Quote
	Items  int
}

// Quote prices the user's current cart without changing it.
func (s *CheckoutService) Quote(ctx context.Context, userID uint) ([]models.CartItem, domain.Quote, error) {
	items, err := s.Repo.ListItems(ctx, userID)
	if err != nil {
		return nil, domain.Quote{}, err
	}
	q, err := domain.NewQuote(items)
	if err != nil {
		return items, domain.Quote{}, err
	}
	return items, q, nil
}

// ProcessPayment simulates taking payment for the cart and empties it.
// The quote is recomputed from the cart at payment time.
func (s *CheckoutService) ProcessPayment(ctx context.Context, userID uint, method string) (*PaymentResult, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.process_payment")

	m := domain.PaymentMethod(method)
	if !m.Valid() {
		return nil, fmt.Errorf("payment method %q: %w", method, ErrInvalidPaymentMethod)
	}

	var q domain.Quote
	items, err := s.Repo.TakeCart(ctx, userID, func(items []models.CartItem) error {
		var err error
		q, err = domain.NewQuote(items)
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &PaymentResult{Method: m, Quote: q, Items: len(items)}
	l.Info("payment_processed", "user_id", userID, "method", method, "final", domain.Money(q.Final))
	publish(ctx, s.Events, events.TopicCart, key(userID), events.New(events.PaymentProcessed, map[string]any{
		"user_id":  userID,
		"method":   string(m),
		"original": domain.Money(q.Original),
		"discount": domain.Money(q.Discount),
		"final":    domain.Money(q.Final),
	}))
	return res, nil
}

// FinalizeOrder empties the cart without pricing it.
func (s *CheckoutService) FinalizeOrder(ctx context.Context, userID uint) error {
	removed, err := s.Repo.ClearCart(ctx, userID)
	if err != nil {
		return err
	}
	publish(ctx, s.Events, events.TopicCart, key(userID), events.New(events.CartCleared, map[string]any{
		"user_id": userID,
		"items":   removed,
	}))
	return nil
}
