package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
)

// ErrNegativeQuantity rejects negative quantities before any mutation is
// attempted. Zero is accepted as a no-op-safe degenerate case for Add.
var ErrNegativeQuantity = errors.New("quantity must not be negative")

// CartResult is the typed outcome of a cart operation. Cart is non-nil
// whenever the durable store was consulted.
type CartResult struct {
	Status       entity.OutcomeStatus
	Product      *entity.Product
	LineQuantity decimal.Decimal
	Cart         *entity.CartView
}

// CartService owns the per-customer, per-business cart. All operations take
// free-text product names; resolution and the availability gate run through
// the catalog service, so a product that cannot be quoted can never enter a
// cart.
type CartService struct {
	catalog *CatalogService
	carts   repository.CartRepository
	log     *slog.Logger
}

func NewCartService(catalog *CatalogService, carts repository.CartRepository, log *slog.Logger) *CartService {
	return &CartService{catalog: catalog, carts: carts, log: log}
}

// Add accumulates qty onto the product's cart line, creating it if absent.
// An availability gate rejection returns the read path's status untouched,
// with no line created.
func (s *CartService) Add(ctx context.Context, businessID int64, customerPhone, productName string, qty decimal.Decimal) (*CartResult, error) {
	if qty.IsNegative() {
		return nil, ErrNegativeQuantity
	}

	lookup, err := s.catalog.Lookup(ctx, businessID, productName, customerPhone)
	if err != nil {
		return nil, err
	}
	if !lookup.Status.AllowsCartMutation() {
		return &CartResult{Status: lookup.Status, Product: lookup.Product}, nil
	}

	if qty.IsZero() {
		view, err := s.carts.View(ctx, businessID, customerPhone)
		if err != nil {
			return nil, fmt.Errorf("failed to view cart: %w", err)
		}
		return &CartResult{Status: entity.OutcomeSuccess, Product: lookup.Product, Cart: view}, nil
	}

	lineQty, view, err := s.carts.AddQuantity(ctx, businessID, customerPhone, lookup.Product, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.log.Info("cart line accumulated",
		"business_id", businessID, "customer", customerPhone,
		"product_id", lookup.Product.ID, "quantity", lineQty)

	return &CartResult{
		Status:       entity.OutcomeSuccess,
		Product:      lookup.Product,
		LineQuantity: lineQty,
		Cart:         view,
	}, nil
}

// SetQuantity replaces the line's quantity with newQty. Zero deletes the
// line; deleting an absent line is success. Positive values go through the
// same availability gate as Add, since they can create or grow a line.
func (s *CartService) SetQuantity(ctx context.Context, businessID int64, customerPhone, productName string, newQty decimal.Decimal) (*CartResult, error) {
	if newQty.IsNegative() {
		return nil, ErrNegativeQuantity
	}

	if newQty.IsZero() {
		return s.Remove(ctx, businessID, customerPhone, productName)
	}

	lookup, err := s.catalog.Lookup(ctx, businessID, productName, customerPhone)
	if err != nil {
		return nil, err
	}
	if !lookup.Status.AllowsCartMutation() {
		return &CartResult{Status: lookup.Status, Product: lookup.Product}, nil
	}

	view, err := s.carts.SetQuantity(ctx, businessID, customerPhone, lookup.Product, newQty)
	if err != nil {
		return nil, fmt.Errorf("failed to set cart quantity: %w", err)
	}

	s.log.Info("cart line replaced",
		"business_id", businessID, "customer", customerPhone,
		"product_id", lookup.Product.ID, "quantity", newQty)

	return &CartResult{
		Status:       entity.OutcomeSuccess,
		Product:      lookup.Product,
		LineQuantity: newQty,
		Cart:         view,
	}, nil
}

// Remove deletes the product's line from the cart. A resolved product with
// no line is success (idempotent); only an unresolvable name is not_found.
// Removal skips the availability gate: a line for a product that has since
// gone out of stock must still be removable.
func (s *CartService) Remove(ctx context.Context, businessID int64, customerPhone, productName string) (*CartResult, error) {
	p, err := s.catalog.Resolve(ctx, businessID, productName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &CartResult{Status: entity.OutcomeNotFound}, nil
		}
		return nil, err
	}

	view, err := s.carts.DeleteLine(ctx, businessID, customerPhone, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}

	s.log.Info("cart line removed",
		"business_id", businessID, "customer", customerPhone, "product_id", p.ID)

	return &CartResult{Status: entity.OutcomeSuccess, Product: p, Cart: view}, nil
}

// View returns the cart as durably stored. This is the single source of
// truth for totals; conversational history is never trusted for them.
func (s *CartService) View(ctx context.Context, businessID int64, customerPhone string) (*CartResult, error) {
	view, err := s.carts.View(ctx, businessID, customerPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to view cart: %w", err)
	}
	status := entity.OutcomeSuccess
	if view.Empty() {
		status = entity.OutcomeEmpty
	}
	return &CartResult{Status: status, Cart: view}, nil
}
