package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
)

// ErrNotFound is returned when a scoped lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateSKU is returned by ProductRepository.Insert when the SKU is
// already taken within the business.
var ErrDuplicateSKU = errors.New("duplicate sku for business")

// BusinessRepository handles persistence for Businesses.
type BusinessRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Business, error)
	// FindByWhatsAppNumber resolves the tenant an inbound webhook belongs to.
	FindByWhatsAppNumber(ctx context.Context, number string) (*entity.Business, error)
}

// ProductRepository handles persistence for catalog products. Every method
// is scoped by business ID; no call can cross a tenant boundary.
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	// FindFirstNameLike returns the first product (insertion order) whose
	// name matches the case-insensitive SQL pattern, or ErrNotFound.
	FindFirstNameLike(ctx context.Context, businessID int64, pattern string) (*entity.Product, error)
	// FindByExactName matches the full name case-insensitively.
	FindByExactName(ctx context.Context, businessID int64, name string) (*entity.Product, error)
	// ListNames returns all product names of a business, insertion order.
	ListNames(ctx context.Context, businessID int64) ([]string, error)
	ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]entity.Product, error)
	// Insert stores a new product and fills in its ID. A SKU collision
	// within the business yields ErrDuplicateSKU.
	Insert(ctx context.Context, p *entity.Product) error
	// UpdateAvailability applies an owner decision: new status plus the
	// confirmed price (null when rejecting).
	UpdateAvailability(ctx context.Context, id int64, status entity.AvailabilityStatus, price decimal.NullDecimal) error
}

// CartRepository owns the pending order of one (business, customer) pair.
// Each mutation runs in a single transaction and is atomic per call; the
// accumulate/replace upserts rely on storage-level conflict resolution, so
// concurrent calls for the same product serialize without lost updates.
type CartRepository interface {
	// AddQuantity adds qty to the product's line, creating it if absent,
	// and returns the updated line quantity plus the cart view.
	AddQuantity(ctx context.Context, businessID int64, customerPhone string, p *entity.Product, qty decimal.Decimal) (decimal.Decimal, *entity.CartView, error)
	// SetQuantity replaces the line's quantity with qty (> 0), creating the
	// line if absent.
	SetQuantity(ctx context.Context, businessID int64, customerPhone string, p *entity.Product, qty decimal.Decimal) (*entity.CartView, error)
	// DeleteLine removes the product's line. Deleting an absent line is a
	// no-op, not an error.
	DeleteLine(ctx context.Context, businessID int64, customerPhone string, productID int64) (*entity.CartView, error)
	// View returns the cart as stored, lines in insertion order.
	View(ctx context.Context, businessID int64, customerPhone string) (*entity.CartView, error)
}
