package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit is the unit of measure assumed when a product row does not
// specify one.
const DefaultUnit = "piece"

// Business is the tenant boundary. Every catalog and cart lookup is scoped
// by business ID; there is no cross-tenant visibility.
type Business struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	WhatsAppNumber   string `json:"whatsapp_number"`
	WhatsAppNumberID string `json:"whatsapp_number_id"`
	BusinessType     string `json:"business_type"`
	Personality      string `json:"personality_description"`
}

// Customer is identified by its messaging-channel address within one
// business. The same phone number talking to two businesses is two rows.
type Customer struct {
	ID          int64  `json:"id"`
	BusinessID  int64  `json:"business_id"`
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Product is a catalog entry owned by exactly one business. Price is null
// until the owner confirms the product; Stock is informational only.
type Product struct {
	ID          int64               `json:"id"`
	BusinessID  int64               `json:"business_id"`
	SKU         string              `json:"sku"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Unit        string              `json:"unit"`
	Price       decimal.NullDecimal `json:"price,omitempty"`
	Stock       int                 `json:"stock"`
	Status      AvailabilityStatus  `json:"availability_status"`
}

// HasUsablePrice reports whether the product carries a positive price that
// can be quoted and charged.
func (p *Product) HasUsablePrice() bool {
	return p.Price.Valid && p.Price.Decimal.IsPositive()
}

// Order is the durable record behind a cart. A cart is the single order in
// OrderStatusPending for one (business, customer) pair; once finalized the
// order freezes its items and leaves the cart flow.
type Order struct {
	ID         int64           `json:"id"`
	BusinessID int64           `json:"business_id"`
	CustomerID int64           `json:"customer_id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Only pending orders act as carts.
const OrderStatusPending = "pending"

// OrderItem is one cart line: a product reference plus a quantity in the
// product's unit at time of addition. Quantity is fractional (0.5 kilogram)
// and strictly positive while the line exists; PriceAtPurchase decouples the
// line from future catalog price changes.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	ProductID       int64           `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// CartLineView is one line of a cart as shown to the customer.
type CartLineView struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the read model of a cart: ordered lines plus the grand total,
// reflecting the durable store at call time.
type CartView struct {
	Lines      []CartLineView  `json:"lines"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Empty reports whether the cart has no lines.
func (v *CartView) Empty() bool { return len(v.Lines) == 0 }
