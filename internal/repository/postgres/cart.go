package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a CartRepository backed by Postgres. Mutations
// run in one transaction per call; the accumulate/replace semantics are
// expressed as ON CONFLICT upserts on (order_id, product_id), so concurrent
// calls for the same line serialize on the row without lost updates.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) AddQuantity(ctx context.Context, businessID int64, customerPhone string, p *entity.Product, qty decimal.Decimal) (decimal.Decimal, *entity.CartView, error) {
	var lineQty decimal.Decimal
	view, err := r.mutate(ctx, businessID, customerPhone, func(tx *sql.Tx, orderID int64) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit, price_at_purchase)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (order_id, product_id)
			DO UPDATE SET quantity = order_items.quantity + EXCLUDED.quantity
			RETURNING quantity`,
			orderID, p.ID, qty, p.Unit, p.Price.Decimal,
		).Scan(&lineQty)
	})
	if err != nil {
		return decimal.Zero, nil, err
	}
	return lineQty, view, nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, businessID int64, customerPhone string, p *entity.Product, qty decimal.Decimal) (*entity.CartView, error) {
	return r.mutate(ctx, businessID, customerPhone, func(tx *sql.Tx, orderID int64) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit, price_at_purchase)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (order_id, product_id)
			DO UPDATE SET quantity = EXCLUDED.quantity`,
			orderID, p.ID, qty, p.Unit, p.Price.Decimal,
		)
		return err
	})
}

func (r *cartRepository) DeleteLine(ctx context.Context, businessID int64, customerPhone string, productID int64) (*entity.CartView, error) {
	return r.mutate(ctx, businessID, customerPhone, func(tx *sql.Tx, orderID int64) error {
		// Absent lines are fine: deletion is idempotent.
		_, err := tx.ExecContext(ctx,
			"DELETE FROM order_items WHERE order_id = $1 AND product_id = $2",
			orderID, productID,
		)
		return err
	})
}

func (r *cartRepository) View(ctx context.Context, businessID int64, customerPhone string) (*entity.CartView, error) {
	// Reads never create customer or order rows.
	var orderID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT o.id
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.business_id = $1 AND c.phone_number = $2 AND o.status = $3`,
		businessID, customerPhone, entity.OrderStatusPending,
	).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return &entity.CartView{GrandTotal: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending order: %w", err)
	}
	return loadView(ctx, r.db, orderID)
}

// mutate wraps a cart mutation: it finds or creates the customer and the
// pending order, applies fn, refreshes the stored total and returns the
// resulting view. Any failure rolls the whole call back.
func (r *cartRepository) mutate(ctx context.Context, businessID int64, customerPhone string, fn func(tx *sql.Tx, orderID int64) error) (*entity.CartView, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderID, err := getOrCreatePendingOrder(ctx, tx, businessID, customerPhone)
	if err != nil {
		return nil, err
	}

	if err := fn(tx, orderID); err != nil {
		return nil, fmt.Errorf("failed to mutate cart line: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET total_price = (
			SELECT COALESCE(SUM(quantity * price_at_purchase), 0)
			FROM order_items WHERE order_id = $1
		) WHERE id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh order total: %w", err)
	}

	view, err := loadView(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return view, nil
}

func getOrCreatePendingOrder(ctx context.Context, tx *sql.Tx, businessID int64, customerPhone string) (int64, error) {
	// The no-op DO UPDATE makes the RETURNING clause yield the existing row
	// on conflict, so this is a race-free find-or-create.
	var customerID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO customers (business_id, phone_number)
		VALUES ($1, $2)
		ON CONFLICT (business_id, phone_number)
		DO UPDATE SET phone_number = EXCLUDED.phone_number
		RETURNING id`,
		businessID, customerPhone,
	).Scan(&customerID)
	if err != nil {
		return 0, fmt.Errorf("failed to find or create customer: %w", err)
	}

	var orderID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (business_id, customer_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (business_id, customer_id) WHERE status = 'pending'
		DO UPDATE SET status = EXCLUDED.status
		RETURNING id`,
		businessID, customerID, entity.OrderStatusPending,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to find or create pending order: %w", err)
	}
	return orderID, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadView(ctx context.Context, q queryer, orderID int64) (*entity.CartView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT oi.product_id, p.name, oi.quantity, oi.unit, oi.price_at_purchase
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	view := &entity.CartView{GrandTotal: decimal.Zero}
	for rows.Next() {
		var line entity.CartLineView
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Quantity, &line.Unit, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		line.Subtotal = line.Quantity.Mul(line.UnitPrice)
		view.GrandTotal = view.GrandTotal.Add(line.Subtotal)
		view.Lines = append(view.Lines, line)
	}
	return view, rows.Err()
}
