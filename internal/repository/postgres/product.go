package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, business_id, sku, name, description, unit, price, stock, availability_status"

func (r *productRepository) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	row := psql.Select(productColumns).
		From("products").
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		QueryRowContext(ctx)
	return scanProduct(row)
}

func (r *productRepository) FindFirstNameLike(ctx context.Context, businessID int64, pattern string) (*entity.Product, error) {
	if pattern == "" {
		return nil, repository.ErrNotFound
	}
	row := psql.Select(productColumns).
		From("products").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.ILike{"name": pattern}).
		OrderBy("id ASC").
		Limit(1).
		RunWith(r.db).
		QueryRowContext(ctx)
	return scanProduct(row)
}

func (r *productRepository) FindByExactName(ctx context.Context, businessID int64, name string) (*entity.Product, error) {
	row := psql.Select(productColumns).
		From("products").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Expr("LOWER(name) = LOWER(?)", name)).
		OrderBy("id ASC").
		Limit(1).
		RunWith(r.db).
		QueryRowContext(ctx)
	return scanProduct(row)
}

func (r *productRepository) ListNames(ctx context.Context, businessID int64) ([]string, error) {
	rows, err := psql.Select("name").
		From("products").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("id ASC").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query product names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan product name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *productRepository) ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]entity.Product, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := psql.Select(productColumns).
		From("products").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) Insert(ctx context.Context, p *entity.Product) error {
	if p.Unit == "" {
		p.Unit = entity.DefaultUnit
	}
	err := psql.Insert("products").
		SetMap(map[string]interface{}{
			"business_id":         p.BusinessID,
			"sku":                 p.SKU,
			"name":                p.Name,
			"description":         p.Description,
			"unit":                p.Unit,
			"price":               p.Price,
			"stock":               p.Stock,
			"availability_status": string(p.Status),
		}).
		Suffix("RETURNING id").
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %q", repository.ErrDuplicateSKU, p.SKU)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *productRepository) UpdateAvailability(ctx context.Context, id int64, status entity.AvailabilityStatus, price decimal.NullDecimal) error {
	res, err := psql.Update("products").
		Set("availability_status", string(status)).
		Set("price", price).
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update product availability: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProduct(row squirrel.RowScanner) (*entity.Product, error) {
	var p entity.Product
	var status string
	err := row.Scan(&p.ID, &p.BusinessID, &p.SKU, &p.Name, &p.Description, &p.Unit, &p.Price, &p.Stock, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	p.Status = entity.AvailabilityStatus(status)
	return &p, nil
}
