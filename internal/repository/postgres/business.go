package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
)

// psql builds queries with postgres-style placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type businessRepository struct {
	db *sql.DB
}

// NewBusinessRepository creates a BusinessRepository backed by Postgres.
func NewBusinessRepository(db *sql.DB) repository.BusinessRepository {
	return &businessRepository{db: db}
}

const businessColumns = "id, name, whatsapp_number, COALESCE(whatsapp_number_id, ''), business_type, personality_description"

func (r *businessRepository) FindByID(ctx context.Context, id int64) (*entity.Business, error) {
	row := psql.Select(businessColumns).
		From("businesses").
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		QueryRowContext(ctx)
	return scanBusiness(row)
}

func (r *businessRepository) FindByWhatsAppNumber(ctx context.Context, number string) (*entity.Business, error) {
	row := psql.Select(businessColumns).
		From("businesses").
		Where(squirrel.Eq{"whatsapp_number": number}).
		RunWith(r.db).
		QueryRowContext(ctx)
	return scanBusiness(row)
}

func scanBusiness(row squirrel.RowScanner) (*entity.Business, error) {
	var b entity.Business
	err := row.Scan(&b.ID, &b.Name, &b.WhatsAppNumber, &b.WhatsAppNumberID, &b.BusinessType, &b.Personality)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan business: %w", err)
	}
	return &b, nil
}
