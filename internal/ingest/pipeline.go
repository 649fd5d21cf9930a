// Package ingest bulk-loads a business catalog from tabular input.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
)

// Column order of the input table. The first row is a header and skipped.
// unit is optional and defaults to entity.DefaultUnit.
const (
	colSKU = iota
	colName
	colDescription
	colPrice
	colUnit
)

// Pipeline streams CSV rows into the catalog with per-row fault isolation:
// a malformed row or a duplicate SKU is logged and skipped, never aborting
// the rest of the batch. Bulk-loaded products are presumed business-verified
// and created CONFIRMED.
type Pipeline struct {
	products repository.ProductRepository
	log      *slog.Logger
}

func NewPipeline(products repository.ProductRepository, log *slog.Logger) *Pipeline {
	return &Pipeline{products: products, log: log}
}

// Ingest reads rows from r and returns the number of products committed.
// It returns an error only for total pipeline failure (unreadable input);
// partial failure is reflected in the count and the warning log.
func (p *Pipeline) Ingest(ctx context.Context, businessID int64, r io.Reader) (int, error) {
	batchID := uuid.NewString()
	log := p.log.With("batch_id", batchID, "business_id", businessID)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may omit trailing columns
	reader.TrimLeadingSpace = true

	// Header row.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read header row: %w", err)
	}

	added := 0
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Warn("skipping malformed row", "row", row, "err", err)
			continue
		}
		if err != nil {
			return added, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		product, err := parseRow(businessID, row, record)
		if err != nil {
			log.Warn("skipping invalid row", "row", row, "err", err)
			continue
		}

		if err := p.products.Insert(ctx, product); err != nil {
			if errors.Is(err, repository.ErrDuplicateSKU) {
				log.Warn("skipping row with duplicate sku", "row", row, "sku", product.SKU)
				continue
			}
			log.Warn("skipping row after storage error", "row", row, "err", err)
			continue
		}
		added++
	}

	log.Info("catalog ingestion finished", "rows", row, "added", added)
	return added, nil
}

func parseRow(businessID int64, row int, record []string) (*entity.Product, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	name := field(colName)
	if name == "" {
		return nil, errors.New("missing name")
	}

	rawPrice := field(colPrice)
	if rawPrice == "" {
		return nil, errors.New("missing price")
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", rawPrice)
	}

	sku := field(colSKU)
	if sku == "" {
		sku = fmt.Sprintf("SKU-AUTOGEN-%d", row)
	}

	unit := field(colUnit)
	if unit == "" {
		unit = entity.DefaultUnit
	}

	return &entity.Product{
		BusinessID:  businessID,
		SKU:         sku,
		Name:        name,
		Description: field(colDescription),
		Unit:        unit,
		Price:       decimal.NullDecimal{Decimal: price, Valid: true},
		Status:      entity.StatusConfirmed,
	}, nil
}
