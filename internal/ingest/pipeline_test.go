package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
)

// recordingRepo captures inserts and enforces per-business SKU uniqueness.
type recordingRepo struct {
	inserted []entity.Product
}

func (r *recordingRepo) Insert(_ context.Context, p *entity.Product) error {
	for _, existing := range r.inserted {
		if existing.BusinessID == p.BusinessID && existing.SKU == p.SKU {
			return fmt.Errorf("insert product: %w", repository.ErrDuplicateSKU)
		}
	}
	p.ID = int64(len(r.inserted) + 1)
	r.inserted = append(r.inserted, *p)
	return nil
}

func (r *recordingRepo) FindByID(context.Context, int64) (*entity.Product, error) {
	return nil, repository.ErrNotFound
}

func (r *recordingRepo) FindFirstNameLike(context.Context, int64, string) (*entity.Product, error) {
	return nil, repository.ErrNotFound
}

func (r *recordingRepo) FindByExactName(context.Context, int64, string) (*entity.Product, error) {
	return nil, repository.ErrNotFound
}

func (r *recordingRepo) ListNames(context.Context, int64) ([]string, error) { return nil, nil }

func (r *recordingRepo) ListByBusiness(context.Context, int64, int, int) ([]entity.Product, error) {
	return nil, nil
}

func (r *recordingRepo) UpdateAvailability(context.Context, int64, entity.AvailabilityStatus, decimal.NullDecimal) error {
	return nil
}

var _ repository.ProductRepository = (*recordingRepo)(nil)

func testPipeline(repo repository.ProductRepository) *Pipeline {
	return NewPipeline(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIngestFaultIsolation(t *testing.T) {
	csv := strings.Join([]string{
		"sku,name,description,price,unit",
		"SKU-001,Leche Entera,Leche de vaca 1L,25.50,litro",
		"SKU-002,Pan Integral,,32.00,",
		"SKU-003,Queso Panela,Queso fresco,85,kilogram",
		"SKU-004,Producto Malo,,no-es-precio,",
		"SKU-005,Jamón de Pavo,,120.00,kilogram",
		"SKU-006,Tortillas,,18.00,kilogram",
		"SKU-003,Queso Repetido,,90.00,",
		"SKU-008,Aguacate,,55.00,kilogram",
		",Sin Clave,,12.00,",
		"SKU-010,Cerveza,,28.00,piece",
	}, "\n")

	repo := &recordingRepo{}
	added, err := testPipeline(repo).Ingest(context.Background(), 7, strings.NewReader(csv))
	require.NoError(t, err)

	// 10 data rows, minus the unparsable price (row 4) and the duplicate
	// SKU (row 7).
	assert.Equal(t, 8, added)
	assert.Len(t, repo.inserted, 8)

	for _, p := range repo.inserted {
		assert.Equal(t, int64(7), p.BusinessID)
		assert.Equal(t, entity.StatusConfirmed, p.Status)
		assert.True(t, p.HasUsablePrice())
	}
}

func TestIngestDefaults(t *testing.T) {
	csv := strings.Join([]string{
		"sku,name,description,price,unit",
		",Sin Clave,,12.00,",
	}, "\n")

	repo := &recordingRepo{}
	added, err := testPipeline(repo).Ingest(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, added)

	p := repo.inserted[0]
	assert.Equal(t, "SKU-AUTOGEN-1", p.SKU)
	assert.Equal(t, entity.DefaultUnit, p.Unit)
	assert.Equal(t, "Sin Clave", p.Name)
}

func TestIngestSkipsRowsMissingRequiredFields(t *testing.T) {
	csv := strings.Join([]string{
		"sku,name,description,price,unit",
		"SKU-001,,,10.00,",
		"SKU-002,Sin Precio,,,",
		"SKU-003,Completo,,15.00,",
	}, "\n")

	repo := &recordingRepo{}
	added, err := testPipeline(repo).Ingest(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, "Completo", repo.inserted[0].Name)
}

func TestIngestEmptyInput(t *testing.T) {
	repo := &recordingRepo{}

	added, err := testPipeline(repo).Ingest(context.Background(), 1, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, added)

	// Header only.
	added, err = testPipeline(repo).Ingest(context.Background(), 1, strings.NewReader("sku,name,description,price,unit\n"))
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestIngestShortRows(t *testing.T) {
	// Rows may omit trailing columns entirely.
	csv := strings.Join([]string{
		"sku,name,description,price",
		"SKU-001,Leche,,25.50",
	}, "\n")

	repo := &recordingRepo{}
	added, err := testPipeline(repo).Ingest(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, added)
	assert.Equal(t, entity.DefaultUnit, repo.inserted[0].Unit)
}
