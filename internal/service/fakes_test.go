package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
	"github.com/ventia/ventia-backend/internal/resolver"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePublisher records published events; err, when set, fails every publish.
type fakePublisher struct {
	mu     sync.Mutex
	err    error
	topics []string
	events []entity.Event
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic string, _ string, event entity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []entity.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.Event(nil), f.events...)
}

// fakeProductRepo is an in-memory catalog with the same matching semantics
// as the SQL-backed repository.
type fakeProductRepo struct {
	mu       sync.Mutex
	seq      int64
	products []entity.Product
}

func (f *fakeProductRepo) add(p entity.Product) entity.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	f.products = append(f.products, p)
	return p
}

func (f *fakeProductRepo) FindByID(_ context.Context, id int64) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProductRepo) FindFirstNameLike(_ context.Context, businessID int64, pattern string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokens := strings.Split(strings.Trim(pattern, "%"), "%")
	for i := range f.products {
		if f.products[i].BusinessID != businessID {
			continue
		}
		rest := strings.ToLower(f.products[i].Name)
		matched := true
		for _, tok := range tokens {
			idx := strings.Index(rest, tok)
			if idx < 0 {
				matched = false
				break
			}
			rest = rest[idx+len(tok):]
		}
		if matched {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProductRepo) FindByExactName(_ context.Context, businessID int64, name string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].BusinessID == businessID && strings.EqualFold(f.products[i].Name, name) {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProductRepo) ListNames(_ context.Context, businessID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for i := range f.products {
		if f.products[i].BusinessID == businessID {
			names = append(names, f.products[i].Name)
		}
	}
	return names, nil
}

func (f *fakeProductRepo) ListByBusiness(_ context.Context, businessID int64, limit, offset int) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Product
	for i := range f.products {
		if f.products[i].BusinessID == businessID {
			out = append(out, f.products[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProductRepo) Insert(_ context.Context, p *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].BusinessID == p.BusinessID && f.products[i].SKU == p.SKU {
			return fmt.Errorf("insert product: %w", repository.ErrDuplicateSKU)
		}
	}
	f.seq++
	p.ID = f.seq
	f.products = append(f.products, *p)
	return nil
}

func (f *fakeProductRepo) UpdateAvailability(_ context.Context, id int64, status entity.AvailabilityStatus, price decimal.NullDecimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].Status = status
			f.products[i].Price = price
			return nil
		}
	}
	return repository.ErrNotFound
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

// fakeCartRepo keeps one cart per (business, customer) with accumulate and
// replace semantics matching the upsert-based implementation.
type cartLine struct {
	product entity.Product
	qty     decimal.Decimal
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string][]cartLine
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string][]cartLine)}
}

func cartKey(businessID int64, phone string) string {
	return fmt.Sprintf("%d|%s", businessID, phone)
}

func (f *fakeCartRepo) AddQuantity(_ context.Context, businessID int64, phone string, p *entity.Product, qty decimal.Decimal) (decimal.Decimal, *entity.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := cartKey(businessID, phone)
	for i := range f.carts[key] {
		if f.carts[key][i].product.ID == p.ID {
			f.carts[key][i].qty = f.carts[key][i].qty.Add(qty)
			return f.carts[key][i].qty, f.viewLocked(key), nil
		}
	}
	f.carts[key] = append(f.carts[key], cartLine{product: *p, qty: qty})
	return qty, f.viewLocked(key), nil
}

func (f *fakeCartRepo) SetQuantity(_ context.Context, businessID int64, phone string, p *entity.Product, qty decimal.Decimal) (*entity.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := cartKey(businessID, phone)
	for i := range f.carts[key] {
		if f.carts[key][i].product.ID == p.ID {
			f.carts[key][i].qty = qty
			return f.viewLocked(key), nil
		}
	}
	f.carts[key] = append(f.carts[key], cartLine{product: *p, qty: qty})
	return f.viewLocked(key), nil
}

func (f *fakeCartRepo) DeleteLine(_ context.Context, businessID int64, phone string, productID int64) (*entity.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := cartKey(businessID, phone)
	lines := f.carts[key]
	for i := range lines {
		if lines[i].product.ID == productID {
			f.carts[key] = append(lines[:i:i], lines[i+1:]...)
			break
		}
	}
	return f.viewLocked(key), nil
}

func (f *fakeCartRepo) View(_ context.Context, businessID int64, phone string) (*entity.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked(cartKey(businessID, phone)), nil
}

func (f *fakeCartRepo) viewLocked(key string) *entity.CartView {
	view := &entity.CartView{GrandTotal: decimal.Zero}
	for _, l := range f.carts[key] {
		price := l.product.Price.Decimal
		subtotal := price.Mul(l.qty)
		view.Lines = append(view.Lines, entity.CartLineView{
			ProductID: l.product.ID,
			Name:      l.product.Name,
			Quantity:  l.qty,
			Unit:      l.product.Unit,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
		view.GrandTotal = view.GrandTotal.Add(subtotal)
	}
	return view
}

var _ repository.CartRepository = (*fakeCartRepo)(nil)

// newTestServices wires catalog and cart services over the fakes.
func newTestServices(products *fakeProductRepo, carts *fakeCartRepo, pub *fakePublisher) (*CatalogService, *CartService) {
	res := resolver.New(products, resolver.DefaultCutoff, discardLog())
	catalog := NewCatalogService(products, res, pub, "owner-notify", discardLog())
	cart := NewCartService(catalog, carts, discardLog())
	return catalog, cart
}

func confirmedProduct(businessID int64, name, sku string, price float64) entity.Product {
	return entity.Product{
		BusinessID: businessID,
		SKU:        sku,
		Name:       name,
		Unit:       entity.DefaultUnit,
		Price:      decimal.NewNullDecimal(decimal.NewFromFloat(price)),
		Status:     entity.StatusConfirmed,
	}
}
