package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/messaging"
	"github.com/ventia/ventia-backend/internal/repository"
	"github.com/ventia/ventia-backend/internal/resolver"
)

// Owner decisions arriving from the management side channel.
const (
	DecisionConfirm = "SI"
	DecisionReject  = "NO"
)

// ProductLookup is the outcome of resolving a product and applying the
// availability read rules. Product is nil only for OutcomeNotFound.
type ProductLookup struct {
	Status  entity.OutcomeStatus
	Product *entity.Product
}

// CatalogService owns product resolution, the availability read rules and
// the owner decision transitions.
type CatalogService struct {
	products    repository.ProductRepository
	resolver    *resolver.Resolver
	publisher   messaging.Publisher
	notifyTopic string
	log         *slog.Logger
}

func NewCatalogService(
	products repository.ProductRepository,
	res *resolver.Resolver,
	publisher messaging.Publisher,
	notifyTopic string,
	log *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:    products,
		resolver:    res,
		publisher:   publisher,
		notifyTopic: notifyTopic,
		log:         log,
	}
}

// Lookup resolves name within the business and maps the product's
// availability state to an outcome code:
//
//	CONFIRMED with positive price  -> success (mutation allowed)
//	CONFIRMED without usable price -> price_not_found
//	OUT_OF_STOCK                   -> out_of_stock
//	UNCONFIRMED                    -> unconfirmed (+ owner notification)
//	REJECTED / anything else       -> not_available
//
// The owner notification is fire-and-forget: a publish failure is logged
// and never fails the lookup.
func (s *CatalogService) Lookup(ctx context.Context, businessID int64, name, customerPhone string) (*ProductLookup, error) {
	p, err := s.resolver.Resolve(ctx, businessID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ProductLookup{Status: entity.OutcomeNotFound}, nil
		}
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	switch p.Status {
	case entity.StatusConfirmed:
		if !p.HasUsablePrice() {
			return &ProductLookup{Status: entity.OutcomePriceNotFound, Product: p}, nil
		}
		return &ProductLookup{Status: entity.OutcomeSuccess, Product: p}, nil
	case entity.StatusOutOfStock:
		return &ProductLookup{Status: entity.OutcomeOutOfStock, Product: p}, nil
	case entity.StatusUnconfirmed:
		s.notifyOwner(ctx, p, customerPhone)
		return &ProductLookup{Status: entity.OutcomeUnconfirmed, Product: p}, nil
	default:
		return &ProductLookup{Status: entity.OutcomeNotAvailable, Product: p}, nil
	}
}

// Resolve maps name to a product without read rules or side effects. Used
// by removal flows, where notifying the owner about an unconfirmed product
// would be noise.
func (s *CatalogService) Resolve(ctx context.Context, businessID int64, name string) (*entity.Product, error) {
	return s.resolver.Resolve(ctx, businessID, name)
}

func (s *CatalogService) notifyOwner(ctx context.Context, p *entity.Product, customerPhone string) {
	event := entity.UnconfirmedProductQueried{
		EventID:       uuid.NewString(),
		BusinessID:    p.BusinessID,
		ProductID:     p.ID,
		ProductName:   p.Name,
		CustomerPhone: customerPhone,
		QueriedAt:     time.Now(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishEvent(pubCtx, s.notifyTopic, strconv.FormatInt(p.BusinessID, 10), event); err != nil {
		s.log.Error("failed to publish owner notification",
			"business_id", p.BusinessID, "product_id", p.ID, "err", err)
	}
}

// ApplyDecision performs the only two legal availability transitions, driven
// by the owner's response: "SI" confirms with a required positive price,
// "NO" rejects. Anything else, or a product not in UNCONFIRMED, is an error.
func (s *CatalogService) ApplyDecision(ctx context.Context, productID int64, decision string, price decimal.NullDecimal) error {
	var target entity.AvailabilityStatus
	switch strings.ToUpper(strings.TrimSpace(decision)) {
	case DecisionConfirm:
		if !price.Valid || !price.Decimal.IsPositive() {
			return fmt.Errorf("confirming product %d requires a positive price", productID)
		}
		target = entity.StatusConfirmed
	case DecisionReject:
		target = entity.StatusRejected
		price = decimal.NullDecimal{}
	default:
		return fmt.Errorf("unknown decision %q (want %s or %s)", decision, DecisionConfirm, DecisionReject)
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	if !p.Status.CanTransitionTo(target) {
		return &entity.ErrIllegalTransition{From: p.Status, To: target}
	}

	if err := s.products.UpdateAvailability(ctx, productID, target, price); err != nil {
		return fmt.Errorf("failed to apply decision: %w", err)
	}

	s.log.Info("owner decision applied", "product_id", productID, "status", target)

	event := entity.ProductDecisionApplied{
		EventID:   uuid.NewString(),
		ProductID: productID,
		NewStatus: target,
		DecidedAt: time.Now(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishEvent(pubCtx, s.notifyTopic, strconv.FormatInt(p.BusinessID, 10), event); err != nil {
		s.log.Error("failed to publish decision event", "product_id", productID, "err", err)
	}
	return nil
}

// CreateProduct stores a manually added catalog entry. Entries created
// outside bulk ingestion default to UNCONFIRMED until the owner decides.
func (s *CatalogService) CreateProduct(ctx context.Context, p *entity.Product) error {
	if p.Status == "" {
		p.Status = entity.StatusUnconfirmed
	}
	if !p.Status.Valid() {
		return fmt.Errorf("invalid availability status %q", p.Status)
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if err := s.products.Insert(ctx, p); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ListProducts returns a page of the business catalog.
func (s *CatalogService) ListProducts(ctx context.Context, businessID int64, limit, offset int) ([]entity.Product, error) {
	return s.products.ListByBusiness(ctx, businessID, limit, offset)
}
