// Package resolver maps free-text product references to catalog entries
// within one business's namespace.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/repository"
)

// DefaultCutoff is the similarity threshold below which a fuzzy candidate
// is discarded. Tunable via config; stricter values trade recall for fewer
// false positives.
const DefaultCutoff = 0.60

// Resolver turns customer phrasing into a single catalog product using
// staged matching: substring first, similarity second. Ambiguity is not
// surfaced; equally good matches resolve to the first in insertion order.
type Resolver struct {
	products repository.ProductRepository
	cutoff   float64
	log      *slog.Logger
}

func New(products repository.ProductRepository, cutoff float64, log *slog.Logger) *Resolver {
	if cutoff <= 0 || cutoff >= 1 {
		cutoff = DefaultCutoff
	}
	return &Resolver{products: products, cutoff: cutoff, log: log}
}

// Resolve returns the catalog product best matching name, scoped to the
// business. It reports repository.ErrNotFound when neither stage yields a
// candidate; the caller translates that into a user-facing outcome.
func (r *Resolver) Resolve(ctx context.Context, businessID int64, name string) (*entity.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repository.ErrNotFound
	}

	// Stage 1: case-insensitive substring match, first hit in insertion
	// order wins.
	pattern := LikePattern(name)
	p, err := r.products.FindFirstNameLike(ctx, businessID, pattern)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to search products by pattern: %w", err)
	}

	// Stage 2: similarity match over every product name of the business.
	names, err := r.products.ListNames(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product names: %w", err)
	}

	bestIdx := -1
	bestScore := 0.0
	for i, candidate := range names {
		// Strict > keeps the earliest candidate on ties.
		if score := Similarity(name, candidate); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < r.cutoff {
		r.log.Debug("no product candidate above cutoff",
			"business_id", businessID, "query", name, "best_score", bestScore)
		return nil, repository.ErrNotFound
	}

	r.log.Debug("fuzzy match accepted",
		"business_id", businessID, "query", name,
		"candidate", names[bestIdx], "score", bestScore)

	p, err = r.products.FindByExactName(ctx, businessID, names[bestIdx])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch fuzzy-matched product: %w", err)
	}
	return p, nil
}
