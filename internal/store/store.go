package store

import (
	"context"
	"errors"

	"github.com/maltedev/amazon-top-products/internal/models"
)

// ErrNotFound is returned by Get when no record exists for the ASIN.
var ErrNotFound = errors.New("product not found")

// Stats is the aggregate view the read API serves. AveragePrice only
// counts strictly-positive prices so the zero sentinel for "could not
// determine" never drags the average down.
type Stats struct {
	TotalProducts int     `json:"total_products"`
	AveragePrice  float64 `json:"average_price"`
	AverageRating float64 `json:"average_rating"`
	PrimeCount    int     `json:"prime_count"`
}

// Store is the persistence contract: idempotent keyed upserts holding the
// latest snapshot per ASIN, plus the read queries the API needs.
type Store interface {
	// EnsureSchema creates the persisted structure if absent. Safe to call
	// on every run.
	EnsureSchema(ctx context.Context) error
	// Upsert inserts or fully replaces the row keyed by ASIN.
	Upsert(ctx context.Context, rec *models.ProductRecord) error
	// List returns all records ordered by rank ascending.
	List(ctx context.Context) ([]*models.ProductRecord, error)
	// Get returns one record or ErrNotFound.
	Get(ctx context.Context, asin string) (*models.ProductRecord, error)
	Stats(ctx context.Context) (*Stats, error)
}
